// Package pg bootstraps the PostgreSQL layer: pooled connections via
// pgx/v5, schema migrations via goose/v3, a health probe, and error
// classification helpers shared by the Postgres-backed stores.
//
// Connect retries with a growing backoff until the database accepts
// connections, Migrate brings the schema up to date before the service
// takes traffic, and the Is*Error helpers translate driver errors into the
// categories store code branches on.
//
//	var cfg pg.Config
//	config.MustLoad(&cfg)
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	if err := pg.Migrate(ctx, pool, cfg, log); err != nil {
//		return err
//	}
package pg
