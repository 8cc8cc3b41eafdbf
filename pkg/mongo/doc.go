// Package mongo connects the notification store to its MongoDB backend:
// env-driven configuration, a retrying New, and a health probe.
//
//	var cfg mongo.Config
//	config.MustLoad(&cfg)
//
//	db, err := mongo.NewWithDatabase(ctx, cfg, "fieldkit")
//	if err != nil {
//		return err
//	}
//	store := notifications.NewMongoStore(db)
package mongo
