package tiers

import "context"

// Source defines how tier definitions are loaded into a Catalog.
type Source interface {
	Load(ctx context.Context) (map[Name]Tier, error)
}

// staticSource serves a fixed tier map.
type staticSource struct {
	tiers map[Name]Tier
}

// NewStaticSource returns a Source backed by a deep copy of the given map.
func NewStaticSource(src map[Name]Tier) Source {
	tiersCopy := make(map[Name]Tier, len(src))
	for name, tier := range src {
		tiersCopy[name] = tier.clone()
	}
	return &staticSource{tiers: tiersCopy}
}

func (s *staticSource) Load(_ context.Context) (map[Name]Tier, error) {
	tiersCopy := make(map[Name]Tier, len(s.tiers))
	for name, tier := range s.tiers {
		tiersCopy[name] = tier.clone()
	}
	return tiersCopy, nil
}
