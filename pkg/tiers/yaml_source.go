package tiers

import (
	"context"
	"errors"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// yamlSource loads tier definitions from a YAML document, letting deployments
// override the compiled-in catalog without a rebuild.
//
// Expected document shape:
//
//	tiers:
//	  starter:
//	    display_name: Starter
//	    monthly_price: {amount: 2900, currency: USD}
//	    features: [invoicing, estimates]
//	    limits:
//	      active_jobs: 15
//	      invoices_per_month: 25
type yamlSource struct {
	path string
}

// NewYAMLSource returns a Source that reads tier definitions from the file at path.
func NewYAMLSource(path string) Source {
	return &yamlSource{path: path}
}

type yamlDocument struct {
	Tiers map[Name]Tier `yaml:"tiers"`
}

func (s *yamlSource) Load(_ context.Context) (map[Name]Tier, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadTiers, err)
	}
	defer f.Close()

	return decodeYAML(f)
}

func decodeYAML(r io.Reader) (map[Name]Tier, error) {
	var doc yamlDocument
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Join(ErrFailedToLoadTiers, err)
	}

	for name, tier := range doc.Tiers {
		tier.Name = name
		doc.Tiers[name] = tier
	}
	return doc.Tiers, nil
}
