// Package seed provides the demo dataset used to initialise an empty
// local store.
package seed

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/stwalsh4118/luxeestate/internal/models"
	"github.com/stwalsh4118/luxeestate/internal/security"
)

//go:embed seed.yaml
var seedYAML []byte

// Dataset holds one slice per entity kind.
type Dataset struct {
	Users      []models.User     `yaml:"users"`
	Agents     []models.Agent    `yaml:"agents"`
	Properties []models.Property `yaml:"properties"`
	Leads      []models.Lead     `yaml:"leads"`
	Blog       []models.BlogPost `yaml:"blog"`
}

// Load parses the embedded dataset, applies entity defaults and hashes
// the plain-text demo passwords.
func Load() (*Dataset, error) {
	return Parse(seedYAML)
}

// Parse decodes a dataset from YAML.
func Parse(data []byte) (*Dataset, error) {
	var ds Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("failed to parse seed data: %w", err)
	}

	for i := range ds.Users {
		ds.Users[i].Normalize()
		hash, err := security.HashPassword(ds.Users[i].Password)
		if err != nil {
			return nil, err
		}
		ds.Users[i].Password = hash
	}
	for i := range ds.Agents {
		ds.Agents[i].Normalize()
		hash, err := security.HashPassword(ds.Agents[i].Password)
		if err != nil {
			return nil, err
		}
		ds.Agents[i].Password = hash
	}
	for i := range ds.Properties {
		ds.Properties[i].Normalize()
	}
	for i := range ds.Leads {
		if ds.Leads[i].Status == "" {
			ds.Leads[i].Status = models.LeadNew
		}
	}

	ensureSlices(&ds)
	return &ds, nil
}

func ensureSlices(ds *Dataset) {
	if ds.Users == nil {
		ds.Users = []models.User{}
	}
	if ds.Agents == nil {
		ds.Agents = []models.Agent{}
	}
	if ds.Properties == nil {
		ds.Properties = []models.Property{}
	}
	if ds.Leads == nil {
		ds.Leads = []models.Lead{}
	}
	if ds.Blog == nil {
		ds.Blog = []models.BlogPost{}
	}
}
