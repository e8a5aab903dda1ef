package configstore

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// seedFile is the on-disk shape of a tenant configuration seed.
type seedFile struct {
	Tenants []struct {
		Tenant  string `yaml:"tenant"`
		Entries []struct {
			Key   string   `yaml:"key"`
			Tags  []string `yaml:"tags"`
			Value string   `yaml:"value"`
		} `yaml:"entries"`
	} `yaml:"tenants"`
}

// SeedFromFile upserts every entry of a YAML seed file. Used at worker
// startup so a fresh environment carries its tenant mappings without manual
// inserts. A missing path is a no-op.
func (s *Store) SeedFromFile(ctx context.Context, path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config seed %s: %w", path, err)
	}

	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("parse config seed %s: %w", path, err)
	}

	for _, tenant := range seed.Tenants {
		for _, entry := range tenant.Entries {
			if err := s.Upsert(ctx, tenant.Tenant, entry.Key, entry.Tags, entry.Value); err != nil {
				return err
			}
		}
	}
	return nil
}
