package config

import (
	"os"
	"path/filepath"
	"testing"

	"jobmart/internal/warehouse"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	if cfg.Warehouse.Driver != "sqlite" || cfg.Warehouse.Path != "jobmart.db" {
		t.Fatalf("unexpected warehouse defaults: %+v", cfg.Warehouse)
	}
	if err := cfg.Pipeline().Validate(); err != nil {
		t.Fatalf("default destinations invalid: %v", err)
	}
}

func TestLoadOverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobmart.yaml")
	doc := `
source:
  driver: fs
  dir: /srv/feeds
warehouse:
  driver: postgres
  dsn: postgres://etl@db:5432/mart
destinations:
  fact_tech_job: fact_job_posting
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Source.Dir != "/srv/feeds" {
		t.Fatalf("source.dir = %q", cfg.Source.Dir)
	}
	if cfg.Warehouse.Driver != "postgres" {
		t.Fatalf("warehouse.driver = %q", cfg.Warehouse.Driver)
	}
	// Unset keys keep their defaults.
	if cfg.State.Path != "jobmart_state.json" {
		t.Fatalf("state.path = %q", cfg.State.Path)
	}
	dests := cfg.Pipeline()
	if dests.FactTechJob != (warehouse.Destination{Schema: "mart", Table: "fact_job_posting"}) {
		t.Fatalf("fact destination = %v", dests.FactTechJob)
	}
	if dests.DimSkill != (warehouse.Destination{Schema: "mart", Table: "dim_skill"}) {
		t.Fatalf("dim destination = %v", dests.DimSkill)
	}
	if dests.Staging["postings"] != (warehouse.Destination{Schema: "staging", Table: "stg_posting"}) {
		t.Fatalf("staging destination = %v", dests.Staging["postings"])
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	t.Setenv("JOBMART_WAREHOUSE_DRIVER", "postgres")
	t.Setenv("JOBMART_POSTGRES_DSN", "postgres://etl@db:5432/mart")
	t.Setenv("JOBMART_STATE_PATH", "/var/lib/jobmart/state.json")
	t.Setenv("JOBMART_S3_PATH_STYLE", "TRUE")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Warehouse.Driver != "postgres" || cfg.Warehouse.DSN != "postgres://etl@db:5432/mart" {
		t.Fatalf("env override missed: %+v", cfg.Warehouse)
	}
	if cfg.State.Path != "/var/lib/jobmart/state.json" {
		t.Fatalf("state.path = %q", cfg.State.Path)
	}
	if !cfg.Source.S3.PathStyle {
		t.Fatalf("path style override missed")
	}
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing fs dir", func(c *Config) { c.Source.Dir = "" }},
		{"s3 without bucket", func(c *Config) { c.Source.Driver = "s3" }},
		{"unknown source driver", func(c *Config) { c.Source.Driver = "ftp" }},
		{"postgres without dsn", func(c *Config) { c.Warehouse.Driver = "postgres" }},
		{"unknown warehouse driver", func(c *Config) { c.Warehouse.Driver = "oracle" }},
		{"missing state path", func(c *Config) { c.State.Path = "" }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := Default()
			c.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestSchemasOnlyQualifyPostgres(t *testing.T) {
	cfg := Default()
	if d := cfg.Pipeline().FactTechJob; d.Schema != "" {
		t.Fatalf("sqlite destinations must be unqualified: %v", d)
	}
	cfg.Warehouse.Driver = "postgres"
	cfg.Warehouse.DSN = "postgres://etl@db:5432/mart"
	if d := cfg.Pipeline().FactTechJob; d.Schema != "mart" {
		t.Fatalf("postgres destinations must carry the mart schema: %v", d)
	}
}

func TestWarehouseOptionsCarryIdentityColumns(t *testing.T) {
	cfg := Default()
	opts := cfg.WarehouseOptions()
	if opts.Identity["fact_tech_job"] != "job_sk" {
		t.Fatalf("identity columns = %v", opts.Identity)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error")
	}
}
