// Package config loads the pipeline configuration from a YAML file and
// applies JOBMART_* environment overrides. The resulting value is
// passed explicitly into each collaborator constructor; nothing here is
// process-global.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"jobmart/internal/pipeline"
	"jobmart/internal/source"
	"jobmart/internal/warehouse"
)

// Config is the full pipeline configuration.
type Config struct {
	Source       SourceConfig       `yaml:"source"`
	Warehouse    WarehouseConfig    `yaml:"warehouse"`
	State        StateConfig        `yaml:"state"`
	Metrics      MetricsConfig      `yaml:"metrics"`
	Destinations DestinationsConfig `yaml:"destinations"`
}

// SourceConfig selects the tabular source backend.
type SourceConfig struct {
	Driver string   `yaml:"driver"` // fs|s3 (default fs)
	Dir    string   `yaml:"dir"`
	S3     S3Config `yaml:"s3"`
}

// S3Config parameterizes the S3 source backend.
type S3Config struct {
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	Endpoint  string `yaml:"endpoint"`
	PathStyle bool   `yaml:"path_style"`
}

// WarehouseConfig selects the analytical store backend.
type WarehouseConfig struct {
	Driver string `yaml:"driver"` // sqlite|postgres (default sqlite)
	DSN    string `yaml:"dsn"`
	Path   string `yaml:"path"`
}

// StateConfig locates the fingerprint map file.
type StateConfig struct {
	Path string `yaml:"path"`
}

// MetricsConfig controls the optional Prometheus endpoint.
type MetricsConfig struct {
	Addr string `yaml:"addr"` // empty disables the endpoint
}

// DestinationsConfig names the warehouse tables.
type DestinationsConfig struct {
	StagingSchema string            `yaml:"staging_schema"`
	MartSchema    string            `yaml:"mart_schema"`
	Staging       map[string]string `yaml:"staging"`

	DimIndustry        string `yaml:"dim_industry"`
	DimSkill           string `yaml:"dim_skill"`
	DimCompany         string `yaml:"dim_company"`
	DimLocation        string `yaml:"dim_location"`
	DimWorkType        string `yaml:"dim_work_type"`
	DimExperienceLevel string `yaml:"dim_experience_level"`
	FactTechJob        string `yaml:"fact_tech_job"`
	BridgeJobIndustry  string `yaml:"bridge_job_industry"`
	BridgeJobSkill     string `yaml:"bridge_job_skill"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		Source:    SourceConfig{Driver: "fs", Dir: "data"},
		Warehouse: WarehouseConfig{Driver: "sqlite", Path: "jobmart.db"},
		State:     StateConfig{Path: "jobmart_state.json"},
		Destinations: DestinationsConfig{
			StagingSchema: "staging",
			MartSchema:    "mart",
			Staging: map[string]string{
				pipeline.DatasetPostings:  "stg_posting",
				pipeline.DatasetCompanies: "stg_company",
			},
			DimIndustry:        "dim_industry",
			DimSkill:           "dim_skill",
			DimCompany:         "dim_company",
			DimLocation:        "dim_location",
			DimWorkType:        "dim_work_type",
			DimExperienceLevel: "dim_experience_level",
			FactTechJob:        "fact_tech_job",
			BridgeJobIndustry:  "bridge_job_industry",
			BridgeJobSkill:     "bridge_job_skill",
		},
	}
}

// Load reads a YAML file over the defaults and applies environment
// overrides. An empty path yields defaults plus environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Environment overrides:
//
//	JOBMART_SOURCE_DRIVER: fs|s3
//	JOBMART_SOURCE_DIR: directory root when driver=fs
//	JOBMART_S3_BUCKET / JOBMART_S3_REGION / JOBMART_S3_PREFIX /
//	JOBMART_S3_ENDPOINT / JOBMART_S3_PATH_STYLE
//	JOBMART_WAREHOUSE_DRIVER: sqlite|postgres
//	JOBMART_POSTGRES_DSN: postgres DSN when driver=postgres
//	JOBMART_SQLITE_PATH: sqlite file when driver=sqlite
//	JOBMART_STATE_PATH: fingerprint map file
//	JOBMART_METRICS_ADDR: listen address for /metrics
func (c *Config) applyEnv() {
	setIfPresent := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setIfPresent(&c.Source.Driver, "JOBMART_SOURCE_DRIVER")
	setIfPresent(&c.Source.Dir, "JOBMART_SOURCE_DIR")
	setIfPresent(&c.Source.S3.Bucket, "JOBMART_S3_BUCKET")
	setIfPresent(&c.Source.S3.Region, "JOBMART_S3_REGION")
	setIfPresent(&c.Source.S3.Prefix, "JOBMART_S3_PREFIX")
	setIfPresent(&c.Source.S3.Endpoint, "JOBMART_S3_ENDPOINT")
	if v := os.Getenv("JOBMART_S3_PATH_STYLE"); v != "" {
		c.Source.S3.PathStyle = strings.EqualFold(v, "true")
	}
	setIfPresent(&c.Warehouse.Driver, "JOBMART_WAREHOUSE_DRIVER")
	setIfPresent(&c.Warehouse.DSN, "JOBMART_POSTGRES_DSN")
	setIfPresent(&c.Warehouse.Path, "JOBMART_SQLITE_PATH")
	setIfPresent(&c.State.Path, "JOBMART_STATE_PATH")
	setIfPresent(&c.Metrics.Addr, "JOBMART_METRICS_ADDR")
}

// Validate checks cross-field requirements.
func (c *Config) Validate() error {
	switch source.Driver(c.Source.Driver) {
	case source.DriverFilesystem, "":
		if c.Source.Dir == "" {
			return fmt.Errorf("source.dir required for fs driver")
		}
	case source.DriverS3:
		if c.Source.S3.Bucket == "" {
			return fmt.Errorf("source.s3.bucket required for s3 driver")
		}
	case source.DriverMemory:
	default:
		return fmt.Errorf("unknown source driver %s", c.Source.Driver)
	}
	switch warehouse.Driver(c.Warehouse.Driver) {
	case warehouse.DriverSQLite, "":
	case warehouse.DriverPostgres:
		if c.Warehouse.DSN == "" {
			return fmt.Errorf("warehouse.dsn required for postgres driver")
		}
	case warehouse.DriverMemory:
	default:
		return fmt.Errorf("unknown warehouse driver %s", c.Warehouse.Driver)
	}
	if c.State.Path == "" {
		return fmt.Errorf("state.path required")
	}
	return nil
}

// SourceOptions maps onto the source package's explicit config value.
func (c Config) SourceOptions() source.Config {
	return source.Config{
		Driver: source.Driver(c.Source.Driver),
		Root:   c.Source.Dir,
		S3: source.S3Config{
			Region:    c.Source.S3.Region,
			Bucket:    c.Source.S3.Bucket,
			Prefix:    c.Source.S3.Prefix,
			Endpoint:  c.Source.S3.Endpoint,
			PathStyle: c.Source.S3.PathStyle,
		},
	}
}

// WarehouseOptions maps onto the warehouse package's config, including
// the identity columns the memory driver needs to emulate store-side
// key assignment.
func (c Config) WarehouseOptions() warehouse.Config {
	return warehouse.Config{
		Driver:   warehouse.Driver(c.Warehouse.Driver),
		DSN:      c.Warehouse.DSN,
		Path:     c.Warehouse.Path,
		Identity: c.Pipeline().IdentityColumns(),
	}
}

// Pipeline maps the destination names onto fully qualified pipeline
// destinations. SQLite has no schemas, so schema qualifiers are only
// applied for the postgres driver.
func (c Config) Pipeline() pipeline.Destinations {
	stagingSchema, martSchema := "", ""
	if warehouse.Driver(c.Warehouse.Driver) == warehouse.DriverPostgres {
		stagingSchema = c.Destinations.StagingSchema
		martSchema = c.Destinations.MartSchema
	}
	staging := make(map[string]warehouse.Destination, len(c.Destinations.Staging))
	for dataset, tbl := range c.Destinations.Staging {
		staging[dataset] = warehouse.Destination{Schema: stagingSchema, Table: tbl}
	}
	mart := func(tbl string) warehouse.Destination {
		return warehouse.Destination{Schema: martSchema, Table: tbl}
	}
	return pipeline.Destinations{
		Staging:            staging,
		DimIndustry:        mart(c.Destinations.DimIndustry),
		DimSkill:           mart(c.Destinations.DimSkill),
		DimCompany:         mart(c.Destinations.DimCompany),
		DimLocation:        mart(c.Destinations.DimLocation),
		DimWorkType:        mart(c.Destinations.DimWorkType),
		DimExperienceLevel: mart(c.Destinations.DimExperienceLevel),
		FactTechJob:        mart(c.Destinations.FactTechJob),
		BridgeJobIndustry:  mart(c.Destinations.BridgeJobIndustry),
		BridgeJobSkill:     mart(c.Destinations.BridgeJobSkill),
	}
}
