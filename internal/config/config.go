package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/ir-automation/forensic-launcher/pkg/catalog"
	"github.com/ir-automation/forensic-launcher/pkg/errors"
	"github.com/ir-automation/forensic-launcher/pkg/selector"
)

// Config holds all application configuration. It is built once at startup
// and not modified afterwards.
type Config struct {
	// Machine image catalog, "region:imageId" pairs
	AMIIDs string `mapstructure:"ami-ids"`
	Region string `mapstructure:"region"`

	// Launch placement and identity
	VPCID               string `mapstructure:"vpc-id"`
	SecurityGroup       string `mapstructure:"security-group"`
	InstanceProfileName string `mapstructure:"instance-profile-name"`
	InstanceType        string `mapstructure:"instance-type"`

	// Feature flags
	VerifyEvidenceBucket bool `mapstructure:"verify-evidence-bucket"`
	DryRun               bool `mapstructure:"dry-run"`

	// Logging
	LogFormat string `mapstructure:"log-format"`
	LogLevel  string `mapstructure:"log-level"`

	// Images is parsed from AMIIDs by Load.
	Images *catalog.ImageCatalog `mapstructure:"-"`
}

// envBindings maps config keys to the environment variables the function is
// deployed with. Multiple names are tried in order.
var envBindings = map[string][]string{
	"ami-ids":                {"AMI_IDS"},
	"region":                 {"REGION", "AWS_REGION"},
	"vpc-id":                 {"VPC_ID"},
	"security-group":         {"SECURITY_GROUP"},
	"instance-profile-name":  {"INSTANCE_PROFILE_NAME"},
	"instance-type":          {"INSTANCE_TYPE"},
	"verify-evidence-bucket": {"VERIFY_EVIDENCE_BUCKET"},
	"dry-run":                {"DRY_RUN"},
	"log-format":             {"LOG_FORMAT"},
	"log-level":              {"LOG_LEVEL"},
}

// LoadFrom reads configuration from environment, config file, flags and
// defaults through v, validates it and parses the image catalog.
func LoadFrom(v *viper.Viper) (*Config, error) {
	// Set defaults
	v.SetDefault("verify-evidence-bucket", false)
	v.SetDefault("dry-run", false)
	v.SetDefault("log-format", defaultLogFormat())
	v.SetDefault("log-level", "info")

	for key, envs := range envBindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, errors.Classify(errors.ErrConfig, errors.Wrap(err, "failed to bind environment"))
		}
	}

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.forensic-launcher")

	// Read config file (ignore if not found)
	_ = v.ReadInConfig()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Configf("failed to unmarshal config: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	images, err := catalog.Parse(cfg.AMIIDs)
	if err != nil {
		return nil, err
	}
	cfg.Images = images

	return &cfg, nil
}

// Validate checks configuration for errors
func (c *Config) Validate() error {
	required := []struct {
		key   string
		value string
	}{
		{"ami-ids", c.AMIIDs},
		{"region", c.Region},
		{"vpc-id", c.VPCID},
		{"security-group", c.SecurityGroup},
		{"instance-profile-name", c.InstanceProfileName},
		{"instance-type", c.InstanceType},
	}

	var missing []string
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, fmt.Sprintf("%s (%s)", r.key, envBindings[r.key][0]))
		}
	}
	if len(missing) > 0 {
		return errors.Configf("missing required settings: %s", strings.Join(missing, ", "))
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		return errors.Configf("log-format must be text or json, got %q", c.LogFormat)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// Settings returns the static launch parameters.
func (c *Config) Settings() selector.LaunchSettings {
	return selector.LaunchSettings{
		InstanceType:        c.InstanceType,
		SecurityGroupID:     c.SecurityGroup,
		InstanceProfileName: c.InstanceProfileName,
		DryRun:              c.DryRun,
	}
}

// SlogLevel parses LogLevel.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, errors.Configf("log-level %q: %v", c.LogLevel, err)
	}
	return level, nil
}

// defaultLogFormat is json inside the Lambda runtime, where output goes to
// CloudWatch, and text otherwise.
func defaultLogFormat() string {
	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		return "json"
	}
	return "text"
}

// NewLogger builds the process logger described by the configuration.
func (c *Config) NewLogger() *slog.Logger {
	level, err := c.SlogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
