package config

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	KeyDatabasePath = "database.path"
	KeyWebListen    = "web.listen"
	KeyExportFormat = "export.format"
)

type Config struct {
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Web      WebConfig      `mapstructure:"web"`
	Export   ExportConfig   `mapstructure:"export"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

type WebConfig struct {
	Listen string `mapstructure:"listen" validate:"required,hostname_port"`
}

type ExportConfig struct {
	Format string `mapstructure:"format"`
}

// SetDefaults sets default values if not provided
func SetDefaults() {
	setDefaults(viper.GetViper())
}

// LoadAndValidate loads config from Viper and validates it
func LoadAndValidate() (*Config, error) {
	return loadAndValidateFromViper(viper.GetViper())
}

// ValidateYAMLContent validates configuration from raw YAML content.
func ValidateYAMLContent(content []byte) (*Config, error) {
	local := viper.New()
	setDefaults(local)
	local.SetConfigType("yaml")
	if err := local.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("read config content: %w", err)
	}
	return loadAndValidateFromViper(local)
}

// ExampleYAML returns the default configuration template.
func ExampleYAML() string {
	return `# timecard configuration
database:
  path: "./timecard.db"

web:
  listen: "127.0.0.1:8484"

export:
  format: "csv"
`
}

func loadAndValidateFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if err := validateExportFormat(cfg.Export.Format); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyDatabasePath, "./timecard.db")
	v.SetDefault(KeyWebListen, "127.0.0.1:8484")
	v.SetDefault(KeyExportFormat, "csv")
}

func validateExportFormat(format string) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "csv", "excel", "xlsx":
		return nil
	default:
		return fmt.Errorf("validation failed: export.format %q is not supported (valid: csv, excel, xlsx)", format)
	}
}
