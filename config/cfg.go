package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"

	"bookmerge/common"
	"bookmerge/snapshot"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	TemplateFieldName string

	FallbackConfig struct {
		IgnoreInsertionPoints bool                 `yaml:"ignore_insertion_points"`
		Order                 common.FallbackOrder `yaml:"order" validate:"gte=0"`
		MinConfidence         float64              `yaml:"min_confidence" validate:"gte=0.0,lte=1.0"`
		UseMonth              bool                 `yaml:"use_month"`
	}

	MergeConfig struct {
		PrimaryBook   string         `yaml:"primary_book"`
		SecondaryBook string         `yaml:"secondary_book"`
		Snapshots     snapshot.Files `yaml:"snapshots"`
		Fallback      FallbackConfig `yaml:"fallback"`
		CheckCoverage bool           `yaml:"check_coverage"`
		Strict        bool           `yaml:"strict"`
	}

	OutputConfig struct {
		Format                common.OutputFmt `yaml:"format" validate:"gte=0"`
		OutputNameTemplate    string           `yaml:"output_name_template"`
		FileNameTransliterate bool             `yaml:"file_name_transliterate"`
		Language              string           `yaml:"language" validate:"required,bcp47_language_tag"`
		Sentences             bool             `yaml:"sentences"`
		Headers               bool             `yaml:"headers"`
		HeaderTemplate        string           `yaml:"header_template" validate:"required_if=Headers true"`
	}

	BatchConfig struct {
		Command           []string      `yaml:"command" validate:"dive,required"`
		APIKey            SecretString  `yaml:"api_key"`
		Concurrency       int           `yaml:"concurrency" validate:"min=1,max=64"`
		MaxTries          uint          `yaml:"max_tries" validate:"min=1"`
		InitialInterval   time.Duration `yaml:"initial_interval" validate:"gt=0"`
		MaxInterval       time.Duration `yaml:"max_interval" validate:"gtefield=InitialInterval"`
		RequestsPerMinute float64       `yaml:"requests_per_minute" validate:"gte=0"`
		PageTimeout       time.Duration `yaml:"page_timeout" validate:"gt=0"`
		Retag             bool          `yaml:"retag"`
	}

	Config struct {
		Version   int            `yaml:"version" validate:"eq=1"`
		Merge     MergeConfig    `yaml:"merge"`
		Output    OutputConfig   `yaml:"output"`
		Batch     BatchConfig    `yaml:"batch"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
	}
)

const (
	// NOTE: must match yaml field name above
	OutputNameTemplateFieldName TemplateFieldName = "output_name_template"
	HeaderTemplateFieldName     TemplateFieldName = "header_template"
)

var requiredOptions = append([]func(*gencfg.ProcessingOptions){},
	gencfg.WithDoNotExpandField(string(OutputNameTemplateFieldName)),
	gencfg.WithDoNotExpandField(string(HeaderTemplateFieldName)),
)

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// Only fields we defined are allowed, so no yaml.Unmarshal here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, fmt.Errorf("configuration sanitizing failed: %w", err)
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, fmt.Errorf("configuration validation failed: %w", err)
		}
	}
	return cfg, nil
}

// LoadConfiguration expands configuration template to get defaults and
// overlays values from the file at path, if any. Result is sanitized and
// validated.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, append(requiredOptions, options...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare returns expanded configuration template.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl, requiredOptions...)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %w", err)
	}
	return data, nil
}
