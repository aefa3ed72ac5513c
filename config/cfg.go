package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"

	"nbreport/common"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	TemplateFieldName string

	FontsConfig struct {
		Regular string `yaml:"regular" sanitize:"assure_file_access"`
		Bold    string `yaml:"bold" sanitize:"assure_file_access"`
	}

	PDFConfig struct {
		Author        string      `yaml:"author" validate:"required"`
		Fonts         FontsConfig `yaml:"fonts"`
		OutlineNested bool        `yaml:"outline_nested"`
		Validate      bool        `yaml:"validate"`
	}

	DeckConfig struct {
		// Template is used when request does not name one. Absent file is
		// reported as job failure, not as configuration error.
		Template string `yaml:"template"`
	}

	BrowserConfig struct {
		Bin       string        `yaml:"bin"`
		PlotlyURL string        `yaml:"plotly_url" validate:"required,url"`
		Timeout   time.Duration `yaml:"timeout" validate:"gt=0"`
	}

	ChartConfig struct {
		Backend common.ChartBackend `yaml:"backend" validate:"gte=0"`
		Width   int                 `yaml:"width" validate:"min=100,max=4096"`
		Height  int                 `yaml:"height" validate:"min=100,max=4096"`
		Browser BrowserConfig       `yaml:"browser"`
	}

	SVGConfig struct {
		Rasterize bool `yaml:"rasterize"`
		Width     int  `yaml:"width" validate:"gte=0,max=8192"`
		Height    int  `yaml:"height" validate:"gte=0,max=8192"`
	}

	DocumentConfig struct {
		OutDir               string      `yaml:"out_dir" sanitize:"path_clean" validate:"required"`
		WorkDir              string      `yaml:"work_dir"`
		FixZip               bool        `yaml:"fix_zip"`
		DownloadNameTemplate string      `yaml:"download_name_template"`
		PDF                  PDFConfig   `yaml:"pdf"`
		Deck                 DeckConfig  `yaml:"deck"`
		Chart                ChartConfig `yaml:"chart"`
		SVG                  SVGConfig   `yaml:"svg"`
	}

	JobsConfig struct {
		Store common.StoreKind `yaml:"store" validate:"gte=0"`
		Path  string           `yaml:"path" validate:"required_if=Store 1"`
	}

	Config struct {
		Version   int            `yaml:"version" validate:"eq=1"`
		Document  DocumentConfig `yaml:"document"`
		Jobs      JobsConfig     `yaml:"jobs"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
	}
)

const (
	// NOTE: must match yaml field name above
	DownloadNameTemplateFieldName TemplateFieldName = "download_name_template"
)

var requiredOptions = append([]func(*gencfg.ProcessingOptions){},
	gencfg.WithDoNotExpandField(string(DownloadNameTemplateFieldName)),
)

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// Only fields we defined are allowed, so yaml.Unmarshal cannot be used
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, fmt.Errorf("configuration is not valid: %w", err)
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration template to
// provide sane defaults and performs validation.
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

// Prepare generates configuration file from template and returns it as a byte
// slice.
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
