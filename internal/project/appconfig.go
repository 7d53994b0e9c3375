package project

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/piwi3910/woodcut/internal/logging"
	"github.com/piwi3910/woodcut/internal/model"
	"github.com/piwi3910/woodcut/internal/units"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment overrides, e.g. WOODCUT_KERF or WOODCUT_STOCK_LENGTH.
const EnvPrefix = "WOODCUT"

// Export format names.
const (
	FormatJSON   = "json"
	FormatPDF    = "pdf"
	FormatLabels = "labels"
	FormatSVG    = "svg"
	FormatPNG    = "png"
	FormatDXF    = "dxf"
	FormatXLSX   = "xlsx"
)

// KnownFormats lists every export format in the order they are written.
var KnownFormats = []string{FormatJSON, FormatPDF, FormatLabels, FormatSVG, FormatPNG, FormatDXF, FormatXLSX}

// StockDefaults is the stock a new project starts with.
type StockDefaults struct {
	Length    float64 `yaml:"length" mapstructure:"length"`
	Width     float64 `yaml:"width" mapstructure:"width"`
	Material  string  `yaml:"material" mapstructure:"material"`
	Thickness float64 `yaml:"thickness" mapstructure:"thickness"`
}

// AppConfig holds application-wide preferences and defaults for new projects.
type AppConfig struct {
	Units          string             `yaml:"units" mapstructure:"units"`
	Kerf           float64            `yaml:"kerf" mapstructure:"kerf"`
	Stock          StockDefaults      `yaml:"stock" mapstructure:"stock"`
	OutputDir      string             `yaml:"output_dir" mapstructure:"output_dir"`
	Formats        []string           `yaml:"formats" mapstructure:"formats"`
	Offcuts        model.OffcutLimits `yaml:"offcuts" mapstructure:"offcuts"`
	Logging        logging.Config     `yaml:"logging" mapstructure:"logging"`
	RecentProjects []string           `yaml:"recent_projects" mapstructure:"recent_projects"`
}

// DefaultAppConfig returns the built-in defaults: 4'x8' plywood, 1/8" kerf.
func DefaultAppConfig() AppConfig {
	stock := model.DefaultStock()
	return AppConfig{
		Units: model.DefaultUnits,
		Kerf:  model.DefaultKerf,
		Stock: StockDefaults{
			Length:    stock.Length,
			Width:     stock.Width,
			Material:  stock.Material,
			Thickness: stock.Thickness,
		},
		OutputDir:      "out",
		Formats:        []string{FormatJSON, FormatPDF},
		Offcuts:        model.DefaultOffcutLimits(),
		Logging:        logging.DefaultConfig(),
		RecentProjects: []string{},
	}
}

// DefaultConfigDir returns ~/.woodcut.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".woodcut")
}

// DefaultConfigPath returns the default path for the application config file.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

func setDefaults(v *viper.Viper) {
	d := DefaultAppConfig()
	v.SetDefault("units", d.Units)
	v.SetDefault("kerf", d.Kerf)
	v.SetDefault("stock.length", d.Stock.Length)
	v.SetDefault("stock.width", d.Stock.Width)
	v.SetDefault("stock.material", d.Stock.Material)
	v.SetDefault("stock.thickness", d.Stock.Thickness)
	v.SetDefault("output_dir", d.OutputDir)
	v.SetDefault("formats", d.Formats)
	v.SetDefault("offcuts.min_dimension", d.Offcuts.MinDimension)
	v.SetDefault("offcuts.min_area", d.Offcuts.MinArea)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.output_file", d.Logging.OutputFile)
	v.SetDefault("recent_projects", d.RecentProjects)
}

// LoadAppConfig reads a YAML config, layering file values and WOODCUT_*
// environment variables over the defaults. A missing file yields the
// defaults with no error.
func LoadAppConfig(path string) (AppConfig, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return AppConfig{}, fmt.Errorf("read config %s: %w", path, err)
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return AppConfig{}, fmt.Errorf("stat config %s: %w", path, err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return AppConfig{}, fmt.Errorf("decode config: %w", err)
	}
	if cfg.RecentProjects == nil {
		cfg.RecentProjects = []string{}
	}
	if err := cfg.Validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// SaveAppConfig writes cfg as YAML, creating parent directories.
func SaveAppConfig(path string, cfg AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks units, kerf, stock and export formats.
func (c AppConfig) Validate() error {
	if _, err := units.Parse(c.Units); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Kerf < 0 {
		return fmt.Errorf("config: kerf must be non-negative, got %g", c.Kerf)
	}
	if c.Stock.Length <= 0 || c.Stock.Width <= 0 {
		return fmt.Errorf("config: stock dimensions must be positive, got %g x %g", c.Stock.Length, c.Stock.Width)
	}
	for _, f := range c.Formats {
		if !IsKnownFormat(f) {
			return fmt.Errorf("config: unknown export format %q", f)
		}
	}
	return nil
}

// IsKnownFormat reports whether name is a supported export format.
func IsKnownFormat(name string) bool {
	for _, f := range KnownFormats {
		if f == name {
			return true
		}
	}
	return false
}

// StockSpec returns the configured default stock.
func (c AppConfig) StockSpec() model.StockSpec {
	return model.StockSpec{
		Length:    c.Stock.Length,
		Width:     c.Stock.Width,
		Material:  c.Stock.Material,
		Thickness: c.Stock.Thickness,
	}
}

// ApplyToProject copies the configured defaults into a project so a new
// project inherits the user's saved preferences.
func (c AppConfig) ApplyToProject(p *model.Project) {
	p.Units = c.Units
	p.Kerf = c.Kerf
	p.Stock = c.StockSpec()
}

// maxRecentProjects bounds the recent project list.
const maxRecentProjects = 10

// AddRecentProject moves path to the front of the recent list.
func (c *AppConfig) AddRecentProject(path string) {
	recent := []string{path}
	for _, p := range c.RecentProjects {
		if p != path && len(recent) < maxRecentProjects {
			recent = append(recent, p)
		}
	}
	c.RecentProjects = recent
}
