package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides, e.g. FREEZEDFIX_WORKERS=4
const EnvPrefix = "FREEZEDFIX"

// ProjectConfigFiles are looked up in the project root, first match wins
var ProjectConfigFiles = []string{
	".freezedfix.yaml",
	".freezedfix.yml",
	".freezedfix.json",
	".freezedfix.toml",
}

// Config holds all configuration for a freezedfix run
type Config struct {
	// Root is the directory patterns are resolved against. It is never read from a file.
	Root string `mapstructure:"-" yaml:"root"`
	// Source is the config file that was loaded, if any.
	Source string `mapstructure:"-" yaml:"source,omitempty"`

	Patterns     []string `mapstructure:"patterns" yaml:"patterns"`
	Types        []string `mapstructure:"types" yaml:"types"`
	GenericTypes bool     `mapstructure:"generic_types" yaml:"generic_types"`
	Workers      int      `mapstructure:"workers" yaml:"workers"`
	FailFast     bool     `mapstructure:"fail_fast" yaml:"fail_fast"`
	IgnoreFile   string   `mapstructure:"ignore_file" yaml:"ignore_file"`
	NoIgnore     bool     `mapstructure:"no_ignore" yaml:"no_ignore"`
}

// Default returns the configuration used when nothing is overridden
func Default() *Config {
	return &Config{
		Root:         ".",
		Patterns:     []string{"lib/**/*.freezed.dart"},
		Types:        []string{"String", "int", "bool", "DateTime", "Map<String, dynamic>"},
		GenericTypes: false,
		Workers:      1,
		FailFast:     false,
		IgnoreFile:   ".freezedfixignore",
		NoIgnore:     false,
	}
}

// Load reads defaults, an optional project config file in root and FREEZEDFIX_* environment variables.
func Load(root string) (*Config, error) {
	if root == "" {
		root = "."
	}
	def := Default()

	v := viper.New()
	v.SetDefault("patterns", def.Patterns)
	v.SetDefault("types", def.Types)
	v.SetDefault("generic_types", def.GenericTypes)
	v.SetDefault("workers", def.Workers)
	v.SetDefault("fail_fast", def.FailFast)
	v.SetDefault("ignore_file", def.IgnoreFile)
	v.SetDefault("no_ignore", def.NoIgnore)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	source := ""
	for _, name := range ProjectConfigFiles {
		candidate := filepath.Join(root, name)
		if _, err := os.Stat(candidate); err == nil {
			source = candidate
			break
		}
	}
	if source != "" {
		v.SetConfigFile(source)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", source, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	for key, dst := range map[string]*[]string{"patterns": &cfg.Patterns, "types": &cfg.Types} {
		if raw, ok := os.LookupEnv(EnvPrefix + "_" + strings.ToUpper(key)); ok {
			*dst = SplitEnvList(raw)
		}
	}
	cfg.Root = root
	cfg.Source = source
	return cfg, nil
}

// SplitEnvList splits a list given in an environment variable. Items are separated by ";"
// because type keywords such as "Map<String, dynamic>" and brace globs contain commas.
func SplitEnvList(raw string) []string {
	var items []string
	for _, item := range strings.Split(raw, ";") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// ApplyFlags overrides cfg with every flag the user set explicitly.
func ApplyFlags(flags *pflag.FlagSet, cfg *Config) error {
	var errs []error
	flags.Visit(func(f *pflag.Flag) {
		var err error
		switch f.Name {
		case "root":
			cfg.Root, err = flags.GetString(f.Name)
		case "pattern":
			cfg.Patterns, err = flags.GetStringArray(f.Name)
		case "type":
			cfg.Types, err = flags.GetStringArray(f.Name)
		case "generic-types":
			cfg.GenericTypes, err = flags.GetBool(f.Name)
		case "workers":
			cfg.Workers, err = flags.GetInt(f.Name)
		case "fail-fast":
			cfg.FailFast, err = flags.GetBool(f.Name)
		case "ignore-file":
			cfg.IgnoreFile, err = flags.GetString(f.Name)
		case "no-ignore":
			cfg.NoIgnore, err = flags.GetBool(f.Name)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("flag --%s: %w", f.Name, err))
		}
	})
	return errors.Join(errs...)
}

// Validate checks that the configuration can drive a run
func (c *Config) Validate() error {
	if len(c.Patterns) == 0 {
		return errors.New("at least one pattern is required")
	}
	for _, p := range c.Patterns {
		if strings.TrimSpace(p) == "" {
			return errors.New("patterns must not be empty")
		}
		if filepath.IsAbs(p) || strings.HasPrefix(filepath.ToSlash(p), "/") {
			return fmt.Errorf("pattern %q must be relative to the root directory", p)
		}
		if !doublestar.ValidatePattern(filepath.ToSlash(p)) {
			return fmt.Errorf("invalid glob pattern %q", p)
		}
	}
	if !c.GenericTypes {
		n := 0
		for _, t := range c.Types {
			if strings.TrimSpace(t) != "" {
				n++
			}
		}
		if n == 0 {
			return errors.New("at least one type keyword is required unless generic_types is enabled")
		}
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	return nil
}
