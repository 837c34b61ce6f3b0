package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	appName        = "sra2mito"
	envPrefix      = "SRA2MITO"
	configFileName = "config.yaml"
	localFileName  = "sra2mito.yaml"
)

// Loader handles configuration loading with Viper.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a new [Loader] seeded with [DefaultConfig] values and
// environment variable bindings.
func NewLoader() *Loader {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Short aliases for the binaries people most often relocate.
	_ = v.BindEnv("tools.downloader", envPrefix+"_FASTQ_DL_PATH")
	_ = v.BindEnv("tools.assembler", envPrefix+"_SPADES_PATH")

	return &Loader{v: v}
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("tools.downloader", d.Tools.Downloader)
	v.SetDefault("tools.trimmer", d.Tools.Trimmer)
	v.SetDefault("tools.sampler", d.Tools.Sampler)
	v.SetDefault("tools.assembler", d.Tools.Assembler)
	v.SetDefault("tools.aligner", d.Tools.Aligner)
	v.SetDefault("download.force", d.Download.Force)
	v.SetDefault("sampling.reads", d.Sampling.Reads)
	v.SetDefault("sampling.seed", d.Sampling.Seed)
	v.SetDefault("assembly.kmers", d.Assembly.Kmers)
	v.SetDefault("assembly.only_assembler", d.Assembly.OnlyAssembler)
	v.SetDefault("assembly.gfa11", d.Assembly.GFA11)
	v.SetDefault("verify.pairing", d.Verify.Pairing)
	v.SetDefault("verify.pairing_records", d.Verify.PairingRecords)
	v.SetDefault("log.level", d.Log.Level)
}

// Load discovers and loads the configuration.
//
// SRA2MITO_CONFIG_PATH wins over the user config directory, which wins over
// ./sra2mito.yaml. When no file exists the defaults (plus env overrides) are used.
func (l *Loader) Load() (*Config, error) {
	if path := os.Getenv(envPrefix + "_CONFIG_PATH"); path != "" {
		return l.LoadFromFile(path)
	}

	if path, err := DefaultConfigPath(); err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			return l.LoadFromFile(path)
		}
	}

	if _, err := os.Stat(localFileName); err == nil {
		return l.LoadFromFile(localFileName)
	}

	return l.unmarshal()
}

// LoadFromFile loads configuration from the given file. The format is taken
// from the file extension (YAML, JSON, TOML).
func (l *Loader) LoadFromFile(path string) (*Config, error) {
	l.v.SetConfigFile(path)
	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	slog.Debug("config loaded", "path", path)
	return l.unmarshal()
}

func (l *Loader) unmarshal() (*Config, error) {
	cfg := &Config{}
	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise produce broken command lines.
func (c *Config) Validate() error {
	var errs []error
	if c.Sampling.Reads <= 0 {
		errs = append(errs, fmt.Errorf("sampling.reads must be positive, got %d", c.Sampling.Reads))
	}
	if len(c.Assembly.Kmers) == 0 {
		errs = append(errs, errors.New("assembly.kmers must not be empty"))
	}
	for _, k := range c.Assembly.Kmers {
		if k <= 0 || k%2 == 0 {
			errs = append(errs, fmt.Errorf("assembly.kmers: %d is not a positive odd number", k))
		}
	}
	if c.Verify.Pairing && c.Verify.PairingRecords <= 0 {
		errs = append(errs, fmt.Errorf("verify.pairing_records must be positive, got %d", c.Verify.PairingRecords))
	}
	for _, name := range c.Tools.Required() {
		if strings.TrimSpace(name) == "" {
			errs = append(errs, errors.New("tools: executable names must not be empty"))
			break
		}
	}
	return errors.Join(errs...)
}

// MustLoad loads the configuration and panics on error.
func MustLoad() *Config {
	cfg, err := NewLoader().Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// ConfigDir returns the platform-standard configuration directory for sra2mito.
func ConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, appName), nil
}

// DefaultConfigPath returns the path of the user-level config file.
func DefaultConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// EnsureConfigDir creates the user config directory if it does not exist.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}
