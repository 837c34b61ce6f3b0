// Package config provides configuration loading and management for sra2mito.
//
// Configuration is loaded using Viper, supporting YAML config files and environment
// variable overrides. The defaults reproduce the canonical pipeline (fastq-dl,
// fastp, seqtk, SPAdes, bowtie2) so no configuration file is needed.
//
// Key types:
//   - [Config] is the root configuration container with all settings
//   - [Loader] handles Viper-based configuration loading
//   - [ToolsConfig] names the external executables
//   - [SamplingConfig] and [AssemblyConfig] hold the fixed stage parameters
//
// Configuration priority (highest to lowest):
//  1. Environment variables (SRA2MITO_ prefix)
//  2. Config file given with --config, or SRA2MITO_CONFIG_PATH
//  3. User config directory (platform-standard):
//     - Linux: ~/.config/sra2mito/config.yaml
//     - macOS: ~/Library/Application Support/sra2mito/config.yaml
//     - Windows: %APPDATA%\sra2mito\config.yaml
//  4. ./sra2mito.yaml
//  5. [DefaultConfig] defaults
package config

import (
	"strconv"
	"strings"
)

// Config represents the root configuration structure.
type Config struct {
	// Tools names the external executables the pipeline invokes.
	Tools ToolsConfig `mapstructure:"tools"`

	// Download contains read downloader settings.
	Download DownloadConfig `mapstructure:"download"`

	// Sampling contains subsampling parameters.
	Sampling SamplingConfig `mapstructure:"sampling"`

	// Assembly contains assembler parameters.
	Assembly AssemblyConfig `mapstructure:"assembly"`

	// Verify controls the post-sampling mate pairing check.
	Verify VerifyConfig `mapstructure:"verify"`

	// Log controls diagnostic logging on stderr.
	Log LogConfig `mapstructure:"log"`
}

// ToolsConfig contains the executable names (or paths) of the external tools.
//
// Each value is resolved on PATH unless it contains a path separator.
type ToolsConfig struct {
	// Downloader fetches reads for an accession. Default: "fastq-dl".
	// Can be overridden with SRA2MITO_FASTQ_DL_PATH.
	Downloader string `mapstructure:"downloader"`

	// Trimmer performs quality trimming and QC reporting. Default: "fastp".
	Trimmer string `mapstructure:"trimmer"`

	// Sampler draws a seeded subsample of reads. Default: "seqtk".
	Sampler string `mapstructure:"sampler"`

	// Assembler builds the assembly. Default: "spades.py".
	// Can be overridden with SRA2MITO_SPADES_PATH.
	Assembler string `mapstructure:"assembler"`

	// Aligner is checked for presence only and never invoked. Default: "bowtie2".
	Aligner string `mapstructure:"aligner"`
}

// Required returns the tools in the order they are checked.
func (t ToolsConfig) Required() []string {
	return []string{t.Downloader, t.Trimmer, t.Sampler, t.Assembler, t.Aligner}
}

// DownloadConfig contains read downloader settings.
type DownloadConfig struct {
	// Force passes --force to the downloader so stale partial files are replaced.
	// Default: true
	Force bool `mapstructure:"force"`
}

// SamplingConfig contains the subsampling parameters.
type SamplingConfig struct {
	// Reads is the number of reads drawn from each mate file.
	// Default: 2000000
	Reads int `mapstructure:"reads"`

	// Seed is the random seed passed to the sampler. Both mates use the same
	// seed so the sampler picks the same record positions from each file.
	// Default: 100
	Seed int `mapstructure:"seed"`
}

// AssemblyConfig contains the assembler parameters.
type AssemblyConfig struct {
	// Kmers is the k-mer schedule. Default: [21, 33, 55, 77, 89]
	Kmers []int `mapstructure:"kmers"`

	// OnlyAssembler skips the assembler's read error correction.
	// Default: true
	OnlyAssembler bool `mapstructure:"only_assembler"`

	// GFA11 asks the assembler to write the assembly graph in GFA 1.1.
	// Default: true
	GFA11 bool `mapstructure:"gfa11"`
}

// KmerList renders the k-mer schedule the way the assembler expects it ("21,33,55").
func (a AssemblyConfig) KmerList() string {
	parts := make([]string, len(a.Kmers))
	for i, k := range a.Kmers {
		parts[i] = strconv.Itoa(k)
	}
	return strings.Join(parts, ",")
}

// VerifyConfig controls the mate pairing check run after subsampling.
type VerifyConfig struct {
	// Pairing enables the read ID comparison between sampled mates.
	// Default: true
	Pairing bool `mapstructure:"pairing"`

	// PairingRecords is how many leading records of each mate are compared.
	// Default: 1000
	PairingRecords int `mapstructure:"pairing_records"`
}

// LogConfig controls the diagnostic logger.
type LogConfig struct {
	// Level is one of "debug", "info", "warn", "error". Default: "warn"
	Level string `mapstructure:"level"`
}

// DefaultConfig returns a new [Config] with the canonical pipeline settings.
func DefaultConfig() *Config {
	return &Config{
		Tools: ToolsConfig{
			Downloader: "fastq-dl",
			Trimmer:    "fastp",
			Sampler:    "seqtk",
			Assembler:  "spades.py",
			Aligner:    "bowtie2",
		},
		Download: DownloadConfig{
			Force: true,
		},
		Sampling: SamplingConfig{
			Reads: 2000000,
			Seed:  100,
		},
		Assembly: AssemblyConfig{
			Kmers:         []int{21, 33, 55, 77, 89},
			OnlyAssembler: true,
			GFA11:         true,
		},
		Verify: VerifyConfig{
			Pairing:        true,
			PairingRecords: 1000,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}
