package types

import "time"

// HTTPConfig holds shared HTTP settings for calls to the conversion service.
type HTTPConfig struct {
	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "mathnotes/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// ConversionConfig holds settings for the remote conversion client.
type ConversionConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// PollInterval is the fixed delay between status checks (default 2s).
	PollInterval time.Duration `json:"poll_interval" yaml:"poll_interval" mapstructure:"poll_interval"`

	// MaxWait bounds the total time spent waiting for a job to reach a
	// terminal status (default 10m). Exceeding it is a timeout, not a
	// remote failure; the job may still be processing on the service side.
	MaxWait time.Duration `json:"max_wait" yaml:"max_wait" mapstructure:"max_wait"`
}

// OutputConfig holds settings for output assembly.
type OutputConfig struct {
	// Root is the directory under which timestamped output directories
	// are created (default "processed_notes").
	Root string `json:"root" yaml:"root" mapstructure:"root"`
}

// LedgerConfig holds settings for the local job ledger.
type LedgerConfig struct {
	// Path is the SQLite database file. Empty disables the ledger.
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// PipelineConfig groups all stage configurations for one conversion run.
type PipelineConfig struct {
	Conversion ConversionConfig `json:"conversion" yaml:"conversion" mapstructure:"conversion"`
	Output     OutputConfig     `json:"output" yaml:"output" mapstructure:"output"`
	Ledger     LedgerConfig     `json:"ledger" yaml:"ledger" mapstructure:"ledger"`
}
