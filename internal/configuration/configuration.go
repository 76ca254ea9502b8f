package configuration

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	QualityTypeBLEU   = "bleu"
	QualityTypeRemote = "remote"

	SourceTypeText   = "text"
	SourceTypeSpeech = "speech"
)

// AppConfig represents the complete application configuration.
type AppConfig struct {
	// Logger — logger component configuration
	Logger LoggerConfig `mapstructure:"logger"`
	// Server — HTTP server configuration
	Server ServerConfig `mapstructure:"server"`
	// Evaluator — sentence-level evaluation parameters
	Evaluator EvaluatorConfig `mapstructure:"evaluator"`
	// Corpus — source/reference corpus locations
	Corpus CorpusConfig `mapstructure:"corpus"`
	// InstanceLog — per-instance execution log configuration
	InstanceLog InstanceLogConfig `mapstructure:"instance_log"`
	// Reports — retention of finished evaluation reports
	Reports ReportsConfig `mapstructure:"reports"`
}

// LoggerConfig defines logging settings.
type LoggerConfig struct {
	// Level — log level: debug, info, warn, warning, error.
	// Value is case-insensitive but checked in lowercase.
	Level string `mapstructure:"level"`
}

// ServerConfig contains HTTP server parameters.
type ServerConfig struct {
	// Address — address and port where the server will listen (e.g., ":8080").
	Address string `mapstructure:"address"`
}

// EvaluatorConfig defines the sentence-level evaluation parameters.
type EvaluatorConfig struct {
	// StartIndex — first corpus index to evaluate (inclusive).
	StartIndex int `mapstructure:"start_index"`
	// EndIndex — end of the evaluated range (exclusive). A negative value
	// means "evaluate up to the end of the corpus". Leaving the field unset
	// is treated the same way.
	EndIndex int `mapstructure:"end_index"`
	// LatencyUnit — unit of the target length used by latency metrics:
	// "word" or "char".
	LatencyUnit string `mapstructure:"eval_latency_unit"`
	// Tokenizer — tokenization applied before BLEU: "13a", "char" or "none".
	Tokenizer string `mapstructure:"sacrebleu_tokenizer"`
	// NoSpace — join predicted tokens without separators (for languages
	// written without spaces).
	NoSpace bool `mapstructure:"no_space"`
	// SourceType — source modality: "text" (default) or "speech".
	SourceType string `mapstructure:"source_type"`
	// Quality — quality scorer selection
	Quality QualityConfig `mapstructure:"quality"`
}

// QualityConfig selects the corpus-level quality scorer.
type QualityConfig struct {
	// Type — scorer type: "bleu" (local, default) or "remote".
	Type string `mapstructure:"type"`
	// URL — base URL of the remote metric service (remote type only).
	URL string `mapstructure:"url"`
	// Timeout — HTTP timeout for the remote metric service.
	Timeout time.Duration `mapstructure:"timeout"`
}

// CorpusConfig defines where the evaluated corpus is read from.
type CorpusConfig struct {
	// Source — path to the source side: one sentence per line for text,
	// one audio file path per line for speech.
	Source string `mapstructure:"source"`
	// Reference — path to the reference translations, one per line.
	Reference string `mapstructure:"reference"`
}

// InstanceLogConfig defines the per-instance execution log.
type InstanceLogConfig struct {
	// File — instance log path (optional; empty disables the log)
	File string `mapstructure:"file"`
	// Size — maximal log file size in MB before rotation (default 100)
	Size int `mapstructure:"size"`
	// Backups — number of rotated files to keep (default 20)
	Backups int `mapstructure:"backups"`
}

// ReportsConfig defines retention of finished evaluation reports.
type ReportsConfig struct {
	// Length — maximum number of reports kept per run id (default 16).
	Length int `mapstructure:"length"`
	// Ttl — lifetime of a run's report history (time.Duration), after which
	// inactive runs are deleted. Example: "5m", "1h", "24h".
	Ttl time.Duration `mapstructure:"ttl"`
}

// Validate checks the correctness of the entire application configuration.
// Calls validation for each nested structure and returns the first detected error.
// Returns nil if the configuration is valid.
func (c *AppConfig) Validate() error {
	if err := c.Logger.Validate(); err != nil {
		return err
	}

	if err := c.Server.Validate(); err != nil {
		return err
	}

	if err := c.Evaluator.Validate(); err != nil {
		return err
	}

	if err := c.Corpus.Validate(); err != nil {
		return err
	}

	if err := c.InstanceLog.Validate(); err != nil {
		return err
	}

	if err := c.Reports.Validate(); err != nil {
		return err
	}

	return nil
}

// Validate checks the correctness of the logger configuration.
// Verifies that the log level is one of the supported values.
// Supported values: debug, info, warn, warning, error (case-insensitive).
func (l *LoggerConfig) Validate() error {
	if l.Level == "" {
		l.Level = "info"
	}

	valid := map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true}
	if !valid[strings.ToLower(l.Level)] {
		return fmt.Errorf("logger.level: unsupported level '%s'", l.Level)
	}

	return nil
}

// Validate checks the correctness of the server configuration and applies
// the default listen address.
func (n *ServerConfig) Validate() error {
	if n.Address == "" {
		n.Address = ":8080"
	}

	return nil
}

// Validate checks the evaluator configuration and applies defaults:
// tokenizer "13a", latency unit "word", full-corpus end index.
func (e *EvaluatorConfig) Validate() error {
	if e.StartIndex < 0 {
		return errors.New("evaluator.start_index: must not be negative")
	}

	// An unset end index reads back as 0; treat it as "full corpus".
	if e.EndIndex == 0 {
		e.EndIndex = -1
	}

	if e.Tokenizer == "" {
		e.Tokenizer = "13a"
	}

	if e.LatencyUnit == "" {
		e.LatencyUnit = "word"
	}
	if e.LatencyUnit != "word" && e.LatencyUnit != "char" {
		return fmt.Errorf("evaluator.eval_latency_unit: unsupported unit '%s'", e.LatencyUnit)
	}

	switch e.SourceType {
	case "", SourceTypeText, SourceTypeSpeech:
	default:
		return fmt.Errorf("evaluator.source_type: unsupported type '%s'", e.SourceType)
	}

	return e.Quality.Validate()
}

// Validate checks the quality scorer configuration.
func (q *QualityConfig) Validate() error {
	if q.Type == "" {
		q.Type = QualityTypeBLEU
	}

	if q.Timeout == 0 {
		q.Timeout = 10 * time.Second
	}

	switch q.Type {
	case QualityTypeBLEU:
	case QualityTypeRemote:
		if q.URL == "" {
			return errors.New("evaluator.quality.url: must be specified for the remote scorer")
		}
		if _, err := url.Parse(q.URL); err != nil {
			return errors.New("evaluator.quality.url: URL is incorrect")
		}
	default:
		return fmt.Errorf("evaluator.quality.type: unsupported type '%s'", q.Type)
	}

	return nil
}

// Validate checks the corpus configuration.
// Both sides of the corpus must be specified.
func (c *CorpusConfig) Validate() error {
	if c.Source == "" {
		return errors.New("corpus.source: must be specified")
	}

	if c.Reference == "" {
		return errors.New("corpus.reference: must be specified")
	}

	return nil
}

// Validate instance log parameters
func (i *InstanceLogConfig) Validate() error {
	if i.Size == 0 {
		i.Size = 100
	}

	if i.Backups == 0 {
		i.Backups = 20
	}

	return nil
}

// Validate report retention parameters
func (r *ReportsConfig) Validate() error {
	if r.Length == 0 {
		r.Length = 16
	}

	if r.Ttl == 0 {
		r.Ttl = time.Hour
	}

	return nil
}

// LoadConfig loads configuration from the specified file using Viper.
// Supports YAML format. Also includes environment variable loading (AutomaticEnv),
// which can override values from the file.
//
// Parameter configPath — path to the configuration file.
//
// Returns a pointer to AppConfig or an error if:
// - the file is not found or inaccessible
// - the configuration has invalid format
// - one of the sections fails validation
func LoadConfig(configPath string) (*AppConfig, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config AppConfig
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}
