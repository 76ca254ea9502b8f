package configuration

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
logger:
  level: debug
server:
  address: ":9090"
evaluator:
  start_index: 1
  end_index: 5
  eval_latency_unit: char
  sacrebleu_tokenizer: char
  source_type: text
corpus:
  source: /data/source.txt
  reference: /data/reference.txt
instance_log:
  file: /var/log/instances.log
reports:
  length: 4
  ttl: 5m
`)

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", config.Logger.Level)
	assert.Equal(t, ":9090", config.Server.Address)
	assert.Equal(t, 1, config.Evaluator.StartIndex)
	assert.Equal(t, 5, config.Evaluator.EndIndex)
	assert.Equal(t, "char", config.Evaluator.LatencyUnit)
	assert.Equal(t, "char", config.Evaluator.Tokenizer)
	assert.Equal(t, "/data/source.txt", config.Corpus.Source)
	assert.Equal(t, "/var/log/instances.log", config.InstanceLog.File)
	assert.Equal(t, 4, config.Reports.Length)
	assert.Equal(t, 5*time.Minute, config.Reports.Ttl)
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfig(t, `
corpus:
  source: /data/source.txt
  reference: /data/reference.txt
`)

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "info", config.Logger.Level)
	assert.Equal(t, ":8080", config.Server.Address)
	assert.Equal(t, 0, config.Evaluator.StartIndex)
	assert.Equal(t, -1, config.Evaluator.EndIndex, "unset end index means the full corpus")
	assert.Equal(t, "13a", config.Evaluator.Tokenizer)
	assert.Equal(t, "word", config.Evaluator.LatencyUnit)
	assert.Equal(t, QualityTypeBLEU, config.Evaluator.Quality.Type)
	assert.Equal(t, 10*time.Second, config.Evaluator.Quality.Timeout)
	assert.Equal(t, 100, config.InstanceLog.Size)
	assert.Equal(t, 20, config.InstanceLog.Backups)
	assert.Equal(t, 16, config.Reports.Length)
	assert.Equal(t, time.Hour, config.Reports.Ttl)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoggerConfig_Validate(t *testing.T) {
	c := LoggerConfig{Level: "WARN"}
	assert.NoError(t, c.Validate(), "level is case-insensitive")

	c = LoggerConfig{Level: "verbose"}
	assert.Error(t, c.Validate())
}

func TestEvaluatorConfig_Validate(t *testing.T) {
	c := EvaluatorConfig{StartIndex: -1}
	assert.Error(t, c.Validate())

	c = EvaluatorConfig{LatencyUnit: "syllable"}
	assert.Error(t, c.Validate())

	c = EvaluatorConfig{SourceType: "video"}
	assert.Error(t, c.Validate())

	c = EvaluatorConfig{SourceType: SourceTypeSpeech}
	assert.NoError(t, c.Validate())
}

func TestQualityConfig_Validate(t *testing.T) {
	c := QualityConfig{Type: QualityTypeRemote}
	assert.Error(t, c.Validate(), "remote scorer requires a URL")

	c = QualityConfig{Type: QualityTypeRemote, URL: "http://localhost:9000"}
	assert.NoError(t, c.Validate())

	c = QualityConfig{Type: "comet"}
	assert.Error(t, c.Validate())
}

func TestCorpusConfig_Validate(t *testing.T) {
	c := CorpusConfig{Reference: "/data/reference.txt"}
	assert.Error(t, c.Validate())

	c = CorpusConfig{Source: "/data/source.txt"}
	assert.Error(t, c.Validate())
}
