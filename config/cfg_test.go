package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rupor-github/gencfg"

	"bookmerge/common"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfiguration_NoFile(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() with empty path error = %v", err)
	}
	if cfg.Version != 1 {
		t.Errorf("Default config version = %d, want 1", cfg.Version)
	}
}

func TestConfig_DefaultValues(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if cfg.Merge.Snapshots.Tags != "pages_tagged_by_ai.json" {
		t.Errorf("Snapshots.Tags = %q", cfg.Merge.Snapshots.Tags)
	}
	if cfg.Merge.Fallback.Order != common.FallbackOrderChronological || !cfg.Merge.Fallback.UseMonth {
		t.Errorf("Fallback = %+v", cfg.Merge.Fallback)
	}
	if !cfg.Merge.CheckCoverage || cfg.Merge.Strict {
		t.Errorf("Merge = %+v", cfg.Merge)
	}
	if cfg.Output.Format != common.OutputFmtText || cfg.Output.Language != "en" {
		t.Errorf("Output = %+v", cfg.Output)
	}
	if !strings.Contains(cfg.Output.HeaderTemplate, "{{ .Page }}") {
		t.Errorf("HeaderTemplate must not be expanded: %q", cfg.Output.HeaderTemplate)
	}
	if cfg.Batch.Concurrency != 4 || cfg.Batch.MaxTries != 5 {
		t.Errorf("Batch = %+v", cfg.Batch)
	}
	if cfg.Batch.InitialInterval != 2*time.Second || cfg.Batch.MaxInterval != time.Minute || cfg.Batch.PageTimeout != 5*time.Minute {
		t.Errorf("Batch intervals = %v %v %v", cfg.Batch.InitialInterval, cfg.Batch.MaxInterval, cfg.Batch.PageTimeout)
	}
	if cfg.Logging.ConsoleLogger.Level != "normal" || cfg.Logging.FileLogger.Level != "none" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
}

func TestLoadConfiguration_WithFile(t *testing.T) {
	path := writeConfig(t, `version: 1
merge:
  primary_book: book1
  secondary_book: book2
  fallback:
    ignore_insertion_points: true
    order: source
    min_confidence: 0.5
  strict: true
output:
  format: sqlite
  language: he
batch:
  command: ["python3", "tag.py"]
  api_key: very-secret
  concurrency: 2
  requests_per_minute: 0
logging:
  console:
    level: debug
`)

	cfg, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if cfg.Merge.PrimaryBook != "book1" || cfg.Merge.SecondaryBook != "book2" || !cfg.Merge.Strict {
		t.Errorf("Merge = %+v", cfg.Merge)
	}
	if !cfg.Merge.Fallback.IgnoreInsertionPoints || cfg.Merge.Fallback.Order != common.FallbackOrderSource || cfg.Merge.Fallback.MinConfidence != 0.5 {
		t.Errorf("Fallback = %+v", cfg.Merge.Fallback)
	}
	// not mentioned in file - default kept
	if !cfg.Merge.Fallback.UseMonth {
		t.Error("UseMonth default lost")
	}
	if cfg.Output.Format != common.OutputFmtSqlite || cfg.Output.Language != "he" {
		t.Errorf("Output = %+v", cfg.Output)
	}
	if len(cfg.Batch.Command) != 2 || cfg.Batch.APIKey.Reveal() != "very-secret" || cfg.Batch.Concurrency != 2 {
		t.Errorf("Batch = %+v", cfg.Batch)
	}
}

func TestLoadConfiguration_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "invalid yaml", content: "version: 1\nmerge:\n  strict: true\n  invalid indent\n"},
		{name: "unknown field", content: "version: 1\nunknown_field: value\n"},
		{name: "bad version", content: "version: 2\n"},
		{name: "bad format", content: "version: 1\noutput:\n  format: pdf\n"},
		{name: "bad order", content: "version: 1\nmerge:\n  fallback:\n    order: random\n"},
		{name: "confidence out of range", content: "version: 1\nmerge:\n  fallback:\n    min_confidence: 1.5\n"},
		{name: "bad language", content: "version: 1\noutput:\n  language: \"not a language\"\n"},
		{name: "no concurrency", content: "version: 1\nbatch:\n  concurrency: 0\n"},
		{name: "intervals", content: "version: 1\nbatch:\n  initial_interval: 1m\n  max_interval: 1s\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfiguration(writeConfig(t, tt.content)); err == nil {
				t.Error("LoadConfiguration() expected error")
			}
		})
	}
}

func TestLoadConfiguration_NonExistentFile(t *testing.T) {
	if _, err := LoadConfiguration("/nonexistent/config.yaml"); err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestLoadConfiguration_WithOptions(t *testing.T) {
	option := func(opts *gencfg.ProcessingOptions) {}
	cfg, err := LoadConfiguration("", option)
	if err != nil || cfg == nil {
		t.Fatalf("LoadConfiguration() with options = %v, %v", cfg, err)
	}
}

func TestPrepare(t *testing.T) {
	data, err := Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if _, err = unmarshalConfig(data, &Config{}, true); err != nil {
		t.Errorf("Prepared config is not valid: %v", err)
	}
}

func TestDump(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	cfg.Batch.APIKey = "very-secret"

	data, err := Dump(cfg)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}
	out := string(data)
	if strings.Contains(out, "very-secret") || !strings.Contains(out, SecretStringValue) {
		t.Errorf("Dump() leaks secret:\n%s", out)
	}
	for _, want := range []string{"format: text", "order: chronological", "initial_interval: 2s"} {
		if !strings.Contains(out, want) {
			t.Errorf("Dump() misses %q:\n%s", want, out)
		}
	}

	back, err := unmarshalConfig(data, &Config{}, false)
	if err != nil {
		t.Fatalf("unmarshalConfig() of dump error = %v", err)
	}
	if back.Output.Format != cfg.Output.Format || back.Batch.PageTimeout != cfg.Batch.PageTimeout {
		t.Errorf("dump does not load back: %+v", back)
	}
}

func TestUnmarshalConfig_WrapsValidationError(t *testing.T) {
	_, err := unmarshalConfig([]byte("version: 99\n"), &Config{}, true)
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
	if !strings.Contains(err.Error(), "validat") {
		t.Errorf("expected error to mention validation, got: %v", err)
	}
	if errors.Unwrap(err) == nil {
		t.Errorf("expected wrapped error, got bare error: %v", err)
	}
}

func TestSecretString(t *testing.T) {
	var empty SecretString
	if data, _ := empty.MarshalJSON(); string(data) != "null" {
		t.Errorf("MarshalJSON() of empty = %s", data)
	}
	s := SecretString("key")
	if data, _ := s.MarshalJSON(); string(data) != `"`+SecretStringValue+`"` {
		t.Errorf("MarshalJSON() = %s", data)
	}
	if s.String() != SecretStringValue || s.Reveal() != "key" {
		t.Errorf("String() = %q, Reveal() = %q", s.String(), s.Reveal())
	}
}
