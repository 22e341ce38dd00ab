package config

import (
	"strings"
	"testing"

	"edgellm/internal/generation"
)

func TestLoad_MalformedFiles(t *testing.T) {
	d := t.TempDir()
	cases := map[string]string{
		"bad.yaml":       "addr: :8080\n: broken\n",
		"bad.json":       `{ "addr": ":8080", "models_dir": }`,
		"bad.toml":       "addr=:8080\nmodels_dir\n",
		"thresholds.yml": "thresholds:\n  max_raw_chars: lots\n",
	}
	for name, content := range cases {
		p := writeTempFile(t, d, name, content)
		_, err := Load(p)
		if err == nil {
			t.Fatalf("%s: expected parse error", name)
		}
		if !strings.Contains(err.Error(), name) {
			t.Fatalf("%s: error should name the file: %v", name, err)
		}
	}
	if _, err := Load("/definitely/not/a/real/edgellm.yaml"); err == nil {
		t.Fatalf("expected error for nonexistent file")
	}
}

// A thresholds block overrides only the fields it sets; the rest fall back
// to the generation defaults in every format.
func TestLoad_PartialThresholdsKeepDefaults(t *testing.T) {
	d := t.TempDir()
	files := map[string]string{
		"cfg.yaml": "thresholds:\n  max_delimiter_tags: 6\n  min_safe_sentence_chars: -1\n",
		"cfg.json": `{"thresholds":{"max_delimiter_tags":6,"min_safe_sentence_chars":-1}}`,
		"cfg.toml": "[thresholds]\nmax_delimiter_tags = 6\nmin_safe_sentence_chars = -1\n",
	}
	want := generation.DefaultThresholds()
	want.MaxDelimiterTags = 6
	for name, content := range files {
		cfg, err := Load(writeTempFile(t, d, name, content))
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if got := cfg.WithDefaults().Thresholds; got != want {
			t.Fatalf("%s: thresholds=%+v want %+v", name, got, want)
		}
	}
}

// Effective config: file values first, then EDGELLM_* for what the file left
// unset, then defaults.
func TestLoad_FileThenEnvThenDefaults(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.yaml", "engine: scripted\nlog_format: json\nllama_threads: 2\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatal(err)
	}
	env := map[string]string{
		"EDGELLM_ENGINE":        "llama",
		"EDGELLM_LLAMA_THREADS": "8",
		"EDGELLM_CATALOG_FILE":  "/etc/edgellm/catalog.toml",
		"EDGELLM_LOG_LEVEL":     "debug",
	}
	cfg = cfg.FromEnv(func(k string) string { return env[k] }).WithDefaults()
	if cfg.Engine != "scripted" || cfg.LlamaThreads != 2 || cfg.LogFormat != "json" {
		t.Fatalf("file values must win: %+v", cfg)
	}
	if cfg.CatalogFile != "/etc/edgellm/catalog.toml" || cfg.LogLevel != "debug" {
		t.Fatalf("env must fill unset fields: %+v", cfg)
	}
	if cfg.Addr != DefaultAddr || cfg.LlamaCtx != DefaultLlamaCtx || cfg.Thresholds != generation.DefaultThresholds() {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}
