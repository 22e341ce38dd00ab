package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"edgellm/internal/catalog"
	"edgellm/internal/config"
	"edgellm/internal/engine"
	"edgellm/internal/manager"
)

// Options are the persistent flags shared by every subcommand.
type Options struct {
	ConfigPath string
	ScriptFile string
	Cfg        config.Config
}

func bindPersistent(root *cobra.Command, o *Options) {
	f := root.PersistentFlags()
	f.StringVar(&o.ConfigPath, "config", os.Getenv("EDGELLM_CONFIG"), "Config file (.yaml, .json or .toml)")
	f.String("models-dir", "", "Directory holding the *.gguf catalog models (defaults EDGELLM_MODELS_DIR or "+config.DefaultModelsDir+")")
	f.String("catalog", "", "Catalog file overriding the built-in model list")
	f.String("engine", "", "Native engine: llama|scripted (defaults EDGELLM_ENGINE or llama)")
	f.StringVar(&o.ScriptFile, "script", "", "Text replayed by the scripted engine, one fragment per word")
	f.Int("llama-ctx", 0, "llama.cpp context size")
	f.Int("llama-threads", 0, "llama.cpp threads (0 = runtime default)")
	f.Int("max-tokens", 0, "Maximum tokens per generation")
	f.String("log-level", "", "Log level: debug|info|warn|error")
	f.String("log-format", "", "Log format: console|json")
}

// resolve builds the effective config: file, then explicit flags, then
// EDGELLM_* env, then defaults.
func (o *Options) resolve(cmd *cobra.Command) error {
	var cfg config.Config
	if o.ConfigPath != "" {
		c, err := config.Load(o.ConfigPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c
	}
	flags := cmd.Flags()
	str := func(name string, dst *string) {
		if flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}
	num := func(name string, dst *int) {
		if flags.Changed(name) {
			*dst, _ = flags.GetInt(name)
		}
	}
	str("models-dir", &cfg.ModelsDir)
	str("catalog", &cfg.CatalogFile)
	str("engine", &cfg.Engine)
	str("log-level", &cfg.LogLevel)
	str("log-format", &cfg.LogFormat)
	num("llama-ctx", &cfg.LlamaCtx)
	num("llama-threads", &cfg.LlamaThreads)
	num("max-tokens", &cfg.MaxTokens)
	if flags.Lookup("addr") != nil {
		str("addr", &cfg.Addr)
	}
	o.Cfg = cfg.FromEnv(os.Getenv).WithDefaults()
	return nil
}

func (o *Options) catalog() (*catalog.Catalog, error) {
	if o.Cfg.CatalogFile == "" {
		return catalog.Default(), nil
	}
	return catalog.LoadFile(o.Cfg.CatalogFile)
}

// newEngine constructs the configured native engine.
func (o *Options) newEngine() (engine.Engine, error) {
	switch strings.ToLower(o.Cfg.Engine) {
	case "llama":
		p := engine.DefaultParams()
		p.ContextSize = o.Cfg.LlamaCtx
		p.MaxTokens = o.Cfg.MaxTokens
		if o.Cfg.LlamaThreads > 0 {
			p.Threads = o.Cfg.LlamaThreads
		}
		return engine.NewLlama(p), nil
	case "scripted":
		var frags []string
		if o.ScriptFile != "" {
			b, err := os.ReadFile(o.ScriptFile)
			if err != nil {
				return nil, fmt.Errorf("read script: %w", err)
			}
			frags = splitFragments(string(b))
		}
		return engine.NewScripted(frags...), nil
	}
	return nil, fmt.Errorf("unknown engine %q (want llama or scripted)", o.Cfg.Engine)
}

// newManager wires the manager for one command invocation. Callers Close it.
func (o *Options) newManager() (*manager.Manager, error) {
	cat, err := o.catalog()
	if err != nil {
		return nil, err
	}
	eng, err := o.newEngine()
	if err != nil {
		return nil, err
	}
	return manager.NewWithConfig(manager.Config{
		Catalog:    cat,
		Engine:     eng,
		EngineName: strings.ToLower(o.Cfg.Engine),
		ModelsDir:  o.Cfg.ModelsDir,
		Thresholds: o.Cfg.Thresholds,
		FormatChat: true,
		Logger:     logger,
	})
}

// splitFragments splits text after every space so the pieces concatenate
// back to the original.
func splitFragments(s string) []string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return nil
	}
	return strings.SplitAfter(s, " ")
}

// splitCSV splits a comma-separated flag value, dropping empty items.
func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
