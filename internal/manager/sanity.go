package manager

import (
	"os"

	"edgellm/internal/common/fsutil"
	"edgellm/internal/engine"
)

// SanityReport describes preflight checks for the engine and model assets.
type SanityReport struct {
	Engine         string   `json:"engine"`
	LlamaBuilt     bool     `json:"llama_built"`
	ModelsDir      string   `json:"models_dir"`
	ModelsDirFound bool     `json:"models_dir_found"`
	MissingModels  []string `json:"missing_models,omitempty"`
	Error          string   `json:"error,omitempty"`
}

// OK reports whether the configured engine can run and the models dir exists.
func (r SanityReport) OK() bool {
	return r.Error == "" && r.ModelsDirFound && (r.Engine != "llama" || r.LlamaBuilt)
}

// SanityCheck validates that the models directory exists and reports which
// catalog models are missing from it. It does not mutate state and is safe to
// call at any time.
func (m *Manager) SanityCheck() SanityReport {
	r := SanityReport{Engine: m.engineName, LlamaBuilt: engine.LlamaBuilt(), ModelsDir: m.modelsDir}
	dir, err := fsutil.ExpandHome(m.modelsDir)
	if err != nil {
		r.Error = err.Error()
		return r
	}
	if fi, err := os.Stat(dir); err != nil {
		r.Error = err.Error()
		return r
	} else if !fi.IsDir() {
		r.Error = "models path is not a directory"
		return r
	}
	r.ModelsDirFound = true
	for _, mdl := range m.ListModels() {
		if !mdl.Present {
			r.MissingModels = append(r.MissingModels, mdl.Filename)
		}
	}
	return r
}
