package engine

// LlamaBuilt reports whether this binary links the native llama runtime.
func LlamaBuilt() bool { return llamaBuilt }
