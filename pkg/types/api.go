package types

// ModelsResponse wraps the list of models returned by GET /models.
type ModelsResponse struct {
	// Catalog models in catalog order.
	Models []Model `json:"models"`
}

// LoadRequest asks for a model to become resident. Either Model or the
// Category/Perspective pair identifies it.
type LoadRequest struct {
	// Model file name.
	// example: health-self-q4_k_m.gguf
	Model string `json:"model,omitempty" example:"health-self-q4_k_m.gguf"`
	// example: health
	Category string `json:"category,omitempty" example:"health"`
	// example: self
	Perspective string `json:"perspective,omitempty" example:"self"`
}

// LoadResponse reports the resident model after a successful load.
type LoadResponse struct {
	Resident Model `json:"resident"`
}

// GenerateRequest starts a streaming generation against the resident model.
// When Prompt is empty, it is built from Category, Perspective and Data.
type GenerateRequest struct {
	// Raw prompt text.
	// example: 오늘 8200걸음을 걸었어요.
	Prompt string `json:"prompt,omitempty" example:"오늘 8200걸음을 걸었어요."`
	// Perspective selecting the stop policy; defaults to the resident model's.
	// example: self
	Perspective string `json:"perspective,omitempty" example:"self"`
	// example: health
	Category string `json:"category,omitempty" example:"health"`
	// Structured data used when Prompt is empty.
	Data *ActivityData `json:"data,omitempty"`
	// Optional model file to make resident before generating.
	// example: health-self-q4_k_m.gguf
	Model string `json:"model,omitempty" example:"health-self-q4_k_m.gguf"`
}

// GenerateEvent is one NDJSON line of a /generate stream.
type GenerateEvent struct {
	// loading, streaming, success or error.
	// example: streaming
	Kind string `json:"kind" example:"streaming"`
	// Cumulative raw text (streaming) or final answer (success).
	Text string `json:"text,omitempty"`
	// example: 12
	TokenCount int    `json:"token_count,omitempty" example:"12"`
	Raw        string `json:"raw,omitempty"`
	// example: target_reached
	StopReason string `json:"stop_reason,omitempty" example:"target_reached"`
	Message    string `json:"message,omitempty"`
}

// PromptRequest previews the prompt for structured data.
type PromptRequest struct {
	// example: wellness
	Category string `json:"category" example:"wellness"`
	// example: other
	Perspective string       `json:"perspective" example:"other"`
	Data        ActivityData `json:"data"`
}

// PromptResponse carries the rendered prompt.
type PromptResponse struct {
	Prompt string `json:"prompt"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Overall state: idle, loaded or closed.
	// example: loaded
	State string `json:"state" example:"loaded"`
	// Resident model, if any.
	Resident *Model `json:"resident,omitempty"`
	// Load requests waiting for the slot.
	// example: 0
	QueueDepth int `json:"queue_depth" example:"0"`
	// Generations currently streaming.
	// example: 1
	ActiveGenerations int `json:"active_generations" example:"1"`
	// Engine in use (llama or scripted).
	// example: llama
	Engine string `json:"engine" example:"llama"`
	// Last error observed by the manager (if any).
	LastError string `json:"last_error,omitempty"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
	// Total number of successful loads.
	// example: 12
	LoadsTotal uint64 `json:"loads_total" example:"12"`
}
