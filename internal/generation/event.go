package generation

// Kind tags a pipeline event.
type Kind string

const (
	KindLoading   Kind = "loading"
	KindStreaming Kind = "streaming"
	KindSuccess   Kind = "success"
	KindError     Kind = "error"
)

// Event is one element of a generation stream: Loading once, then zero or
// more Streaming events with the cumulative raw text, then exactly one of
// Success or Error.
type Event struct {
	Kind Kind `json:"kind"`
	// Text is the cumulative raw text (Streaming) or the final answer (Success).
	Text       string     `json:"text,omitempty"`
	TokenCount int        `json:"token_count,omitempty"`
	Raw        string     `json:"raw,omitempty"`
	StopReason StopReason `json:"stop_reason,omitempty"`
	Message    string     `json:"message,omitempty"`
	// Err is the underlying error of an Error event.
	Err error `json:"-"`
}

// Terminal reports whether e ends the stream.
func (e Event) Terminal() bool { return e.Kind == KindSuccess || e.Kind == KindError }

func errorEvent(err error) Event {
	return Event{Kind: KindError, Message: err.Error(), Err: err}
}
