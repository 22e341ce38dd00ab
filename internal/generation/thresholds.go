package generation

// Thresholds are the heuristic limits of the stop policy. The defaults have no
// documented derivation and are expected to be re-tuned per product.
type Thresholds struct {
	// MaxRawChars stops generation once the raw stream exceeds this many runes.
	MaxRawChars int `json:"max_raw_chars" yaml:"max_raw_chars" toml:"max_raw_chars"`
	// MaxDelimiterTags stops generation once DelimiterTag occurs more often.
	MaxDelimiterTags int `json:"max_delimiter_tags" yaml:"max_delimiter_tags" toml:"max_delimiter_tags"`
	// MaxSymbolRun stops generation when one visible symbol (a whole emoji
	// sequence counts as one) repeats this many times in a row.
	MaxSymbolRun int `json:"max_symbol_run" yaml:"max_symbol_run" toml:"max_symbol_run"`
	// MinSafeSentenceChars is the minimum length, in grapheme clusters, of a
	// digit-free SELF sentence that ends generation immediately.
	MinSafeSentenceChars int `json:"min_safe_sentence_chars" yaml:"min_safe_sentence_chars" toml:"min_safe_sentence_chars"`
	// GateEvery forces a stop check on every Nth fragment even without a boundary.
	GateEvery int `json:"gate_every" yaml:"gate_every" toml:"gate_every"`
}

// Shipped values of the Thresholds fields.
const (
	// DefaultMaxRawChars caps the raw stream at 1000 runes.
	DefaultMaxRawChars = 1000
	// DefaultMaxDelimiterTags allows at most 20 DelimiterTag occurrences.
	DefaultMaxDelimiterTags = 20
	// DefaultMaxSymbolRun stops on 5 identical symbols in a row.
	DefaultMaxSymbolRun = 5
	// DefaultMinSafeSentenceChars is the 10-character SELF fast-path minimum.
	DefaultMinSafeSentenceChars = 10
	// DefaultGateEvery checks the stop predicate at least every 10th fragment.
	DefaultGateEvery = 10
)

// DefaultThresholds returns the shipped heuristic limits.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MaxRawChars:          DefaultMaxRawChars,
		MaxDelimiterTags:     DefaultMaxDelimiterTags,
		MaxSymbolRun:         DefaultMaxSymbolRun,
		MinSafeSentenceChars: DefaultMinSafeSentenceChars,
		GateEvery:            DefaultGateEvery,
	}
}

// WithDefaults fills unset (<= 0) fields from DefaultThresholds.
func (t Thresholds) WithDefaults() Thresholds {
	d := DefaultThresholds()
	if t.MaxRawChars <= 0 {
		t.MaxRawChars = d.MaxRawChars
	}
	if t.MaxDelimiterTags <= 0 {
		t.MaxDelimiterTags = d.MaxDelimiterTags
	}
	if t.MaxSymbolRun <= 0 {
		t.MaxSymbolRun = d.MaxSymbolRun
	}
	if t.MinSafeSentenceChars <= 0 {
		t.MinSafeSentenceChars = d.MinSafeSentenceChars
	}
	if t.GateEvery <= 0 {
		t.GateEvery = d.GateEvery
	}
	return t
}
