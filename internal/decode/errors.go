package decode

import "fmt"

// Kind classifies a decode-layer failure. It mirrors the taxonomy the
// core reports up through internal/processor: InvalidInput, Io, Decode,
// FormatUnsupported, and Calculation (reserved, never produced here).
type Kind int

const (
	KindInvalidInput Kind = iota
	KindIO
	KindDecode
	KindFormatUnsupported
	KindCalculation
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindIO:
		return "io"
	case KindDecode:
		return "decode"
	case KindFormatUnsupported:
		return "format_unsupported"
	case KindCalculation:
		return "calculation"
	default:
		return "unknown"
	}
}

// Error is the typed error carried across the decode boundary. Suggestion
// is a short, user-actionable hint (e.g. "install FFmpeg, or provide a
// WAV/MP3/Opus file") shown verbatim by the CLI.
type Error struct {
	Kind       Kind
	Suggestion string
	Err        error
}

func (e *Error) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s: %v (%s)", e.Kind, e.Err, e.Suggestion)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Newf builds an *Error wrapping a formatted message, with no suggestion.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// WithSuggestion attaches a user-actionable hint to an existing error.
func WithSuggestion(kind Kind, suggestion string, err error) *Error {
	return &Error{Kind: kind, Suggestion: suggestion, Err: err}
}
