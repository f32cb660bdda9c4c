package tessera

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a facade failure.
type Kind int

const (
	// ImageConversionError: the input image could not be turned into engine input.
	ImageConversionError Kind = iota + 1
	// EngineRecognitionError: the engine failed during a recognition pass.
	EngineRecognitionError
	// LanguageLoadError: a language pack could not be loaded at construction.
	LanguageLoadError
)

func (k Kind) String() string {
	switch k {
	case ImageConversionError:
		return "image conversion"
	case EngineRecognitionError:
		return "engine recognition"
	case LanguageLoadError:
		return "language load"
	}
	return "unknown"
}

// Sentinels matched by errors.Is against an *Error of the same kind.
var (
	ErrImageConversion   = errors.New("image conversion failed")
	ErrEngineRecognition = errors.New("engine recognition failed")
	ErrLanguageLoad      = errors.New("language load failed")
)

// ErrSessionClosed is wrapped by errors from calls on a closed session.
var ErrSessionClosed = errors.New("session is closed")

func (k Kind) sentinel() error {
	switch k {
	case ImageConversionError:
		return ErrImageConversion
	case EngineRecognitionError:
		return ErrEngineRecognition
	case LanguageLoadError:
		return ErrLanguageLoad
	}
	return nil
}

// Error is the error type returned by Session and Pool.
type Error struct {
	Kind     Kind
	Op       string   // operation that failed, such as "recognize" or "create pdf"
	Language Language // language pack involved, for LanguageLoadError
	Page     int      // 1-based page of a multi-page call, 0 otherwise
	Err      error    // underlying cause
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("tessera: ")
	b.WriteString(e.Kind.String())
	if e.Op != "" {
		b.WriteString(" in ")
		b.WriteString(e.Op)
	}
	if e.Language != "" {
		fmt.Fprintf(&b, " (language %s)", e.Language)
	}
	if e.Page > 0 {
		fmt.Fprintf(&b, " (page %d)", e.Page)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel of the error's kind.
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// KindOf returns the Kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func newError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// onPage tags err with page, keeping an existing *Error's kind.
func onPage(err error, op string, page int) error {
	var e *Error
	if errors.As(err, &e) {
		tagged := *e
		tagged.Page = page
		return &tagged
	}
	return &Error{Kind: EngineRecognitionError, Op: op, Page: page, Err: err}
}
