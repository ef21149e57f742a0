package installer

import (
	"errors"
	"net/http"
)

// User-facing messages. The merchant admin is German.
const (
	MsgMissingSectionID = "Section ID fehlt"
	MsgSectionNotFound  = "Section nicht gefunden"
	MsgNoActiveTheme    = "Kein aktives Theme gefunden."
	MsgUploadFailed     = "Fehler beim Hochladen der Section"
	MsgTryAgainLater    = "Section konnte nicht installiert werden. Bitte versuche es später erneut."
	MsgUnexpected       = "Ein Fehler ist aufgetreten"
)

// ErrNoActiveTheme is returned when no theme has the MAIN role.
var ErrNoActiveTheme = errors.New("no theme with role MAIN")

// Kind classifies an install failure.
type Kind int

const (
	// KindInput is a malformed request; no remote call was made.
	KindInput Kind = iota + 1
	// KindNotFound is a section id missing from the catalog, or a broken bundle.
	KindNotFound
	// KindPrecondition needs merchant action, e.g. publishing a theme.
	KindPrecondition
	// KindTransport covers failed remote calls and non-OK responses.
	KindTransport
	// KindValidation carries field-level errors reported by the theme API.
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindNotFound:
		return "not_found"
	case KindPrecondition:
		return "precondition"
	case KindTransport:
		return "transport"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// Error is an install failure with a message safe to show to the merchant.
// The cause stays server-side.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

// NewError creates an install error. cause may be nil.
func NewError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// Error returns the user-facing message.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap provides compatibility for errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.cause
}

// HTTPStatus maps the kind to the status the install endpoint answers with.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindInput, KindPrecondition:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// asInstallError returns err as an *Error, classifying anything else as an
// unexpected transport failure.
func asInstallError(err error) *Error {
	var ie *Error
	if errors.As(err, &ie) {
		return ie
	}
	return NewError(KindTransport, MsgUnexpected, err)
}
