package widget

import "errors"

// Validation rejections: no state change, shown to the user as a notice.
// Directory implementations return ErrUnknownCompany for identities they
// cannot resolve.
var (
	ErrEmptyIdentity  = errors.New("please enter a company id or name")
	ErrEmptyMessage   = errors.New("message is empty")
	ErrUnknownCompany = errors.New("unknown company")
)

var (
	ErrNotSignedIn       = errors.New("not signed in")
	ErrAlreadySignedIn   = errors.New("already signed in")
	ErrInvalidTransition = errors.New("invalid panel transition")
	ErrUnknownSuggestion = errors.New("unknown suggestion")
	ErrSessionNotFound   = errors.New("session not found")
)

// IsRejection reports whether err is a validation rejection.
func IsRejection(err error) bool {
	return errors.Is(err, ErrEmptyIdentity) ||
		errors.Is(err, ErrEmptyMessage) ||
		errors.Is(err, ErrUnknownCompany)
}
