package ringfile

import "errors"

// Errors returned by ring operations. Callers match them with errors.Is; the
// underlying OS error, when there is one, is wrapped alongside.
var (
	ErrOpenFailure   = errors.New("ringfile: cannot open ring file")
	ErrAlreadyExists = errors.New("ringfile: ring file already exists")
	ErrInvalidFormat = errors.New("ringfile: invalid ring file format")

	ErrRecordTooLarge = errors.New("ringfile: record larger than ring capacity")
	ErrInvalidFraming = errors.New("ringfile: invalid record framing")
	ErrIO             = errors.New("ringfile: i/o error")

	ErrModeViolation = errors.New("ringfile: operation not allowed in this mode")
	ErrClosed        = errors.New("ringfile: ring is closed")
)
