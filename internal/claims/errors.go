package claims

import "errors"

// ErrInputRejected is the only fatal error in the engine: the content could not
// be normalized into an analyzable Input.
var ErrInputRejected = errors.New("input rejected")
