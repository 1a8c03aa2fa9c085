package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Resolver errors. ErrLookup covers a catalog reference that does not
	// resolve at all; ErrResolution wraps any later failure in the metadata
	// pipeline. Callers match with [errors.Is].
	ErrLookup     = fmt.Errorf("track lookup failed")
	ErrResolution = fmt.Errorf("metadata resolution failed")

	// Account and authorization errors. These are the only errors whose text
	// is shown to users verbatim, so they stay short and carry no internal
	// detail.
	ErrUsernameTaken      = fmt.Errorf("username already taken")
	ErrInvalidCredentials = fmt.Errorf("invalid username or password")
	ErrUnauthorized       = fmt.Errorf("not signed in")
	ErrMalformedInput     = fmt.Errorf("malformed input")

	// Delivery errors. A workspace page creation that came back non-2xx is
	// distinct from a payload that failed to parse (ErrMalformedInput).
	ErrDelivery = fmt.Errorf("workspace delivery failed")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
)
