package imaging

import "errors"

// Sentinel errors returned by image handles. Callers match them with
// errors.Is; the returned errors carry context wrapped around the sentinel.
var (
	// ErrInvalidState is returned when an operation needs a bound buffer but
	// the handle is empty, or when a shape argument is unusable.
	ErrInvalidState = errors.New("invalid image state")

	// ErrOutOfRange is returned by checked accessors for coordinates outside
	// the image.
	ErrOutOfRange = errors.New("coordinates out of range")

	// ErrStorageUnavailable is returned when a deferred load from external
	// storage fails. The handle stays deferred and the load can be retried.
	ErrStorageUnavailable = errors.New("external storage unavailable")

	// ErrDecode and ErrEncode wrap failures reported by a Codec.
	ErrDecode = errors.New("image decode failed")
	ErrEncode = errors.New("image encode failed")
)
