package expedition

import "errors"

var (
	// ErrBlankName is returned when a peak or climber is constructed without a name.
	ErrBlankName = errors.New("name cannot be null or whitespace")
	// ErrInvalidElevation is returned for peaks with a non-positive elevation.
	ErrInvalidElevation = errors.New("elevation must be positive")
	// ErrAlreadyExists is returned by the registries on a duplicate name.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidSnapshot wraps every reason a snapshot is rejected by Restore.
	ErrInvalidSnapshot = errors.New("invalid snapshot")
)

// IsContractError reports whether err is a caller mistake (blank name or bad
// elevation) rather than a failure further down.
func IsContractError(err error) bool {
	return errors.Is(err, ErrBlankName) || errors.Is(err, ErrInvalidElevation)
}
