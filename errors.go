package layerkv

import (
	"errors"
	"fmt"
)

// Error kinds shared by every layer. Backends and transforms wrap these with
// context; callers match them with errors.Is.
var (
	// ErrNotFound is returned when an id is absent on lookup or removal.
	ErrNotFound = errors.New("layerkv: not found")

	// ErrKeyValidation is returned when a key or id does not satisfy a key transform.
	ErrKeyValidation = errors.New("layerkv: invalid key")

	// ErrSerialization is returned when an object cannot be encoded for storage.
	ErrSerialization = errors.New("layerkv: cannot encode value")

	// ErrDeserialization is returned when stored data cannot be decoded.
	ErrDeserialization = errors.New("layerkv: cannot decode value")

	// ErrUnsupported is returned by backends that deliberately disable an operation.
	ErrUnsupported = errors.New("layerkv: operation not supported")
)

// NotFound builds an ErrNotFound for the given id.
func NotFound(id any) error {
	return fmt.Errorf("%w: %v", ErrNotFound, id)
}

// InvalidKey builds an ErrKeyValidation for the given key or id.
func InvalidKey(key any, reason string) error {
	return fmt.Errorf("%w: %v: %s", ErrKeyValidation, key, reason)
}

// Unsupported builds an ErrUnsupported naming the disabled operation.
func Unsupported(op string) error {
	return fmt.Errorf("%w: %s", ErrUnsupported, op)
}
