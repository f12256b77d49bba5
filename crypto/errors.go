package crypto

import (
	"errors"
	"fmt"
)

var (
	// ErrDecrypt indicates a blob could not be opened: wrong secret or corrupt data.
	ErrDecrypt = errors.New("decryption failed")

	// ErrMalformedEnvelope indicates a blob is not a valid envelope.
	// It always matches ErrDecrypt as well.
	ErrMalformedEnvelope = fmt.Errorf("%w: malformed envelope", ErrDecrypt)

	// ErrInvalidParams indicates key derivation parameters are out of range.
	ErrInvalidParams = errors.New("invalid key derivation parameters")
)
