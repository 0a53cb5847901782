package sigs

import "github.com/iov-one/escrowd/errors"

// ErrInvalidSequence is returned when a signature does not use the next
// sequence number of the signer.
var ErrInvalidSequence = errors.Register(20, "invalid sequence number")
