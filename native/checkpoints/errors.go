package checkpoints

import "errors"

var (
	ErrNilTrace           = errors.New("checkpoints: nil trace")
	ErrUnorderedInsertion = errors.New("checkpoints: unordered insertion")
	ErrIndexOutOfBounds   = errors.New("checkpoints: index out of bounds")
	ErrFutureLookup       = errors.New("checkpoints: lookup in the future")
)
