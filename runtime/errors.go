package runtime

import "errors"

// Sentinel errors for the bytecode-error taxonomy of spec §7. The
// interpreter wraps these with class/method/PC context before
// surfacing them to the host.
var (
	ErrNullReference    = errors.New("null reference")
	ErrInvalidReference = errors.New("invalid object reference")
	ErrNotAnObject      = errors.New("reference is not an object")
	ErrNotAnArray       = errors.New("reference is not an array")
	ErrIndexOutOfBounds = errors.New("array index out of bounds")
	ErrDivideByZero     = errors.New("division by zero")
	ErrStackOverflow    = errors.New("stack overflow")
)
