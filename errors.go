package foreignfield

import "errors"

var (
	// ErrModulusTooLarge is returned when the foreign modulus (or the
	// accumulated operand bound in [Gadget.AssertMul]) exceeds the range the
	// limb parameters can soundly emulate.
	ErrModulusTooLarge = errors.New("foreignfield: modulus exceeds supported range")

	// ErrTermSignMismatch is returned when the number of chain terms does not
	// exceed the number of signs by exactly one.
	ErrTermSignMismatch = errors.New("foreignfield: mismatched term and sign counts")

	// ErrChainFinished is returned when appending to or finalizing an already
	// finalized chain.
	ErrChainFinished = errors.New("foreignfield: chain already finalized")

	// ErrChainUnfinished is returned when reading the result of a chain which
	// has not been finalized yet.
	ErrChainUnfinished = errors.New("foreignfield: chain not finalized")

	// ErrUnsatisfiable is returned when a constant-mode operation has no
	// solution, e.g. asserting a product which does not hold.
	ErrUnsatisfiable = errors.New("foreignfield: unsatisfiable constant operation")

	// ErrNoInverse is returned when inverting or dividing by a constant which
	// is not invertible modulo the foreign modulus. In the symbolic case the
	// gadget instead witnesses a filler value and the failure surfaces at
	// proving time.
	ErrNoInverse = errors.New("foreignfield: value not invertible")
)
