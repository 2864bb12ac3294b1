/*
Package foreignfield implements modular big-integer arithmetic over a foreign
modulus inside a native-field circuit.

The values are represented as triples of limbs of a fixed width w, so that an
integer x below 2^(3w) is encoded as

	x = x0 + x1*2^w + x2*2^(2w).

On top of the triple representation the package provides chained addition and
subtraction, multiplication, division and inversion, all parameterized by an
explicit foreign modulus f given per call. The modulus is a circuit
compile-time constant and may be any positive integer below 2^((c+3w)/2),
where c is the native scalar field's capacity (one bit less than its length):
with the default 88-bit limbs this gives f < 2^258 over BN254 and f < 2^259
over 255-bit fields. The exact admission condition is
(f + 2^2w)^2 <= 2^3w * native, checked per call.

Freshly produced results are not range-checked; the high-level operations
perform the required checks before returning and the low-level entry points
document which checks they leave to the caller. Multiplication trusts that its
operands have been range-checked and weakly bounded; use
[Gadget.AssertAlmostFieldElements] to establish the bound for witness inputs.

Operations inspect whether all operands are constants and then compute the
result directly without emitting any constraints. In the symbolic case the
witness values are computed by hints (see [GetHints]) and the constraints are
appended in call order.
*/
package foreignfield
