package correlation

// Value is a correlation result that is either a defined coefficient in
// [-1, 1] or undefined. A window over a constant series has no defined
// correlation (zero variance), and windows containing non-finite returns
// are undefined as well. Callers must check Valid instead of relying on a
// NaN sentinel.
type Value struct {
	Float64 float64
	Valid   bool
}

// Defined wraps a coefficient as a defined Value.
func Defined(f float64) Value {
	return Value{Float64: f, Valid: true}
}

// Undefined is the zero Value.
var Undefined = Value{}
