package invoice

import "fmt"

// LookupError reports a cross-reference the assembler could not resolve:
// a fulfillment line without a matching order line, a missing item or logo
// file, or an order without lines.
type LookupError struct {
	Ref string
	Key string
	Err error
}

func (e *LookupError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("lookup %s %s: %v", e.Ref, e.Key, e.Err)
	}
	return fmt.Sprintf("lookup %s %s: no match", e.Ref, e.Key)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// ComputationError reports a derived amount that has no finite value, such as
// a per-unit tax on an order line with zero quantity.
type ComputationError struct {
	Field string
	Line  int
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("compute %s for order line %d: division by zero quantity", e.Field, e.Line)
}
