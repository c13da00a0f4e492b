package enums

import "fmt"

// ReconcilePolicy selects how background cart responses are folded into local state.
type ReconcilePolicy string

const (
	// ReconcileSequence drops responses issued before the latest local mutation.
	ReconcileSequence ReconcilePolicy = "sequence"
	// ReconcileLastResponse applies whichever response resolves last.
	ReconcileLastResponse ReconcilePolicy = "last_response"
)

var validReconcilePolicys = []ReconcilePolicy{
	ReconcileSequence,
	ReconcileLastResponse,
}

// String implements fmt.Stringer.
func (r ReconcilePolicy) String() string {
	return string(r)
}

// IsValid reports whether the value is a known ReconcilePolicy.
func (r ReconcilePolicy) IsValid() bool {
	for _, candidate := range validReconcilePolicys {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseReconcilePolicy converts raw input into a ReconcilePolicy.
func ParseReconcilePolicy(value string) (ReconcilePolicy, error) {
	for _, candidate := range validReconcilePolicys {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid reconcile policy %q", value)
}
