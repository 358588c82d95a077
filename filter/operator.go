package filter

import "github.com/alyssonw2/BD-AJ/models"

// Operator is the closed set of comparisons a predicate can perform. Anything
// a client sends that is not recognised becomes OperatorUnknown which never
// matches.
type Operator int

const (
	OperatorUnknown Operator = iota
	OperatorIndexOf
	OperatorEquals
	OperatorNotEquals
)

func ParseOperator(op string) Operator {
	switch op {
	case models.OperatorIndexOf:
		return OperatorIndexOf
	case models.OperatorEquals:
		return OperatorEquals
	case models.OperatorNotEquals:
		return OperatorNotEquals
	}
	return OperatorUnknown
}

func (o Operator) String() string {
	switch o {
	case OperatorIndexOf:
		return models.OperatorIndexOf
	case OperatorEquals:
		return models.OperatorEquals
	case OperatorNotEquals:
		return models.OperatorNotEquals
	}
	return "unknown"
}
