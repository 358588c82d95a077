/*
Package filter evaluates structured predicates against schemaless records.

A predicate list is a conjunction: a record is kept only if every predicate
holds. Evaluation is pure, so stopping at the first false predicate is not
observable. The indexOf operator only makes sense on strings and arrays; any
other field value aborts the whole evaluation with ErrInvalidPredicate rather
than silently dropping the record.
*/
package filter

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/alyssonw2/BD-AJ/models"
	"github.com/alyssonw2/BD-AJ/utils"
)

var ErrInvalidPredicate = errors.New("invalid predicate")

type Predicate struct {
	Field    string
	Operator Operator
	Expected any
}

func FromClauses(clauses []models.FilterClause) []Predicate {
	predicates := make([]Predicate, len(clauses))
	for i, clause := range clauses {
		field, op, expected := clause.Normalised()
		predicates[i] = Predicate{
			Field:    field,
			Operator: ParseOperator(op),
			Expected: expected,
		}
	}
	return predicates
}

// ---------------------------

func (p Predicate) Evaluate(record models.Record) (bool, error) {
	value, exists := record[p.Field]
	switch p.Operator {
	case OperatorIndexOf:
		if !exists {
			return false, fmt.Errorf("%w: field %s is missing for %s", ErrInvalidPredicate, p.Field, p.Operator)
		}
		return indexOf(p.Field, value, p.Expected)
	case OperatorEquals:
		// An absent field is not the same as a null one
		return exists && utils.EqualAny(value, p.Expected), nil
	case OperatorNotEquals:
		return !exists || !utils.EqualAny(value, p.Expected), nil
	}
	return false, nil
}

func indexOf(field string, value, expected any) (bool, error) {
	switch v := value.(type) {
	case string:
		needle, ok := textOf(expected)
		if !ok {
			return false, nil
		}
		return strings.Contains(v, needle), nil
	case []any:
		for _, elem := range v {
			if utils.EqualAny(elem, expected) {
				return true, nil
			}
		}
		return false, nil
	}
	return false, fmt.Errorf("%w: field %s of type %T does not support %s", ErrInvalidPredicate, field, value, OperatorIndexOf)
}

// textOf renders primitive values the way they would print inside a string,
// composite values have no sensible text form.
func textOf(v any) (string, bool) {
	if v == nil {
		return "null", true
	}
	if f, ok := utils.ToFloat(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64), true
	}
	switch tv := v.(type) {
	case string:
		return tv, true
	case bool:
		return strconv.FormatBool(tv), true
	}
	return "", false
}

// ---------------------------

// Match reports whether the record satisfies every predicate. An empty list
// matches everything.
func Match(record models.Record, predicates []Predicate) (bool, error) {
	for _, p := range predicates {
		ok, err := p.Evaluate(record)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// Apply returns the matching records in their original order. The result is
// never nil so it encodes as an empty array.
func Apply(records []models.Record, predicates []Predicate) ([]models.Record, error) {
	matched := make([]models.Record, 0, len(records))
	for i, record := range records {
		ok, err := Match(record, predicates)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if ok {
			matched = append(matched, record)
		}
	}
	return matched, nil
}
