// Package query builds the dynamic fragments of Jobly's SQL: the SET list of
// a partial update and the WHERE clause of a filtered listing. Only column
// names from code-controlled tables are ever interpolated; every value
// travels as a positional parameter.
package query

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Skryldev/jobly/apperr"
)

// Change is one field of a partial update.
type Change struct {
	Field string
	Value any
}

// Changes is a sparse, ordered update: only the fields present are written,
// in the order they were supplied.
type Changes []Change

// Fields returns the field names in order.
func (c Changes) Fields() []string {
	fields := make([]string, len(c))
	for i, ch := range c {
		fields[i] = ch.Field
	}
	return fields
}

// Lookup returns the value supplied for field.
func (c Changes) Lookup(field string) (any, bool) {
	for _, ch := range c {
		if ch.Field == field {
			return ch.Value, true
		}
	}
	return nil, false
}

// With returns a copy of c where field carries value. The field keeps its
// position; an absent field is appended.
func (c Changes) With(field string, value any) Changes {
	out := slices.Clone(c)
	for i := range out {
		if out[i].Field == field {
			out[i].Value = value
			return out
		}
	}
	return append(out, Change{Field: field, Value: value})
}

// Restrict fails with InvalidInput when c names a field outside allowed.
// Repositories call it so that no caller-chosen name can reach an
// identifier position.
func (c Changes) Restrict(allowed ...string) error {
	for _, ch := range c {
		if !slices.Contains(allowed, ch.Field) {
			return apperr.InvalidInput(fmt.Sprintf("Field %q cannot be updated", ch.Field))
		}
	}
	return nil
}

// Columns translates logical (camelCase) field names into column names.
// Fields missing from the table are used as-is.
type Columns map[string]string

func (m Columns) column(field string) string {
	if col, ok := m[field]; ok {
		return col
	}
	return field
}

// Assignments is the output of SetClause: parallel slices of `"col"=$i`
// fragments and their bound values.
type Assignments struct {
	Set    []string
	Values []any
}

// SQL joins the assignments for use after SET.
func (a Assignments) SQL() string { return strings.Join(a.Set, ", ") }

// Next is the first placeholder after the assignments, used for the key in
// the WHERE clause.
func (a Assignments) Next() string { return fmt.Sprintf("$%d", len(a.Values)+1) }

// SetClause turns a partial update into a SET list:
//
//	{firstName: "Aliya", age: 32} => `"first_name"=$1, "age"=$2`, ["Aliya", 32]
//
// Empty input is an InvalidInput error; an UPDATE with no columns is never
// produced.
func SetClause(changes Changes, cols Columns) (Assignments, error) {
	if len(changes) == 0 {
		return Assignments{}, apperr.InvalidInput("No data")
	}
	a := Assignments{
		Set:    make([]string, len(changes)),
		Values: make([]any, len(changes)),
	}
	for i, ch := range changes {
		a.Set[i] = fmt.Sprintf(`"%s"=$%d`, cols.column(ch.Field), i+1)
		a.Values[i] = ch.Value
	}
	return a, nil
}
