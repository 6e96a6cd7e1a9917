package query

import (
	"fmt"
	"strings"

	"github.com/Skryldev/jobly/db"
)

// Where collects ANDed predicates for a filtered listing. Each method takes
// an optional criterion and adds nothing when it is absent, so callers can
// apply every filter field unconditionally in a fixed order.
type Where struct {
	dialect db.Dialect
	preds   []string
	args    []any
}

// NewWhere starts an empty clause for the given dialect.
func NewWhere(d db.Dialect) *Where {
	return &Where{dialect: d}
}

func (w *Where) bind(format, col string, arg any) {
	w.args = append(w.args, arg)
	w.preds = append(w.preds, fmt.Sprintf(format, col, len(w.args)))
}

// Contains adds a case-insensitive substring match on col.
func (w *Where) Contains(col string, s *string) *Where {
	if s != nil {
		w.bind("%s "+w.dialect.ContainsOperator()+" $%d", col, "%"+*s+"%")
	}
	return w
}

// AtLeast adds col >= n.
func (w *Where) AtLeast(col string, n *int64) *Where {
	if n != nil {
		w.bind("%s >= $%d", col, *n)
	}
	return w
}

// AtMost adds col <= n.
func (w *Where) AtMost(col string, n *int64) *Where {
	if n != nil {
		w.bind("%s <= $%d", col, *n)
	}
	return w
}

// Positive restricts to rows where col > 0, but only when flag is true.
// A false flag means "do not filter", not "col = 0".
func (w *Where) Positive(col string, flag *bool) *Where {
	if flag != nil && *flag {
		w.preds = append(w.preds, col+" > 0")
	}
	return w
}

// Len is the number of predicates collected so far.
func (w *Where) Len() int { return len(w.preds) }

// SQL renders " WHERE p1 AND p2 ..." or "" when nothing was added.
func (w *Where) SQL() string {
	if len(w.preds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.preds, " AND ")
}

// Args returns the bound values in placeholder order.
func (w *Where) Args() []any { return w.args }
