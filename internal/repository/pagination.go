package repository

import (
	"fmt"
	"math"
)

type Direction string

const (
	Asc  Direction = "Asc"
	Desc Direction = "Desc"
)

// DefaultPerPage is used when a request does not ask for a page size.
const DefaultPerPage = 10

// Pagination selects one page of a list. Page is 1-based.
type Pagination struct {
	Page      int
	PerPage   int
	OrderBy   string
	Direction Direction
}

// ParseDirection maps the order_direction query value. Anything other than
// Desc (case-insensitive) sorts ascending.
func ParseDirection(s string) Direction {
	switch s {
	case "Desc", "desc", "DESC":
		return Desc
	}
	return Asc
}

func (p Pagination) Limit() int {
	return max(p.PerPage, 1)
}

// Offset saturates at the last page boundary representable as an int, so a
// huge page number yields an empty page instead of a negative offset.
func (p Pagination) Offset() int {
	skip, limit := max(p.Page-1, 0), p.Limit()
	if skip > math.MaxInt/limit {
		return math.MaxInt / limit * limit
	}
	return skip * limit
}

// orderColumns lists the order_by values that are honoured. Everything else
// is ignored and the default applies.
var orderColumns = map[string]string{
	"created_at": "created_at",
}

// OrderClause returns the ORDER BY expression for table alias (which may be
// empty). Ties on the sort column are broken by id ascending.
func (p Pagination) OrderClause(alias string) string {
	prefix := ""
	if alias != "" {
		prefix = alias + "."
	}
	col, ok := orderColumns[p.OrderBy]
	if !ok {
		col = "created_at"
	}
	dir := "ASC"
	if p.Direction == Desc {
		dir = "DESC"
	}
	return fmt.Sprintf("%s%s %s, %sid ASC", prefix, col, dir, prefix)
}
