package db

import (
	"fmt"
	"strings"
)

// Conditions accumulates AND-ed predicates with positional arguments.
type Conditions struct {
	clauses []string
	args    []any
}

// Add appends a predicate. The first "?" in predicate becomes the next placeholder.
func (c *Conditions) Add(predicate string, arg any) {
	c.args = append(c.args, arg)
	c.clauses = append(c.clauses, strings.Replace(predicate, "?", fmt.Sprintf("$%d", len(c.args)), 1))
}

// Contains adds a case-insensitive substring match when value is not blank.
func (c *Conditions) Contains(column, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	c.Add(column+" ILIKE ?", "%"+value+"%")
}

// Where renders the WHERE clause, or nothing when no predicate was added.
func (c *Conditions) Where() string {
	if len(c.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.clauses, " AND ")
}

// Args returns the collected arguments.
func (c *Conditions) Args() []any {
	return c.args
}

// Page renders LIMIT/OFFSET after the collected arguments and returns the full argument list.
func (c *Conditions) Page(limit, offset int) (string, []any) {
	n := len(c.args)
	args := append(append([]any{}, c.args...), limit, offset)
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", n+1, n+2), args
}
