package utils

import (
	"fmt"
	"strings"
)

// JoinWithAnd joins a slice of strings with AND operator
func JoinWithAnd(clauses []string) string {
	return strings.Join(clauses, " AND ")
}

// WhereClause renders clauses as a WHERE clause, "" when there are none
func WhereClause(clauses []string) string {
	if len(clauses) == 0 {
		return ""
	}
	return "WHERE " + JoinWithAnd(clauses)
}

// Placeholder returns the pgx positional parameter for index n (1-based)
func Placeholder(n int) string {
	return fmt.Sprintf("$%d", n)
}
