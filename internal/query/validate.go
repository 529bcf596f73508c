package query

import (
	"errors"
	"strings"
)

// ErrUnsafeQuery is returned when a generated statement is not a plain
// SELECT or mentions a mutating keyword.
var ErrUnsafeQuery = errors.New("query rejected: only SELECT statements are allowed")

var dangerousKeywords = []string{
	"DROP", "DELETE", "UPDATE", "INSERT", "ALTER", "CREATE", "TRUNCATE",
}

// ValidateSQL checks that the statement is a read-only SELECT. Generated SQL
// runs directly against the database, so anything else is refused outright.
func ValidateSQL(sqlQuery string) error {
	trimmed := strings.TrimSpace(sqlQuery)
	if trimmed == "" {
		return ErrUnsafeQuery
	}
	upper := strings.ToUpper(trimmed)
	if !strings.HasPrefix(upper, "SELECT") {
		return ErrUnsafeQuery
	}
	for _, kw := range dangerousKeywords {
		if strings.Contains(upper, kw) {
			return ErrUnsafeQuery
		}
	}
	return nil
}
