package sqlite

import (
	"fmt"
	"strings"
	"time"
)

// parseTime decodes an RFC3339 timestamp column, naming the column in
// the error so scan failures point at the bad row.
func parseTime(column, value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s timestamp: %w", column, err)
	}
	return t, nil
}

// appendLimitOffset adds LIMIT/OFFSET clauses for positive filter values.
func appendLimitOffset(query *strings.Builder, args *[]any, limit, offset int) {
	if limit > 0 {
		query.WriteString(" LIMIT ?")
		*args = append(*args, limit)
	}
	if offset > 0 {
		query.WriteString(" OFFSET ?")
		*args = append(*args, offset)
	}
}
