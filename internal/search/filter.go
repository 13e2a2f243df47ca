package search

import (
	"fmt"
	"strings"
)

type FilterParams struct {
	Query       string
	Type        string
	Status      string
	City        string
	MinRent     *float64
	MaxRent     *float64
	MinBedrooms *int
	SortBy      string
	Limit       int64
	Offset      int64
}

// BuildFilter renders params as a Meilisearch filter expression. The owner
// clause is always present.
func BuildFilter(userID uint, params FilterParams) string {
	filters := []string{fmt.Sprintf("user_id = %d", userID)}

	if params.Type != "" {
		filters = append(filters, fmt.Sprintf("type = %s", quote(params.Type)))
	}
	if params.Status != "" {
		filters = append(filters, fmt.Sprintf("status = %s", quote(params.Status)))
	}
	if params.City != "" {
		filters = append(filters, fmt.Sprintf("city = %s", quote(params.City)))
	}

	// Rent range filter
	if params.MinRent != nil {
		filters = append(filters, fmt.Sprintf("rent >= %g", *params.MinRent))
	}
	if params.MaxRent != nil {
		filters = append(filters, fmt.Sprintf("rent <= %g", *params.MaxRent))
	}

	if params.MinBedrooms != nil {
		filters = append(filters, fmt.Sprintf("bedrooms >= %d", *params.MinBedrooms))
	}

	return strings.Join(filters, " AND ")
}

// quote wraps a value in double quotes, escaping embedded quotes and backslashes
func quote(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `"`, `\"`)
	return `"` + v + `"`
}
