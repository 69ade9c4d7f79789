package persistence

import "strings"

// Column names accepted in ORDER BY. Anything else falls back to the
// caller's default, so user input never reaches the clause verbatim.
var (
	CommonSortFields = map[string]bool{
		"id":         true,
		"created_at": true,
		"updated_at": true,
	}

	ReceiptSortFields = withCommonSortFields(
		"receipt_number",
		"receipt_date",
		"amount",
		"unallocated_amount",
		"status",
		"allocation_status",
	)
)

func withCommonSortFields(columns ...string) map[string]bool {
	fields := make(map[string]bool, len(CommonSortFields)+len(columns))
	for c := range CommonSortFields {
		fields[c] = true
	}
	for _, c := range columns {
		fields[c] = true
	}
	return fields
}

// ValidateSortOrder returns ASC for any casing of "asc" and DESC otherwise
func ValidateSortOrder(orderDir string) string {
	if strings.EqualFold(strings.TrimSpace(orderDir), "asc") {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField returns sortField, trimmed, when allowed lists it and
// defaultField otherwise. Matching is case sensitive.
func ValidateSortField(sortField string, allowed map[string]bool, defaultField string) string {
	if f := strings.TrimSpace(sortField); allowed[f] {
		return f
	}
	return defaultField
}
