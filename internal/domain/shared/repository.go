package shared

// Filter carries the paging and ordering shared by list queries. OrderBy is
// checked against a per-table allowlist before it reaches SQL.
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
}

// Offset is the number of rows before Page; pages are 1-based
func (f Filter) Offset() int {
	if f.Page <= 1 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}
