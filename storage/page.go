package storage

// SortDirection is the order applied to the single sort field of a page query.
type SortDirection string

const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

// PageRequest captures every parameter of a paged listing. Each distinct
// combination is a logically distinct cached answer, so all four fields
// participate in cache-key derivation.
//
// Pagination is offset based; ties on the sort field are broken by
// storage-natural order, so callers that need deterministic paging must sort
// on a field without duplicates.
type PageRequest struct {
	Page      int
	Limit     int
	SortField string
	SortDir   SortDirection
}

// Normalize fills defaults (page 1, limit 10, created_at ascending) and
// clamps the direction to a valid value.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 10
	}
	if p.SortField == "" {
		p.SortField = "created_at"
	}
	if p.SortDir != SortDesc {
		p.SortDir = SortAsc
	}
	return p
}

// Offset converts the 1-based page number to a row offset.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}
