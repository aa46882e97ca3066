package domain

// Pagination selects one page of a listing. Page is 1-based.
type Pagination struct {
	Page     int
	PageSize int
}

func (p Pagination) Limit() int {
	return p.PageSize
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

type Metadata struct {
	CurrentPage  int
	FirstPage    int
	LastPage     int
	PageSize     int
	TotalRecords int
}

// NewMetadata describes the page a listing returned. LastPage is 0 when there
// are no records.
func NewMetadata(totalRecords int, pagination Pagination) *Metadata {
	lastPage := 0
	if pagination.PageSize > 0 {
		lastPage = (totalRecords + pagination.PageSize - 1) / pagination.PageSize
	}

	return &Metadata{
		CurrentPage:  pagination.Page,
		FirstPage:    1,
		LastPage:     lastPage,
		PageSize:     pagination.PageSize,
		TotalRecords: totalRecords,
	}
}
