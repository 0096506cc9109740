package service

const defaultPerPage = 10

type Pagination struct {
	CurrentPage int   `json:"current_page"`
	LastPage    int   `json:"last_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
	HasMore     bool  `json:"has_more"`
}

type pageRequest struct {
	page    int
	perPage int
}

func normalizePage(page, perPage int) pageRequest {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	return pageRequest{page: page, perPage: perPage}
}

func (p pageRequest) offset() int64 {
	return int64(p.page-1) * int64(p.perPage)
}

func (p pageRequest) paginate(total int64) Pagination {
	lastPage := int((total + int64(p.perPage) - 1) / int64(p.perPage))
	return Pagination{
		CurrentPage: p.page,
		LastPage:    lastPage,
		PerPage:     p.perPage,
		Total:       total,
		HasMore:     p.page < lastPage,
	}
}
