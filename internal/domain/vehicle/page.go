// internal/domain/vehicle/page.go
package vehicle

// Page is the pagination envelope returned by listings.
type Page struct {
	Docs        []Doc `json:"docs"`
	TotalDocs   int64 `json:"total_docs"`
	Limit       int   `json:"limit"`
	Page        int   `json:"page"`
	TotalPages  int   `json:"total_pages"`
	HasPrevPage bool  `json:"has_prev_page"`
	HasNextPage bool  `json:"has_next_page"`
	PrevPage    *int  `json:"prev_page"`
	NextPage    *int  `json:"next_page"`
}

// NewPage builds the envelope from a raw count plus page/limit. An
// out-of-range page simply carries an empty docs list; very large limits are
// ordinary limits ("fetch everything" mode is page=1 with a huge limit).
func NewPage(docs []Doc, total int64, page, limit int) *Page {
	if docs == nil {
		docs = []Doc{}
	}

	totalPages := int(total) / limit
	if int(total)%limit > 0 {
		totalPages++
	}

	p := &Page{
		Docs:        docs,
		TotalDocs:   total,
		Limit:       limit,
		Page:        page,
		TotalPages:  totalPages,
		HasPrevPage: page > 1,
		HasNextPage: page < totalPages,
	}
	if p.HasPrevPage {
		prev := page - 1
		p.PrevPage = &prev
	}
	if p.HasNextPage {
		next := page + 1
		p.NextPage = &next
	}
	return p
}
