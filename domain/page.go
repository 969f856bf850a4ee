package domain

// Page is one fixed-size slice of an ordered post sequence.
type Page struct {
	Items      []Post `json:"items"`
	TotalCount int    `json:"total_count"`
	Number     int    `json:"page"`
	Count      int    `json:"page_count"`
}

// NewPage slices posts into pages of pageSize and returns the requested
// one. The contract is forgiving on purpose: a page number below 1
// falls back to the first page, a number past the end clamps to the
// last page. An empty sequence yields a single empty page.
func NewPage(posts []Post, pageSize, pageNumber int) Page {
	if pageSize < 1 {
		pageSize = 1
	}

	total := len(posts)
	count := (total + pageSize - 1) / pageSize
	if count < 1 {
		count = 1
	}

	if pageNumber < 1 {
		pageNumber = 1
	}
	if pageNumber > count {
		pageNumber = count
	}

	start := (pageNumber - 1) * pageSize
	end := start + pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return Page{
		Items:      posts[start:end],
		TotalCount: total,
		Number:     pageNumber,
		Count:      count,
	}
}
