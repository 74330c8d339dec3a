package blog

// DefaultPerPage is used when a caller asks for a non positive window
const DefaultPerPage = 5

// MaxPerPage bounds how much a single request can pull
const MaxPerPage = 50

// Page is one window of an ordered listing plus the metadata templates
// need to render pagination controls.
type Page[T any] struct {
	Items   []T `json:"items"`
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
	Total   int `json:"total"`
	Pages   int `json:"pages"`
}

// NewPage wraps a result window with its derived page math
func NewPage[T any](items []T, page, perPage, total int) *Page[T] {
	pages := 0
	if perPage > 0 {
		pages = (total + perPage - 1) / perPage
	}

	return &Page[T]{
		Items:   items,
		Page:    page,
		PerPage: perPage,
		Total:   total,
		Pages:   pages,
	}
}

// HasPrev reports whether an earlier window exists
func (p *Page[T]) HasPrev() bool {
	return p.Page > 1
}

// HasNext reports whether a later window exists
func (p *Page[T]) HasNext() bool {
	return p.Page < p.Pages
}

// PrevPage returns the previous page number, clamped at 1
func (p *Page[T]) PrevPage() int {
	if p.Page <= 1 {
		return 1
	}
	return p.Page - 1
}

// NextPage returns the next page number, clamped at the last page
func (p *Page[T]) NextPage() int {
	if p.Page >= p.Pages {
		return p.Pages
	}
	return p.Page + 1
}

// NormalizePageWindow clamps page and perPage into their accepted ranges
func NormalizePageWindow(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return page, perPage
}
