package service

const (
	defaultPerPage = 10
	maxPerPage     = 100
)

// normalizePage clamps page and perPage and returns the matching limit and offset.
func normalizePage(page, perPage int) (int, int, int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage, perPage, (page - 1) * perPage
}
