package repository

// pageWindow normalizes page/limit query values into an offset and a
// capped limit. Limits are capped at 100 per page.
func pageWindow(page, limit, defaultLimit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > 100 {
		limit = 100
	}
	return (page - 1) * limit, limit
}
