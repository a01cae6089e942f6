package components

import "fmt"

// DefaultPageSize caps how many rows a dashboard list page renders per page.
const DefaultPageSize = 50

// PageBounds returns the [start, end) slice bounds for page (1-indexed)
// over a totalItems-length list, plus the total page count.
func PageBounds(page, totalItems, pageSize int) (start, end, totalPages int) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}
	totalPages = (totalItems + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	if page > totalPages {
		page = totalPages
	}
	start = (page - 1) * pageSize
	end = start + pageSize
	if end > totalItems {
		end = totalItems
	}
	return start, end, totalPages
}

// Pagination renders Bootstrap prev/next + page-count controls.
func Pagination(baseURL string, page, totalItems, pageSize int) string {
	_, _, totalPages := PageBounds(page, totalItems, pageSize)
	if totalPages <= 1 {
		return ""
	}
	html := `<nav class="mt-3"><ul class="pagination justify-content-center">`
	if page > 1 {
		html += fmt.Sprintf(`<li class="page-item"><a class="page-link" href="%s?page=%d">&laquo;</a></li>`, baseURL, page-1)
	}
	html += fmt.Sprintf(`<li class="page-item disabled"><span class="page-link">Page %d of %d</span></li>`, page, totalPages)
	if page < totalPages {
		html += fmt.Sprintf(`<li class="page-item"><a class="page-link" href="%s?page=%d">&raquo;</a></li>`, baseURL, page+1)
	}
	html += `</ul></nav>`
	return html
}
