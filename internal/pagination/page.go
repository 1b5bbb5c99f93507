package pagination

import (
	"errors"
	"strconv"
)

// Page describes one page of a listing. Number is 1-based and always within
// [1, TotalPages]; an empty listing still has one (empty) page.
type Page struct {
	Number     int
	PerPage    int
	Total      int64
	TotalPages int
}

// New resolves the raw ?page= value: a missing or non-numeric value means the
// first page, a number outside the valid range means the last page.
func New(total int64, perPage int, raw string) Page {
	if perPage <= 0 {
		perPage = 10
	}
	totalPages := int((total + int64(perPage) - 1) / int64(perPage))
	if totalPages == 0 {
		totalPages = 1
	}

	number := 1
	if raw != "" {
		n, err := strconv.Atoi(raw)
		switch {
		case errors.Is(err, strconv.ErrRange):
			number = totalPages
		case err != nil:
		case n < 1 || n > totalPages:
			number = totalPages
		default:
			number = n
		}
	}

	return Page{
		Number:     number,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.PerPage
}

func (p Page) HasPrevious() bool { return p.Number > 1 }
func (p Page) HasNext() bool     { return p.Number < p.TotalPages }
func (p Page) HasOtherPages() bool {
	return p.HasPrevious() || p.HasNext()
}
func (p Page) PreviousNumber() int { return p.Number - 1 }
func (p Page) NextNumber() int     { return p.Number + 1 }

// Numbers lists every page number for the paginator widget.
func (p Page) Numbers() []int {
	nums := make([]int, p.TotalPages)
	for i := range nums {
		nums[i] = i + 1
	}
	return nums
}
