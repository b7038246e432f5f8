// Package page slices ordered collections into 1-indexed pages.
package page

import "slices"

// Page is one slice of a filtered and sorted collection.
// Total is zero unless the caller asked for it.
type Page[T any] struct {
	Items  []T
	Total  int
	Number int
	Size   int
}

// Paginate returns page number (1-indexed) of size items.
// Size 0 returns everything; a page past the end is empty.
func Paginate[T any](items []T, number, size int) []T {
	if size <= 0 {
		return slices.Clone(items)
	}
	if number < 1 {
		number = 1
	}
	if number > Count(len(items), size) {
		return []T{}
	}
	start := (number - 1) * size
	end := min(start+size, len(items))
	return slices.Clone(items[start:end])
}

// Count returns the number of pages for total items of size. Size 0 is one page.
func Count(total, size int) int {
	if size <= 0 {
		return 1
	}
	pages := total / size
	if total%size != 0 {
		pages++
	}
	return pages
}

// Map converts the items of p with fn, keeping the paging metadata.
func Map[T, U any](p Page[T], fn func(T) U) Page[U] {
	out := make([]U, len(p.Items))
	for i, it := range p.Items {
		out[i] = fn(it)
	}
	return Page[U]{Items: out, Total: p.Total, Number: p.Number, Size: p.Size}
}
