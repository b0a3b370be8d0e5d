// Package feed implements the client-side list shaping: title search,
// newest-first ordering and pagination over the full fetched set.
package feed

import (
	"sort"
	"strings"

	"newsweb/model"
)

// PageSizes are the selectable page sizes. DefaultPageSize applies when the
// requested size is absent or not one of these.
var PageSizes = []int{5, 10, 20}

const DefaultPageSize = 5

// ValidPageSize reports whether size is one of the selectable page sizes.
func ValidPageSize(size int) bool {
	for _, s := range PageSizes {
		if s == size {
			return true
		}
	}
	return false
}

// Filter returns the items whose title contains query, case-insensitively.
// A blank query matches everything.
func Filter(items []model.NewsItem, query string) []model.NewsItem {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return items
	}
	var out []model.NewsItem
	for _, it := range items {
		if strings.Contains(strings.ToLower(it.Title), q) {
			out = append(out, it)
		}
	}
	return out
}

// SortNewest orders items by descending id, newest first. The input is not
// modified.
func SortNewest(items []model.NewsItem) []model.NewsItem {
	out := make([]model.NewsItem, len(items))
	copy(out, items)
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

// SortComments orders comments by ascending id. The input is not modified.
func SortComments(comments []model.Comment) []model.Comment {
	out := make([]model.Comment, len(comments))
	copy(out, comments)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Page is one window over a filtered, sorted item set.
type Page struct {
	Items  []model.NewsItem
	Number int // current page, clamped into [1, Count]
	Count  int // total pages, at least 1
	Total  int // items across all pages
	Start  int // 1-based index of the first shown item, 0 when empty
	End    int // 1-based index of the last shown item
}

// Paginate slices items into the requested page. The page number is clamped
// into [1, Count]; a size outside the selectable set falls back to the
// default.
func Paginate(items []model.NewsItem, page, size int) Page {
	if !ValidPageSize(size) {
		size = DefaultPageSize
	}

	count := (len(items) + size - 1) / size
	if count < 1 {
		count = 1
	}
	if page < 1 {
		page = 1
	}
	if page > count {
		page = count
	}

	start := (page - 1) * size
	end := start + size
	if end > len(items) {
		end = len(items)
	}

	p := Page{
		Items:  items[start:end],
		Number: page,
		Count:  count,
		Total:  len(items),
	}
	if len(p.Items) > 0 {
		p.Start = start + 1
		p.End = end
	}
	return p
}
