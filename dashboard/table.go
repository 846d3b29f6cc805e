package dashboard

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

type SortDir int

const (
	SortNone SortDir = iota
	SortAsc
	SortDesc
)

// Next cycles none -> asc -> desc -> none.
func (d SortDir) Next() SortDir {
	return (d + 1) % 3
}

func (d SortDir) String() string {
	switch d {
	case SortAsc:
		return "asc"
	case SortDesc:
		return "desc"
	default:
		return ""
	}
}

func parseSortDir(s string) SortDir {
	switch s {
	case "asc":
		return SortAsc
	case "desc":
		return SortDesc
	}
	return SortNone
}

var PageSizes = []int{5, 10, 20, 50}

const DefaultPageSize = 10

// State is everything a table view keeps between requests. It round-trips
// through the page URL.
type State struct {
	Search   string
	Filters  map[string]string
	SortBy   string
	SortDir  SortDir
	Page     int
	PageSize int
	// Selected is the id of the row whose detail dialog is open, 0 when closed.
	Selected int64
}

func NewState() State {
	return State{Filters: map[string]string{}, PageSize: DefaultPageSize}
}

func validPageSize(n int) bool {
	for _, s := range PageSizes {
		if s == n {
			return true
		}
	}
	return false
}

// StateFromQuery reads table state from URL parameters. filterNames lists
// the filter keys the view understands; unknown values fall back to defaults.
func StateFromQuery(q url.Values, filterNames ...string) State {
	s := NewState()
	s.Search = strings.TrimSpace(q.Get("q"))
	for _, name := range filterNames {
		if v := q.Get(name); v != "" && v != "all" {
			s.Filters[name] = v
		}
	}
	s.SortBy = q.Get("sort")
	s.SortDir = parseSortDir(q.Get("dir"))
	if s.SortBy == "" || s.SortDir == SortNone {
		s.SortBy, s.SortDir = "", SortNone
	}
	if n, err := strconv.Atoi(q.Get("size")); err == nil && validPageSize(n) {
		s.PageSize = n
	}
	if n, err := strconv.Atoi(q.Get("page")); err == nil && n > 0 {
		s.Page = n
	}
	if n, err := strconv.ParseInt(q.Get("selected"), 10, 64); err == nil && n > 0 {
		s.Selected = n
	}
	return s
}

func (s State) clone() State {
	filters := make(map[string]string, len(s.Filters))
	for k, v := range s.Filters {
		filters[k] = v
	}
	s.Filters = filters
	return s
}

// Query encodes s, leaving out default values.
func (s State) Query() url.Values {
	q := url.Values{}
	if s.Search != "" {
		q.Set("q", s.Search)
	}
	for k, v := range s.Filters {
		q.Set(k, v)
	}
	if s.SortBy != "" && s.SortDir != SortNone {
		q.Set("sort", s.SortBy)
		q.Set("dir", s.SortDir.String())
	}
	if s.PageSize != DefaultPageSize {
		q.Set("size", strconv.Itoa(s.PageSize))
	}
	if s.Page > 0 {
		q.Set("page", strconv.Itoa(s.Page))
	}
	if s.Selected > 0 {
		q.Set("selected", strconv.FormatInt(s.Selected, 10))
	}
	return q
}

func (s State) Filter(name string) string {
	if v, ok := s.Filters[name]; ok {
		return v
	}
	return "all"
}

func (s State) WithSearch(text string) State {
	s = s.clone()
	s.Search = strings.TrimSpace(text)
	s.Page = 0
	return s
}

// WithFilter sets one filter and returns to the first page.
func (s State) WithFilter(name, value string) State {
	s = s.clone()
	if value == "" || value == "all" {
		delete(s.Filters, name)
	} else {
		s.Filters[name] = value
	}
	s.Page = 0
	return s
}

// WithPageSize changes the page size and returns to the first page.
func (s State) WithPageSize(n int) State {
	s = s.clone()
	if validPageSize(n) {
		s.PageSize = n
	}
	s.Page = 0
	return s
}

func (s State) WithPage(p int) State {
	s = s.clone()
	if p < 0 {
		p = 0
	}
	s.Page = p
	return s
}

// ToggleSort advances the sort direction of column key, starting at asc when
// another column was sorted.
func (s State) ToggleSort(key string) State {
	s = s.clone()
	if s.SortBy != key {
		s.SortBy, s.SortDir = key, SortAsc
		return s
	}
	s.SortDir = s.SortDir.Next()
	if s.SortDir == SortNone {
		s.SortBy = ""
	}
	return s
}

// Reset clears search and filters and keeps the page size.
func (s State) Reset() State {
	return State{Filters: map[string]string{}, PageSize: s.PageSize}
}

func (s State) Select(id int64) State {
	s = s.clone()
	s.Selected = id
	return s
}

func (s State) ClearSelection() State {
	return s.Select(0)
}

type Column[T any] struct {
	Key   string
	Title string
	Value func(T) string
	// Less orders rows for sorting. When nil rows sort by Value.
	Less func(a, b T) bool
}

type Filter[T any] struct {
	Name    string
	Label   string
	Options []Option
	Match   func(row T, value string) bool
}

type Option struct {
	Value string
	Label string
}

// Table is an in-memory table model: search, categorical filters, a single
// sort column and pagination over rows already fetched.
type Table[T any] struct {
	Columns []Column[T]
	Filters []Filter[T]
	// Search returns the texts a search query is matched against.
	Search func(T) []string
	ID     func(T) int64
}

type Page[T any] struct {
	Rows      []T
	Total     int
	Page      int
	PageCount int
	State     State
}

func (p Page[T]) HasPrev() bool { return p.Page > 0 }
func (p Page[T]) HasNext() bool { return p.Page < p.PageCount-1 }

func (t *Table[T]) FilterNames() []string {
	names := make([]string, len(t.Filters))
	for i, f := range t.Filters {
		names[i] = f.Name
	}
	return names
}

func (t *Table[T]) column(key string) (Column[T], bool) {
	for _, c := range t.Columns {
		if c.Key == key {
			return c, true
		}
	}
	return Column[T]{}, false
}

// Rows returns rows matching the search text and every active filter, in
// sort order. Pagination is not applied.
func (t *Table[T]) Rows(rows []T, s State) []T {
	q := strings.ToLower(s.Search)
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		if q != "" && t.Search != nil && !containsAny(t.Search(row), q) {
			continue
		}
		if !t.matchFilters(row, s) {
			continue
		}
		out = append(out, row)
	}

	col, ok := t.column(s.SortBy)
	if !ok || s.SortDir == SortNone {
		return out
	}
	less := col.Less
	if less == nil {
		less = func(a, b T) bool {
			return strings.ToLower(col.Value(a)) < strings.ToLower(col.Value(b))
		}
	}
	if s.SortDir == SortDesc {
		asc := less
		less = func(a, b T) bool { return asc(b, a) }
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func (t *Table[T]) matchFilters(row T, s State) bool {
	for _, f := range t.Filters {
		v, ok := s.Filters[f.Name]
		if !ok || v == "all" {
			continue
		}
		if !f.Match(row, v) {
			return false
		}
	}
	return true
}

// Apply filters, sorts and paginates rows. The page index is clamped to the
// last page.
func (t *Table[T]) Apply(rows []T, s State) Page[T] {
	filtered := t.Rows(rows, s)
	size := s.PageSize
	if !validPageSize(size) {
		size = DefaultPageSize
	}
	pageCount := (len(filtered) + size - 1) / size
	if pageCount < 1 {
		pageCount = 1
	}
	page := s.Page
	if page >= pageCount {
		page = pageCount - 1
	}
	if page < 0 {
		page = 0
	}
	start := page * size
	end := start + size
	if end > len(filtered) {
		end = len(filtered)
	}
	s.Page, s.PageSize = page, size
	return Page[T]{
		Rows:      filtered[start:end],
		Total:     len(filtered),
		Page:      page,
		PageCount: pageCount,
		State:     s,
	}
}

// Find returns the row with id, if present.
func (t *Table[T]) Find(rows []T, id int64) (T, bool) {
	for _, row := range rows {
		if t.ID(row) == id {
			return row, true
		}
	}
	var zero T
	return zero, false
}

func containsAny(haystacks []string, q string) bool {
	for _, h := range haystacks {
		if strings.Contains(strings.ToLower(h), q) {
			return true
		}
	}
	return false
}
