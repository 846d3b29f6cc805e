package dashboard

import "net/url"

type headerView struct {
	Title string
	URL   string
	Arrow string
}

type rowView struct {
	ID    int64
	URL   string
	Cells []string
}

type optionView struct {
	Value    string
	Label    string
	Selected bool
}

type filterView struct {
	Name    string
	Label   string
	Options []optionView
}

type sizeView struct {
	Size    int
	URL     string
	Current bool
}

// listView is the template model of one table page.
type listView struct {
	Kind      string
	Title     string
	Path      string
	Search    string
	Headers   []headerView
	Rows      []rowView
	Filters   []filterView
	Sizes     []sizeView
	Sort      string
	Dir       string
	PageSize  int
	Page      int
	PageCount int
	Total     int
	PrevURL   string
	NextURL   string
	ExportURL string
	ResetURL  string
	// Return is the encoded state used by dialog forms to come back here.
	Return string

	LoadError   string
	ActionError string
	CloseURL    string
	Dialog      any
}

func link(path string, q url.Values) string {
	if enc := q.Encode(); enc != "" {
		return path + "?" + enc
	}
	return path
}

func buildList[T any](t *Table[T], kind, title, path string, rows []T, s State) listView {
	page := t.Apply(rows, s)
	st := page.State

	v := listView{
		Kind:      kind,
		Title:     title,
		Path:      path,
		Search:    st.Search,
		Sort:      st.SortBy,
		Dir:       st.SortDir.String(),
		PageSize:  st.PageSize,
		Page:      page.Page + 1,
		PageCount: page.PageCount,
		Total:     page.Total,
		ExportURL: link(path+"/export", st.ClearSelection().WithPage(0).Query()),
		ResetURL:  link(path, st.Reset().Query()),
		Return:    st.Query().Encode(),
		CloseURL:  link(path, st.ClearSelection().Query()),
	}

	for _, c := range t.Columns {
		h := headerView{Title: c.Title, URL: link(path, st.ToggleSort(c.Key).WithPage(0).ClearSelection().Query())}
		if st.SortBy == c.Key {
			switch st.SortDir {
			case SortAsc:
				h.Arrow = "▲"
			case SortDesc:
				h.Arrow = "▼"
			}
		}
		v.Headers = append(v.Headers, h)
	}

	for _, row := range page.Rows {
		id := t.ID(row)
		r := rowView{ID: id, URL: link(path, st.Select(id).Query())}
		for _, c := range t.Columns {
			r.Cells = append(r.Cells, c.Value(row))
		}
		v.Rows = append(v.Rows, r)
	}

	for _, f := range t.Filters {
		fv := filterView{Name: f.Name, Label: f.Label}
		current := st.Filter(f.Name)
		for _, o := range f.Options {
			fv.Options = append(fv.Options, optionView{Value: o.Value, Label: o.Label, Selected: o.Value == current})
		}
		v.Filters = append(v.Filters, fv)
	}

	for _, n := range PageSizes {
		v.Sizes = append(v.Sizes, sizeView{
			Size:    n,
			URL:     link(path, st.ClearSelection().WithPageSize(n).Query()),
			Current: n == st.PageSize,
		})
	}

	if page.HasPrev() {
		v.PrevURL = link(path, st.ClearSelection().WithPage(page.Page-1).Query())
	}
	if page.HasNext() {
		v.NextURL = link(path, st.ClearSelection().WithPage(page.Page+1).Query())
	}
	return v
}
