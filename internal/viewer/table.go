// Package viewer holds the presentation model of the metadata viewer: the
// attribute table with its search box and column picker, the loading
// configuration and the dismissible error notice. It is a pure consumer of
// attribute maps and performs no I/O besides rendering to a writer.
package viewer

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"

	strutil "dicomviewer/pkg/platform/strings"
)

// Row is one visible attribute.
type Row struct {
	Name  string
	Value string
}

// Column is one entry in the column picker.
type Column struct {
	Name    string
	Visible bool
}

// Table is the attribute table shown for the last successfully loaded
// document. A failed load only sets the notice; the previous table stays.
type Table struct {
	defaults []string
	data     map[string]string
	visible  map[string]bool
	search   string
	notice   string
	// maxValueWidth truncates rendered values; zero disables truncation.
	maxValueWidth int
}

// New creates a table whose initially visible columns are defaults.
func New(defaults []string) *Table {
	t := &Table{
		defaults: slices.Clone(defaults),
		visible:  make(map[string]bool, len(defaults)),
	}
	for _, name := range defaults {
		t.visible[name] = true
	}
	return t
}

// SetMaxValueWidth bounds rendered value width, typically to the terminal width.
func (t *Table) SetMaxValueWidth(n int) {
	t.maxValueWidth = max(n, 0)
}

// Load replaces the displayed attributes and clears any notice. Column
// visibility carries over between documents; when there are no default
// columns and nothing has been picked, every attribute is shown.
func (t *Table) Load(data map[string]string) {
	t.data = make(map[string]string, len(data))
	for k, v := range data {
		t.data[k] = v
	}
	t.notice = ""
	if len(t.defaults) == 0 && len(t.visible) == 0 {
		for k := range t.data {
			t.visible[k] = true
		}
	}
}

// Fail shows msg in the notice and leaves the table untouched.
func (t *Table) Fail(msg string) {
	t.notice = msg
}

// Notice returns the current notice, empty when none is shown.
func (t *Table) Notice() string {
	return t.notice
}

// DismissNotice hides the notice.
func (t *Table) DismissNotice() {
	t.notice = ""
}

// Loaded reports whether a document has been loaded.
func (t *Table) Loaded() bool {
	return t.data != nil
}

// SetSearch filters rows to those whose name or value contains term,
// ignoring case. An empty term shows every visible row.
func (t *Table) SetSearch(term string) {
	t.search = strings.TrimSpace(term)
}

// Search returns the active search term.
func (t *Table) Search() string {
	return t.search
}

// Toggle flips the visibility of a column and returns the new state.
func (t *Table) Toggle(name string) bool {
	if t.visible[name] {
		delete(t.visible, name)
		return false
	}
	t.visible[name] = true
	return true
}

// Show makes columns visible.
func (t *Table) Show(names ...string) {
	for _, n := range names {
		t.visible[n] = true
	}
}

// Hide hides columns.
func (t *Table) Hide(names ...string) {
	for _, n := range names {
		delete(t.visible, n)
	}
}

// ShowAll makes every loaded attribute visible.
func (t *Table) ShowAll() {
	for k := range t.data {
		t.visible[k] = true
	}
}

// ResetColumns restores the default column set.
func (t *Table) ResetColumns() {
	clear(t.visible)
	t.Show(t.defaults...)
}

// Columns lists every loaded attribute for the column picker, sorted by name.
func (t *Table) Columns() []Column {
	cols := make([]Column, 0, len(t.data))
	for _, k := range t.Keys() {
		cols = append(cols, Column{Name: k, Visible: t.visible[k]})
	}
	return cols
}

// Keys returns the loaded attribute names, sorted.
func (t *Table) Keys() []string {
	keys := make([]string, 0, len(t.data))
	for k := range t.data {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Rows returns the visible rows matching the search, sorted by name.
func (t *Table) Rows() []Row {
	var rows []Row
	for _, k := range t.Keys() {
		if !t.visible[k] {
			continue
		}
		v := t.data[k]
		if t.search != "" && !strutil.ContainsFold(k, t.search) && !strutil.ContainsFold(v, t.search) {
			continue
		}
		rows = append(rows, Row{Name: k, Value: v})
	}
	return rows
}

// Render writes the notice and the table as aligned text.
func (t *Table) Render(w io.Writer) error {
	if t.notice != "" {
		if _, err := fmt.Fprintf(w, "! %s  (dismiss to hide)\n", t.notice); err != nil {
			return err
		}
	}
	if len(t.data) == 0 {
		_, err := fmt.Fprintln(w, "No metadata to display.")
		return err
	}

	rows := t.Rows()
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No fields visible or matching search.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Tag Name\tValue")
	fmt.Fprintln(tw, "--------\t-----")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\n", r.Name, t.truncate(r.Value))
	}
	return tw.Flush()
}

func (t *Table) truncate(v string) string {
	if t.maxValueWidth <= 3 {
		return v
	}
	runes := []rune(v)
	if len(runes) <= t.maxValueWidth {
		return v
	}
	return string(runes[:t.maxValueWidth-3]) + "..."
}
