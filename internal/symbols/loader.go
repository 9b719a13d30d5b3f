// Package symbols reads the list of ticker symbols a run ranks.
package symbols

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Column is the header every symbol source must carry.
const Column = "Symbol"

var (
	ErrSourceNotFound = errors.New("symbol source not found")
	ErrMissingColumn  = errors.New("missing required column " + Column)
)

// Loader reads symbols from a file. The format is picked by extension:
// .html/.htm tables, .tsv tab-delimited, anything else comma-delimited.
type Loader struct {
	Path       string
	MaxSymbols int // 0 keeps every symbol
}

// NewLoader creates a Loader for path.
func NewLoader(path string, maxSymbols int) *Loader {
	return &Loader{Path: path, MaxSymbols: maxSymbols}
}

// Load returns the symbols in file order, truncated to MaxSymbols.
func (l *Loader) Load() ([]string, error) {
	f, err := os.Open(l.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, l.Path)
		}
		return nil, fmt.Errorf("open symbols: %w", err)
	}
	defer f.Close()

	var syms []string
	switch strings.ToLower(filepath.Ext(l.Path)) {
	case ".html", ".htm":
		syms, err = readHTML(f)
	case ".tsv":
		syms, err = readDelimited(f, '\t')
	default:
		syms, err = readDelimited(f, ',')
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", l.Path, err)
	}

	if l.MaxSymbols > 0 && len(syms) > l.MaxSymbols {
		syms = syms[:l.MaxSymbols]
	}
	return syms, nil
}

func readDelimited(r io.Reader, comma rune) ([]string, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrMissingColumn
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	col := columnIndex(header)
	if col < 0 {
		return nil, ErrMissingColumn
	}

	var syms []string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		if col >= len(rec) {
			continue
		}
		if s := strings.TrimSpace(rec[col]); s != "" {
			syms = append(syms, s)
		}
	}
	return syms, nil
}

// readHTML takes symbols from the first table whose header row has a Symbol cell.
func readHTML(r io.Reader) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var (
		syms  []string
		found bool
	)
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		rows := table.Find("tr")
		if rows.Length() == 0 {
			return true
		}
		var header []string
		rows.First().Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			header = append(header, cell.Text())
		})
		col := columnIndex(header)
		if col < 0 {
			return true
		}
		found = true
		rows.Slice(1, goquery.ToEnd).Each(func(_ int, row *goquery.Selection) {
			cells := row.Find("td, th")
			if col >= cells.Length() {
				return
			}
			if s := strings.TrimSpace(cells.Eq(col).Text()); s != "" {
				syms = append(syms, s)
			}
		})
		return false
	})
	if !found {
		return nil, ErrMissingColumn
	}
	return syms, nil
}

func columnIndex(header []string) int {
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if h == Column {
			return i
		}
	}
	return -1
}
