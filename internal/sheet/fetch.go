package sheet

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"itemfinder/internal"
	"itemfinder/internal/config"
)

var docIDPattern = regexp.MustCompile(`/d/([a-zA-Z0-9-_]+)`)

// ExportURL derives a machine-readable export address from a human-shared
// spreadsheet link. Published-to-web links pass through unchanged and are
// read as HTML; share links with a /d/<id>/ segment become CSV export URLs;
// anything else is accepted only if it already looks like a CSV export.
func ExportURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", internal.ErrInvalidSourceURL
	}

	if strings.Contains(raw, "pubhtml") {
		return raw, nil
	}
	if m := docIDPattern.FindStringSubmatch(raw); m != nil {
		return fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/export?format=csv", m[1]), nil
	}
	if strings.HasSuffix(raw, ".csv") || strings.Contains(raw, "output=csv") || strings.Contains(raw, "format=csv") {
		return raw, nil
	}
	return "", internal.ErrInvalidSourceURL
}

type Fetcher struct {
	httpClient *http.Client
}

func NewFetcher(cfg config.Config) *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{Timeout: time.Duration(cfg.FetchTimeoutMs) * time.Millisecond},
	}
}

// FetchItems retrieves the spreadsheet behind the given share link and
// returns the validated item set. URL normalization failures surface before
// any network call; retrieval failures come back as *internal.FetchError.
func (f *Fetcher) FetchItems(ctx context.Context, rawURL string) ([]internal.InventoryItem, error) {
	exportURL, err := ExportURL(rawURL)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, exportURL, nil)
	if err != nil {
		return nil, internal.ErrInvalidSourceURL
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, &internal.FetchError{URL: exportURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &internal.FetchError{URL: exportURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &internal.FetchError{URL: exportURL, Err: err}
	}

	if strings.Contains(exportURL, "pubhtml") {
		return ItemsFromRows(parseHTMLTable(string(body))), nil
	}
	return ItemsFromCSV(string(body)), nil
}

// ItemsFromCSV turns raw comma-separated text into items. Fewer than two
// non-blank lines (header plus at least one data row) yields an empty set,
// not an error. Malformed rows are dropped silently.
func ItemsFromCSV(text string) []internal.InventoryItem {
	lines := SplitLines(text)
	if len(lines) < 2 {
		return []internal.InventoryItem{}
	}

	rows := make([][]string, 0, len(lines))
	for _, line := range lines {
		rows = append(rows, ParseLine(line))
	}
	return ItemsFromRows(rows)
}

// ItemsFromRows runs header resolution on the first row and extraction on
// the rest. Shared by the CSV and published-HTML ingestion paths.
func ItemsFromRows(rows [][]string) []internal.InventoryItem {
	if len(rows) < 2 {
		return []internal.InventoryItem{}
	}

	headers := rows[0]
	columns := ResolveColumns(headers)

	items := make([]internal.InventoryItem, 0, len(rows)-1)
	for _, row := range rows[1:] {
		item, ok := ExtractItem(row, columns, len(headers))
		if !ok {
			continue
		}
		items = append(items, item)
	}
	return items
}

// parseHTMLTable extracts cell text from the first table of a published
// spreadsheet page. Published sheets prepend a row-number column, which is
// skipped when present.
func parseHTMLTable(html string) [][]string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	rows := [][]string{}
	doc.Find("table").First().Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := []string{}
		row.Find("th,td").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, strings.TrimSpace(cell.Text()))
		})
		if len(cells) == 0 {
			return
		}
		if row.Find("th.row-headers-background").Length() > 0 && len(cells) > 1 {
			cells = cells[1:]
		}
		rows = append(rows, cells)
	})

	// Published pages emit an empty header strip above the data.
	for len(rows) > 0 && allEmpty(rows[0]) {
		rows = rows[1:]
	}
	return rows
}

func allEmpty(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}
