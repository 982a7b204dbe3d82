package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// CandidateRow is one candidate as exported from the ATS, before IDs are resolved.
type CandidateRow struct {
	ExternalID   string
	Name         string
	Client       string
	PlanName     string
	StaffingRole string
	Role         string
	Owner        string
	Status       string
}

// ATS exports disagree on header spelling between releases and report views.
var candidateColumns = map[string][]string{
	"external_id":   {"candidate id", "candidate_id", "id", "external id", "external_id"},
	"name":          {"candidate name", "candidate_name", "name", "full name"},
	"client":        {"hire for", "hire_for", "client", "client name"},
	"plan":          {"staffing plan", "staffing_plan", "plan", "plan name"},
	"staffing_role": {"staffing role", "staffing_role", "plan role"},
	"role":          {"role", "job title", "position"},
	"owner":         {"staffing owner", "staffing_owner", "assigned to", "owner", "recruiter"},
	"status":        {"status", "candidate status", "stage"},
}

type headerIndex map[string]int

func newHeaderIndex(headers []string) headerIndex {
	idx := headerIndex{}
	for i, h := range headers {
		idx[strings.TrimSpace(strings.ToLower(h))] = i
	}
	return idx
}

func (idx headerIndex) getCol(row []string, field string) string {
	for _, n := range candidateColumns[field] {
		if i, ok := idx[n]; ok && i < len(row) {
			return strings.TrimSpace(row[i])
		}
	}
	return ""
}

func (idx headerIndex) has(field string) bool {
	for _, n := range candidateColumns[field] {
		if _, ok := idx[n]; ok {
			return true
		}
	}
	return false
}

func (idx headerIndex) row(cells []string) CandidateRow {
	return CandidateRow{
		ExternalID:   idx.getCol(cells, "external_id"),
		Name:         idx.getCol(cells, "name"),
		Client:       idx.getCol(cells, "client"),
		PlanName:     idx.getCol(cells, "plan"),
		StaffingRole: idx.getCol(cells, "staffing_role"),
		Role:         idx.getCol(cells, "role"),
		Owner:        idx.getCol(cells, "owner"),
		Status:       idx.getCol(cells, "status"),
	}
}

var ErrMissingColumns = errors.New("export is missing required columns")

func (idx headerIndex) validate() error {
	var missing []string
	for _, f := range []string{"external_id", "client", "role", "status"} {
		if !idx.has(f) {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}
	return nil
}

// ParseCandidateCSV reads a candidate export. Malformed rows are skipped and
// counted in the second return value.
func ParseCandidateCSV(r io.Reader) ([]CandidateRow, int, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("read CSV headers: %w", err)
	}
	idx := newHeaderIndex(headers)
	if err := idx.validate(); err != nil {
		return nil, 0, err
	}

	var rows []CandidateRow
	malformed := 0
	for {
		cells, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			malformed++
			continue
		}
		rows = append(rows, idx.row(cells))
	}
	return rows, malformed, nil
}

// ParseCandidateHTML reads the first <table> of an ATS report page. The
// header row is the first row holding <th> cells.
func ParseCandidateHTML(r io.Reader) ([]CandidateRow, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, errors.New("no table found in document")
	}

	var headers []string
	table.Find("tr").EachWithBreak(func(_ int, tr *goquery.Selection) bool {
		th := tr.Find("th")
		if th.Length() == 0 {
			return true
		}
		th.Each(func(_ int, c *goquery.Selection) {
			headers = append(headers, c.Text())
		})
		return false
	})
	idx := newHeaderIndex(headers)
	if err := idx.validate(); err != nil {
		return nil, err
	}

	var rows []CandidateRow
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		td := tr.Find("td")
		if td.Length() == 0 {
			return
		}
		cells := make([]string, 0, td.Length())
		td.Each(func(_ int, c *goquery.Selection) {
			cells = append(cells, c.Text())
		})
		rows = append(rows, idx.row(cells))
	})
	return rows, nil
}
