package ballot

import (
	"cmp"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/roach88/stv/internal/ir"
)

// CSVOptions describes the row layout of a ballot spreadsheet.
type CSVOptions struct {
	// Preamble is the number of rows before the candidate name row.
	Preamble int

	// SkipRows is the number of rows between the candidate name row and
	// the first voter row.
	SkipRows int

	// File names the source in error messages.
	File string
}

// Named CSV layouts.
const (
	// CSVLayoutPlain starts with the candidate row; ballots follow at once.
	CSVLayoutPlain = "plain"

	// CSVLayoutForm is a form export: a title row, the candidate row, one
	// instruction row, then the ballots.
	CSVLayoutForm = "form"
)

// CSVLayouts lists the named layouts.
var CSVLayouts = []string{CSVLayoutPlain, CSVLayoutForm}

// CSVLayout returns the row layout of a named preset. The empty string
// selects CSVLayoutPlain.
func CSVLayout(name string) (CSVOptions, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", CSVLayoutPlain:
		return CSVOptions{}, nil
	case CSVLayoutForm:
		return CSVOptions{Preamble: 1, SkipRows: 1}, nil
	default:
		return CSVOptions{}, fmt.Errorf("unknown csv layout %q (want %s)", name, strings.Join(CSVLayouts, " or "))
	}
}

// ReadCSV reads an election from a ballot spreadsheet.
//
// The candidate row's first cell labels the voter column and is ignored;
// the remaining cells name the candidates. Each voter row starts with a
// voter label followed by one preference code per candidate. Codes are
// integers, lower preferred; a blank cell leaves that candidate unranked.
// Two equal codes in one row make the ballot ambiguous.
func ReadCSV(r io.Reader, opts CSVOptions) (ir.Election, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	for range opts.Preamble {
		if _, err := reader.Read(); err != nil {
			return ir.Election{}, csvReadError(err, opts.File, "reading preamble")
		}
	}

	header, err := reader.Read()
	if err != nil {
		return ir.Election{}, csvReadError(err, opts.File, "reading candidate row")
	}
	headerLine, _ := reader.FieldPos(0)

	var election ir.Election
	names := header[1:]
	seen := make(map[ir.CandidateID]bool, len(names))
	for i, raw := range names {
		name := Normalize(raw)
		id := ir.CandidateID(name)
		if name == "" {
			return ir.Election{}, invalidf("empty candidate name in column %d", i+2).at(opts.File, headerLine, i+2)
		}
		if seen[id] {
			return ir.Election{}, invalidf("duplicate candidate %q", name).at(opts.File, headerLine, i+2)
		}
		seen[id] = true
		election.Candidates = append(election.Candidates, ir.Candidate{ID: id, Name: name})
	}
	if len(election.Candidates) == 0 {
		return ir.Election{}, invalidf("candidate row names no candidates").at(opts.File, headerLine, 1)
	}

	for range opts.SkipRows {
		if _, err := reader.Read(); err != nil {
			return ir.Election{}, csvReadError(err, opts.File, "skipping rows")
		}
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return ir.Election{}, csvReadError(err, opts.File, "reading ballot")
		}
		ballot, err := parseRow(reader, record, election.Candidates, opts.File)
		if err != nil {
			return ir.Election{}, err
		}
		election.Ballots = append(election.Ballots, ballot)
	}

	return election, nil
}

type preference struct {
	code      int
	candidate ir.CandidateID
	column    int
}

func parseRow(reader *csv.Reader, record []string, candidates []ir.Candidate, file string) (ir.Ballot, error) {
	cells := record[1:]
	if len(cells) > len(candidates) {
		for j := len(candidates); j < len(cells); j++ {
			if strings.TrimSpace(cells[j]) != "" {
				line, col := reader.FieldPos(j + 1)
				return nil, invalidf("row has %d preference cells for %d candidates", len(cells), len(candidates)).at(file, line, col)
			}
		}
		cells = cells[:len(candidates)]
	}

	var prefs []preference
	for j, cell := range cells {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			continue
		}
		code, err := strconv.Atoi(cell)
		if err != nil {
			line, col := reader.FieldPos(j + 1)
			return nil, invalidf("preference code %q for %s is not an integer", cell, candidates[j].ID).at(file, line, col)
		}
		prefs = append(prefs, preference{code: code, candidate: candidates[j].ID, column: j + 1})
	}

	slices.SortStableFunc(prefs, func(a, b preference) int { return cmp.Compare(a.code, b.code) })

	ballot := make(ir.Ballot, 0, len(prefs))
	for i, p := range prefs {
		if i > 0 && prefs[i-1].code == p.code {
			line, col := reader.FieldPos(p.column)
			return nil, ambiguousf("%s and %s share preference %d", prefs[i-1].candidate, p.candidate, p.code).at(file, line, col)
		}
		ballot = append(ballot, p.candidate)
	}
	return ballot, nil
}

func csvReadError(err error, file, context string) error {
	if errors.Is(err, io.EOF) {
		return invalidf("%s: unexpected end of file", context).at(file, 0, 0)
	}
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return invalidf("%s: %v", context, pe.Err).at(file, pe.Line, pe.Column)
	}
	return fmt.Errorf("%s: %w", context, err)
}
