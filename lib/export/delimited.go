package export

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"kenosha-results/lib/results"
	"os"
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/gocarina/gocsv"
)

var ErrBadDelimiter = errors.New("invalid delimiter")

var ErrUnknownFormat = errors.New("unknown output format")

// Writer persists a finished table to a file.
type Writer interface {
	// Ext is the file extension used for generated filenames.
	Ext() string
	WriteFile(ctx context.Context, path string, table results.Table) error
}

// NewWriter picks the writer for an output format, "delimited" or "sqlite".
// delim overrides the layout's default separator when non-zero.
func NewWriter(format string, layout results.Layout, delim rune) (Writer, error) {
	switch format {
	case "", "delimited", "csv":
		d := Delimited{Layout: layout, Delimiter: delim}
		err := ValidateDelimiter(d.delimiter())
		if err != nil {
			return nil, err
		}
		return d, nil
	case "sqlite", "db":
		return Sqlite{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// Votes formats vote counts without a trailing ".0" for whole numbers.
type Votes float64

func (v Votes) MarshalCSV() (string, error) {
	return strconv.FormatFloat(float64(v), 'f', -1, 64), nil
}

type singleRow struct {
	WardName   string `csv:"Ward_Name"`
	WardNumber string `csv:"Ward_Number"`
	Contest    string `csv:"Contest"`
	Candidate  string `csv:"Candidate"`
	Votes      Votes  `csv:"Votes"`
}

type multiRow struct {
	Municipality string `csv:"Municipality"`
	WardName     string `csv:"Ward_Name"`
	WardNumber   string `csv:"Ward_Number"`
	Contest      string `csv:"Contest"`
	Party        string `csv:"Party"`
	Candidate    string `csv:"Candidate"`
	Votes        Votes  `csv:"Votes"`
}

// ValidateDelimiter checks that a separator can unambiguously split columns.
func ValidateDelimiter(delim rune) error {
	switch {
	case delim == 0,
		delim == '"',
		delim == '\r',
		delim == '\n',
		delim == utf8.RuneError,
		!unicode.IsPrint(delim) && delim != '\t',
		unicode.IsLetter(delim),
		unicode.IsDigit(delim):
		return fmt.Errorf("%w: %q", ErrBadDelimiter, delim)
	}
	return nil
}

// ParseDelimiter reads a single character separator from a flag or config value.
func ParseDelimiter(s string) (rune, error) {
	if s == `\t` {
		return '\t', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("%w: %q must be a single character", ErrBadDelimiter, s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, ValidateDelimiter(r)
}

// Delimited writes a table as delimited text, header first.
type Delimited struct {
	Layout results.Layout
	// Delimiter overrides the layout's separator when non-zero.
	Delimiter rune
}

func (d Delimited) delimiter() rune {
	if d.Delimiter != 0 {
		return d.Delimiter
	}
	return d.Layout.Delimiter()
}

func (d Delimited) Ext() string {
	if d.delimiter() == ',' {
		return "csv"
	}
	return "txt"
}

func (d Delimited) rows(table results.Table) any {
	if d.Layout == results.LayoutSingle {
		rows := make([]singleRow, len(table.Rows))
		for i, r := range table.Rows {
			rows[i] = singleRow{
				WardName:   r.WardName,
				WardNumber: r.WardNumber,
				Contest:    r.Contest,
				Candidate:  r.Candidate,
				Votes:      Votes(r.Votes),
			}
		}
		return rows
	}

	rows := make([]multiRow, len(table.Rows))
	for i, r := range table.Rows {
		rows[i] = multiRow{
			Municipality: r.Municipality,
			WardName:     r.WardName,
			WardNumber:   r.WardNumber,
			Contest:      r.Contest,
			Party:        r.Party,
			Candidate:    r.Candidate,
			Votes:        Votes(r.Votes),
		}
	}
	return rows
}

func (d Delimited) Encode(w io.Writer, table results.Table) error {
	delim := d.delimiter()
	err := ValidateDelimiter(delim)
	if err != nil {
		return err
	}
	if len(table.Rows) == 0 {
		return results.ErrNothingCollected
	}

	csvWriter := csv.NewWriter(w)
	csvWriter.Comma = delim
	return gocsv.MarshalCSV(d.rows(table), gocsv.NewSafeCSVWriter(csvWriter))
}

// WriteFile encodes the table into a new file at path. The file is only
// created once the table is known to be writable.
func (d Delimited) WriteFile(ctx context.Context, path string, table results.Table) error {
	err := ValidateDelimiter(d.delimiter())
	if err != nil {
		return err
	}
	if len(table.Rows) == 0 {
		return results.ErrNothingCollected
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}
	buffered := bufio.NewWriter(f)

	err = d.Encode(buffered, table)
	if err == nil {
		err = buffered.Flush()
	}
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
