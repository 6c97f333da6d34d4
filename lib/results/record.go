package results

import (
	"fmt"
	"strings"
)

// VoteRecord is a single candidate's tally in one contest of one ward, exactly
// as it was extracted. VoteText is the cleaned (but unparsed) vote count.
type VoteRecord struct {
	Municipality string
	// WardId is the site assigned id of the reporting unit the record was
	// read from, it tells apart units whose pages share a ward name.
	WardId       int
	WardName     string
	WardNumber   string
	Contest      string
	Party        string
	Candidate    string
	VoteText     string
}

// Key identifies the record within a result table.
type Key struct {
	Municipality string
	WardId       int
	WardName     string
	Contest      string
	Candidate    string
}

func (r VoteRecord) Key() Key {
	candidate := r.Candidate
	if r.Party != "" {
		candidate = r.Party + " " + r.Candidate
	}
	return Key{
		Municipality: r.Municipality,
		WardId:       r.WardId,
		WardName:     r.WardName,
		Contest:      r.Contest,
		Candidate:    candidate,
	}
}

func (k Key) String() string {
	ward := k.WardName
	if k.WardId != 0 {
		ward = fmt.Sprintf("%s (jid %d)", k.WardName, k.WardId)
	}
	parts := []string{ward, k.Contest, k.Candidate}
	if k.Municipality != "" {
		parts = append([]string{k.Municipality}, parts...)
	}
	return strings.Join(parts, " / ")
}

// Row is a VoteRecord whose vote count has been converted to a number.
type Row struct {
	VoteRecord
	Votes float64
}

// Layout is the shape of the output table.
type Layout int

const (
	// LayoutSingle is the single municipality layout, comma separated without
	// municipality or party columns.
	LayoutSingle Layout = iota
	// LayoutMulti is the county wide layout, pipe separated with municipality
	// and party columns.
	LayoutMulti
)

func ParseLayout(s string) (Layout, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "single":
		return LayoutSingle, nil
	case "multi", "":
		return LayoutMulti, nil
	}
	return 0, fmt.Errorf("unknown layout %q, expected \"single\" or \"multi\"", s)
}

func (l Layout) String() string {
	if l == LayoutSingle {
		return "single"
	}
	return "multi"
}

// TracksParty is true if candidate labels should be split into party and name.
func (l Layout) TracksParty() bool {
	return l == LayoutMulti
}

// Delimiter is the default field separator of the layout.
func (l Layout) Delimiter() rune {
	if l == LayoutSingle {
		return ','
	}
	return '|'
}
