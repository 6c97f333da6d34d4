package kenosha

import (
	"fmt"
	"kenosha-results/lib/results"
	"slices"
)

// ReportingUnit is a single ward of a municipality. WardName is only known
// once the unit's page has been parsed.
type ReportingUnit struct {
	Municipality string
	WardId       int
	WardName     string
}

// CandidateCell is one (contest, candidate label, raw vote text) tuple read
// off a reporting unit page.
type CandidateCell struct {
	Contest  string
	Label    string
	VoteText string
}

// PlanEntry is a municipality and its ward ids, in listing order.
type PlanEntry struct {
	Municipality string
	Wards        []int
}

// Plan is the ordered mapping of municipality name -> ward ids produced by
// discovery. It is not modified after construction.
type Plan struct {
	entries []PlanEntry
}

func NewPlan(entries []PlanEntry) Plan {
	copied := make([]PlanEntry, len(entries))
	for i, e := range entries {
		copied[i] = PlanEntry{
			Municipality: e.Municipality,
			Wards:        slices.Clone(e.Wards),
		}
	}
	return Plan{entries: copied}
}

func (p Plan) Municipalities() []string {
	names := make([]string, len(p.entries))
	for i, e := range p.entries {
		names[i] = e.Municipality
	}
	return names
}

// Wards returns the ward ids of a municipality, nil if it is not part of the plan.
func (p Plan) Wards(municipality string) []int {
	for _, e := range p.entries {
		if e.Municipality == municipality {
			return slices.Clone(e.Wards)
		}
	}
	return nil
}

// Units flattens the plan into reporting units, municipality order first
// and ward order second.
func (p Plan) Units() []ReportingUnit {
	var units []ReportingUnit
	for _, e := range p.entries {
		for _, ward := range e.Wards {
			units = append(units, ReportingUnit{
				Municipality: e.Municipality,
				WardId:       ward,
			})
		}
	}
	return units
}

func (p Plan) UnitCount() int {
	n := 0
	for _, e := range p.entries {
		n += len(e.Wards)
	}
	return n
}

type UnitStatus int

const (
	// StatusRecords means the unit page produced at least one record.
	StatusRecords UnitStatus = iota
	// StatusEmpty means the unit page was fetched but had nothing to report.
	StatusEmpty
	// StatusFetchError means the unit page could not be fetched.
	StatusFetchError
)

func (s UnitStatus) String() string {
	switch s {
	case StatusRecords:
		return "records"
	case StatusEmpty:
		return "empty"
	case StatusFetchError:
		return "fetch-error"
	}
	return fmt.Sprintf("UnitStatus(%d)", int(s))
}

// UnitOutcome is the result of scraping a single reporting unit.
type UnitOutcome struct {
	Unit    ReportingUnit
	Status  UnitStatus
	Records []results.VoteRecord
	// Err is set when Status is StatusFetchError.
	Err error
	// WardIssue is set when the ward name could not be resolved or its
	// number could not be derived, the records then carry an empty WardNumber.
	WardIssue error
}

// StatusError is returned for responses other than 200 OK.
type StatusError struct {
	Url        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d from %s", e.StatusCode, e.Url)
}
