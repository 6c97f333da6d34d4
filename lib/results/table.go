package results

import (
	"errors"
)

// ErrNothingCollected is returned when no reporting unit produced any records.
var ErrNothingCollected = errors.New("no data was collected from any ward")

// Table is the full ordered set of rows produced by a run.
type Table struct {
	Rows []Row
	// Duplicates lists records that repeated an earlier record's key,
	// they are not part of Rows.
	Duplicates []VoteRecord
}

// Build folds the per-unit record batches into a single table, preserving
// batch order and record order within each batch.
//
// Any record whose vote count cannot be parsed fails the whole build with a
// *VoteError, a partially converted table is never returned.
func Build(batches [][]VoteRecord) (Table, error) {
	total := 0
	for _, batch := range batches {
		total += len(batch)
	}
	if total == 0 {
		return Table{}, ErrNothingCollected
	}

	table := Table{Rows: make([]Row, 0, total)}
	seen := make(map[Key]struct{}, total)

	for _, batch := range batches {
		for _, record := range batch {
			votes, err := ParseVotes(record.VoteText)
			if err != nil {
				return Table{}, &VoteError{Record: record, Err: err}
			}

			key := record.Key()
			if _, dup := seen[key]; dup {
				table.Duplicates = append(table.Duplicates, record)
				continue
			}
			seen[key] = struct{}{}

			table.Rows = append(table.Rows, Row{
				VoteRecord: record,
				Votes:      votes,
			})
		}
	}

	return table, nil
}

// TotalVotes sums the votes of every row matching the contest.
func (t Table) TotalVotes(contest string) float64 {
	var total float64
	for _, row := range t.Rows {
		if row.Contest == contest {
			total += row.Votes
		}
	}
	return total
}
