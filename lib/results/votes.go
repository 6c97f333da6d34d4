package results

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseVotes converts a cleaned vote count ("1,234") into a number.
func ParseVotes(text string) (float64, error) {
	stripped := strings.TrimSpace(strings.ReplaceAll(text, ",", ""))
	if stripped == "" {
		return 0, fmt.Errorf("empty vote count")
	}
	votes, err := strconv.ParseFloat(stripped, 64)
	if err != nil {
		return 0, fmt.Errorf("vote count %q is not a number", text)
	}
	if math.IsNaN(votes) || math.IsInf(votes, 0) {
		return 0, fmt.Errorf("vote count %q is not finite", text)
	}
	return votes, nil
}

// VoteError is returned when a record's vote count cannot be converted.
type VoteError struct {
	Record VoteRecord
	Err    error
}

func (e *VoteError) Error() string {
	return fmt.Sprintf("malformed vote count for %s: %s", e.Record.Key(), e.Err)
}

func (e *VoteError) Unwrap() error {
	return e.Err
}
