package kenosha

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// UnknownWard is the ward name used when a page does not say which ward it is for.
const UnknownWard = "Unknown Ward"

var (
	ErrUnknownWard       = errors.New("ward name could not be resolved")
	ErrMalformedWardName = errors.New("malformed ward name")
)

// CleanVoteText strips the percentage off a vote cell, "1,234 (52.1%)" -> "1,234".
func CleanVoteText(raw string) string {
	before, _, _ := strings.Cut(raw, "(")
	return strings.TrimSpace(before)
}

// SplitParty splits a candidate label of the form "PARTY First Last" on its
// first space. A label without a space has no party.
func SplitParty(label string) (party string, candidate string) {
	label = strings.TrimSpace(label)
	party, rest, found := strings.Cut(label, " ")
	if !found {
		return "", label
	}
	return party, strings.Join(strings.Fields(rest), " ")
}

// WardNumber derives the ward number from a ward name like "Ward 7 City of Kenosha".
// The second token must be an integer, leading zeros are dropped.
func WardNumber(wardName string) (string, error) {
	if wardName == UnknownWard {
		return "", ErrUnknownWard
	}
	fields := strings.Fields(wardName)
	if len(fields) < 2 {
		return "", fmt.Errorf("%w: %q has no ward number", ErrMalformedWardName, wardName)
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil || n < 0 {
		return "", fmt.Errorf("%w: %q is not a ward number", ErrMalformedWardName, fields[1])
	}
	return strconv.Itoa(n), nil
}
