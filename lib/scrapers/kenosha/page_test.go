package kenosha

import (
	"kenosha-results/lib/results"
	"kenosha-results/lib/testutil"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func parse(t testing.TB, src string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

var mayorPage = testutil.UnitPage(
	"Ward 7 City of Kenosha",
	testutil.Contest{
		Name: "Mayor",
		Candidates: [][2]string{
			{"DEM Jane Smith", "1,200 (60%)"},
			{"REP John Doe", "800 (40%)"},
		},
	},
)

func TestOptionValues(t *testing.T) {
	doc := parse(t, `
		<select name="ddMunis">
			<option value="-1">-- Select --</option>
			<option value="City of Kenosha">City of Kenosha</option>
			<option value="">blank</option>
			<option value="Town of Somers">Town of Somers</option>
			<option value="Town of Somers">Town of Somers</option>
		</select>`)

	diff := cmp.Diff(
		[]string{"City of Kenosha", "Town of Somers", "Town of Somers"},
		OptionValues(doc, "ddMunis"),
	)
	if diff != "" {
		t.Fatal(diff)
	}
	require.Empty(t, OptionValues(doc, "ddReportingUnits"))
}

func TestWardName(t *testing.T) {
	name, ok := WardName(parse(t, mayorPage))
	require.True(t, ok)
	require.Equal(t, "Ward 7 City of Kenosha", name)

	name, ok = WardName(parse(t, testutil.UnitPage("")))
	require.False(t, ok)
	require.Equal(t, UnknownWard, name)

	name, ok = WardName(parse(t, `<html><body><h1>Countywide</h1></body></html>`))
	require.False(t, ok)
	require.Equal(t, UnknownWard, name)
}

func TestExtractCandidates(t *testing.T) {
	doc := parse(t, `<html><body>
		<div class="contestBox">
			<h1> Mayor </h1>
			<table class="resultTable">
				<tr><th>Candidate</th><th>Votes</th></tr>
				<tr><td class="candtd">DEM Jane Smith</td><td>1,200 (60%)</td></tr>
				<tr><td class="candtd">REP John Doe</td><td>800 (40%)</td><td>ignored</td></tr>
				<tr><td>#</td><td class="candtd">Malformed Row</td></tr>
			</table>
		</div>
		<div class="contestBox">
			<table class="resultTable">
				<tr><td class="candtd">No Title</td><td>5</td></tr>
			</table>
		</div>
		<div class="contestBox">
			<h1>No Table</h1>
		</div>
		<div class="contestBox">
			<h1>Referendum</h1>
			<table class="otherTable"><tr><td class="candtd">Ignored</td><td>1</td></tr></table>
			<table class="resultTable">
				<tr><td>1.</td><td class="candtd">Yes</td><td>3,001 (70.5%)</td></tr>
				<tr><td>2.</td><td class="candtd">No</td><td>1,255 (29.5%)</td></tr>
			</table>
		</div>
	</body></html>`)

	expected := []CandidateCell{
		{Contest: "Mayor", Label: "DEM Jane Smith", VoteText: "1,200 (60%)"},
		{Contest: "Mayor", Label: "REP John Doe", VoteText: "800 (40%)"},
		{Contest: "Referendum", Label: "Yes", VoteText: "3,001 (70.5%)"},
		{Contest: "Referendum", Label: "No", VoteText: "1,255 (29.5%)"},
	}
	diff := cmp.Diff(expected, ExtractCandidates(doc))
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestExtractCandidatesNoContests(t *testing.T) {
	require.Empty(t, ExtractCandidates(parse(t, testutil.UnitPage("Ward 1 Town of Salem"))))
}

func TestUnitRecordsMayor(t *testing.T) {
	unit := ReportingUnit{Municipality: "City of Kenosha", WardId: 88}
	outcome := UnitRecords(parse(t, mayorPage), unit, results.LayoutMulti)

	require.Equal(t, StatusRecords, outcome.Status)
	require.NoError(t, outcome.WardIssue)
	require.Equal(t, "Ward 7 City of Kenosha", outcome.Unit.WardName)

	expected := []results.VoteRecord{
		{
			Municipality: "City of Kenosha",
			WardId:       88,
			WardName:     "Ward 7 City of Kenosha",
			WardNumber:   "7",
			Contest:      "Mayor",
			Party:        "DEM",
			Candidate:    "Jane Smith",
			VoteText:     "1,200",
		},
		{
			Municipality: "City of Kenosha",
			WardId:       88,
			WardName:     "Ward 7 City of Kenosha",
			WardNumber:   "7",
			Contest:      "Mayor",
			Party:        "REP",
			Candidate:    "John Doe",
			VoteText:     "800",
		},
	}
	diff := cmp.Diff(expected, outcome.Records)
	if diff != "" {
		t.Fatal(diff)
	}

	table, err := results.Build([][]results.VoteRecord{outcome.Records})
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)
	require.Equal(t, 1200.0, table.Rows[0].Votes)
	require.Equal(t, 800.0, table.Rows[1].Votes)
}

func TestUnitRecordsSingleLayoutKeepsLabel(t *testing.T) {
	unit := ReportingUnit{Municipality: "City of Kenosha", WardId: 88}
	outcome := UnitRecords(parse(t, mayorPage), unit, results.LayoutSingle)

	require.Equal(t, StatusRecords, outcome.Status)
	require.Len(t, outcome.Records, 2)
	require.Equal(t, "", outcome.Records[0].Party)
	require.Equal(t, "DEM Jane Smith", outcome.Records[0].Candidate)
}

func TestUnitRecordsIdempotent(t *testing.T) {
	unit := ReportingUnit{Municipality: "City of Kenosha", WardId: 88}
	first := UnitRecords(parse(t, mayorPage), unit, results.LayoutMulti)
	second := UnitRecords(parse(t, mayorPage), unit, results.LayoutMulti)

	diff := cmp.Diff(first, second)
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestUnitRecordsEmpty(t *testing.T) {
	unit := ReportingUnit{Municipality: "Town of Salem", WardId: 3}
	outcome := UnitRecords(parse(t, testutil.UnitPage("Ward 3 Town of Salem")), unit, results.LayoutMulti)

	require.Equal(t, StatusEmpty, outcome.Status)
	require.Empty(t, outcome.Records)
	require.NoError(t, outcome.Err)
}

func TestUnitRecordsUnknownWard(t *testing.T) {
	page := testutil.UnitPage("", testutil.Contest{
		Name:       "Governor",
		Candidates: [][2]string{{"DEM Tony Evers", "10 (100%)"}},
	})
	unit := ReportingUnit{Municipality: "Town of Salem", WardId: 3}

	multi := UnitRecords(parse(t, page), unit, results.LayoutMulti)
	require.Equal(t, StatusRecords, multi.Status)
	require.ErrorIs(t, multi.WardIssue, ErrUnknownWard)
	require.Len(t, multi.Records, 1)
	require.Equal(t, UnknownWard, multi.Records[0].WardName)
	require.Equal(t, "", multi.Records[0].WardNumber)

	single := UnitRecords(parse(t, page), unit, results.LayoutSingle)
	require.Equal(t, StatusEmpty, single.Status)
	require.ErrorIs(t, single.WardIssue, ErrUnknownWard)
	require.Empty(t, single.Records)
}
