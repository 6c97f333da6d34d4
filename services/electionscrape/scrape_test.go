package electionscrape

import (
	"context"
	"kenosha-results/lib/chrono"
	"kenosha-results/lib/export"
	"kenosha-results/lib/results"
	"kenosha-results/lib/scrapers/kenosha"
	"kenosha-results/lib/testutil"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

var electionNight = chrono.FixedTime(time.Date(2024, time.November, 5, 22, 30, 0, 0, time.UTC))

var mayor = testutil.Contest{
	Name: "Mayor",
	Candidates: [][2]string{
		{"DEM Jane Smith", "1,200 (60%)"},
		{"REP John Doe", "800 (40%)"},
	},
}

func newSource(t testing.TB, site *testutil.Site, tel *testutil.RecordingAPI) *kenosha.Client {
	client, err := kenosha.NewClient(kenosha.ClientOptions{
		BaseUrl:    site.URL(),
		ElectionId: kenosha.DefaultElectionId,
		Tel:        tel,
	})
	require.NoError(t, err)
	return client
}

func newOptions(t testing.TB, layout results.Layout, tel *testutil.RecordingAPI) Options {
	return Options{
		Layout:    layout,
		Writer:    export.Delimited{Layout: layout},
		OutputDir: t.TempDir(),
		Time:      electionNight,
		Tel:       tel,
	}
}

func requireNoOutput(t testing.TB, dir string) {
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestRunMayor(t *testing.T) {
	site := testutil.NewSite(t)
	site.AddUnit("City of Kenosha", 7, testutil.UnitPage("Ward 7 City of Kenosha", mayor))
	tel := &testutil.RecordingAPI{}
	opts := newOptions(t, results.LayoutMulti, tel)

	report, err := Run(context.Background(), newSource(t, site, tel), opts)
	require.NoError(t, err)

	require.Equal(
		t,
		filepath.Join(opts.OutputDir, "kenosha_election_results_all_wards_20241105_223000.txt"),
		report.Path,
	)
	contents, err := os.ReadFile(report.Path)
	require.NoError(t, err)
	require.Equal(
		t,
		"Municipality|Ward_Name|Ward_Number|Contest|Party|Candidate|Votes\n"+
			"City of Kenosha|Ward 7 City of Kenosha|7|Mayor|DEM|Jane Smith|1200\n"+
			"City of Kenosha|Ward 7 City of Kenosha|7|Mayor|REP|John Doe|800\n",
		string(contents),
	)

	diff := cmp.Diff([]MunicipalitySummary{
		{Municipality: "City of Kenosha", Units: 1, Records: 2},
	}, report.Summaries)
	if diff != "" {
		t.Fatal(diff)
	}
	require.Equal(t, 2000.0, report.Table.TotalVotes("Mayor"))
}

func TestRunSingleLayout(t *testing.T) {
	site := testutil.NewSite(t)
	site.AddUnit("City of Kenosha", 7, testutil.UnitPage("Ward 7 City of Kenosha", mayor))
	site.AddUnit("City of Kenosha", 8, testutil.UnitPage("", mayor))
	tel := &testutil.RecordingAPI{}
	opts := newOptions(t, results.LayoutSingle, tel)
	opts.OutputPrefix = "kenosha_city"

	report, err := Run(context.Background(), newSource(t, site, tel), opts)
	require.NoError(t, err)
	require.Equal(t, "kenosha_city_20241105_223000.csv", filepath.Base(report.Path))

	contents, err := os.ReadFile(report.Path)
	require.NoError(t, err)
	require.Equal(
		t,
		"Ward_Name,Ward_Number,Contest,Candidate,Votes\n"+
			"Ward 7 City of Kenosha,7,Mayor,DEM Jane Smith,1200\n"+
			"Ward 7 City of Kenosha,7,Mayor,REP John Doe,800\n",
		string(contents),
	)

	require.Equal(t, []MunicipalitySummary{
		{Municipality: "City of Kenosha", Units: 2, Records: 2, Empty: 1, WardIssues: 1},
	}, report.Summaries)
}

func TestRunUnparseableVotesIsFatal(t *testing.T) {
	site := testutil.NewSite(t)
	site.AddUnit("City of Kenosha", 7, testutil.UnitPage("Ward 7 City of Kenosha", testutil.Contest{
		Name:       "Mayor",
		Candidates: [][2]string{{"DEM Jane Smith", "N/A"}},
	}))
	tel := &testutil.RecordingAPI{}
	opts := newOptions(t, results.LayoutMulti, tel)

	report, err := Run(context.Background(), newSource(t, site, tel), opts)
	var voteErr *results.VoteError
	require.ErrorAs(t, err, &voteErr)
	require.Equal(t, "N/A", voteErr.Record.VoteText)
	require.Empty(t, report.Path)
	requireNoOutput(t, opts.OutputDir)
}

func TestRunEmptyUnit(t *testing.T) {
	site := testutil.NewSite(t)
	site.AddUnit("Town of Somers", 120, testutil.UnitPage("Ward 1 Town of Somers"))
	site.AddUnit("Town of Somers", 121, testutil.UnitPage("Ward 2 Town of Somers", mayor))
	tel := &testutil.RecordingAPI{}
	opts := newOptions(t, results.LayoutMulti, tel)

	report, err := Run(context.Background(), newSource(t, site, tel), opts)
	require.NoError(t, err)
	require.Len(t, report.Table.Rows, 2)
	require.Equal(t, "2", report.Table.Rows[0].WardNumber)
	require.Equal(t, []MunicipalitySummary{
		{Municipality: "Town of Somers", Units: 2, Records: 2, Empty: 1},
	}, report.Summaries)
}

func TestRunNothingCollected(t *testing.T) {
	site := testutil.NewSite(t)
	site.AddUnit("Town of Somers", 120, testutil.UnitPage("Ward 1 Town of Somers"))
	tel := &testutil.RecordingAPI{}
	opts := newOptions(t, results.LayoutMulti, tel)

	_, err := Run(context.Background(), newSource(t, site, tel), opts)
	require.ErrorIs(t, err, results.ErrNothingCollected)
	requireNoOutput(t, opts.OutputDir)
}

func TestRunContinuesPastFailedUnits(t *testing.T) {
	site := testutil.NewSite(t)
	site.AddUnit("City of Kenosha", 7, testutil.UnitPage("Ward 7 City of Kenosha", mayor))
	site.AddUnit("City of Kenosha", 8, "")
	site.FailUnit("City of Kenosha", 8, http.StatusInternalServerError)
	tel := &testutil.RecordingAPI{}
	opts := newOptions(t, results.LayoutMulti, tel)

	report, err := Run(context.Background(), newSource(t, site, tel), opts)
	require.NoError(t, err)
	require.NotEmpty(t, report.Path)
	require.Equal(t, 1, report.FailedUnits())
	require.Len(t, tel.Find("warning", report_run_unit), 1)
}

func TestRunDuplicates(t *testing.T) {
	site := testutil.NewSite(t)
	site.AddUnit("City of Kenosha", 7, testutil.UnitPage("Ward 7 City of Kenosha", mayor, mayor))
	tel := &testutil.RecordingAPI{}
	opts := newOptions(t, results.LayoutMulti, tel)

	report, err := Run(context.Background(), newSource(t, site, tel), opts)
	require.NoError(t, err)
	require.Len(t, report.Table.Rows, 2)
	require.Equal(t, 2, report.Duplicates)
	require.Len(t, tel.Find("warning", report_run_duplicate), 2)
}

func TestRunKeepsUnknownWardUnitsApart(t *testing.T) {
	site := testutil.NewSite(t)
	site.AddUnit("Town of Salem", 3, testutil.UnitPage("", mayor))
	site.AddUnit("Town of Salem", 4, testutil.UnitPage("", mayor))
	tel := &testutil.RecordingAPI{}
	opts := newOptions(t, results.LayoutMulti, tel)

	report, err := Run(context.Background(), newSource(t, site, tel), opts)
	require.NoError(t, err)
	require.Zero(t, report.Duplicates)
	require.Empty(t, tel.Find("warning", report_run_duplicate))
	require.Len(t, report.Table.Rows, 4)
	require.Equal(t, 4000.0, report.Table.TotalVotes("Mayor"))

	var wardIds []int
	for _, row := range report.Table.Rows {
		require.Equal(t, kenosha.UnknownWard, row.WardName)
		require.Empty(t, row.WardNumber)
		wardIds = append(wardIds, row.WardId)
	}
	require.Equal(t, []int{3, 3, 4, 4}, wardIds)
	require.Equal(t, []MunicipalitySummary{
		{Municipality: "Town of Salem", Units: 2, Records: 4, WardIssues: 2},
	}, report.Summaries)
}

type cancellingSource struct {
	plan    kenosha.Plan
	cancel  context.CancelFunc
	scraped int
}

func (s *cancellingSource) Discover(ctx context.Context, filter []string) (kenosha.Plan, error) {
	return s.plan, nil
}

func (s *cancellingSource) ScrapeUnit(ctx context.Context, unit kenosha.ReportingUnit, layout results.Layout) kenosha.UnitOutcome {
	s.scraped++
	s.cancel()
	return kenosha.UnitOutcome{Unit: unit, Status: kenosha.StatusFetchError, Err: ctx.Err()}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	source := &cancellingSource{
		plan: kenosha.NewPlan([]kenosha.PlanEntry{
			{Municipality: "City of Kenosha", Wards: []int{1, 2, 3}},
		}),
		cancel: cancel,
	}
	opts := newOptions(t, results.LayoutMulti, &testutil.RecordingAPI{})

	_, err := Run(ctx, source, opts)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, source.scraped)
	requireNoOutput(t, opts.OutputDir)
}

func TestRunRequiresWriter(t *testing.T) {
	_, err := Run(context.Background(), &cancellingSource{}, Options{})
	require.Error(t, err)
}
