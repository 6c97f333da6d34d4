package commands

import (
	"errors"
	"fmt"
	"kenosha-results/lib/chrono"
	"kenosha-results/lib/export"
	"kenosha-results/lib/results"
	"kenosha-results/lib/serviceutil"
	"kenosha-results/services/electionscrape"
	"log/slog"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	layoutFlag    *string
	outDir        *string
	outPrefix     *string
	formatFlag    *string
	delimiterFlag *string
)

func init() {
	flags := scrapeCmd.Flags()
	layoutFlag = flags.String("layout", "multi", `The output layout, "single" (comma separated, no party) or "multi" (pipe separated, with municipality and party).`)
	outDir = flags.String("out", "", "The directory to write the output file to.")
	outPrefix = flags.String("prefix", export.DefaultPrefix, "The output filename prefix.")
	formatFlag = flags.String("format", "delimited", `The output format, "delimited" or "sqlite".`)
	delimiterFlag = flags.String("delimiter", "", "Override the layout's field separator.")
	rootCmd.AddCommand(scrapeCmd)
}

func applyScrapeFlags(cmd *cobra.Command, cfg *Config) {
	flags := cmd.Flags()
	if flags.Changed("layout") {
		cfg.Layout = *layoutFlag
	}
	if flags.Changed("out") {
		cfg.OutputDir = *outDir
	}
	if flags.Changed("prefix") {
		cfg.OutputPrefix = *outPrefix
	}
	if flags.Changed("format") {
		cfg.Format = *formatFlag
	}
	if flags.Changed("delimiter") {
		cfg.Delimiter = *delimiterFlag
	}
}

func printSummary(report electionscrape.Report) {
	t := newTable()
	t.AppendHeader(table.Row{"Municipality", "Units", "Records", "Empty", "Failed", "Ward issues"})

	var total electionscrape.MunicipalitySummary
	for _, s := range report.Summaries {
		t.AppendRow(table.Row{s.Municipality, s.Units, s.Records, s.Empty, s.Failed, s.WardIssues})
		total.Units += s.Units
		total.Records += s.Records
		total.Empty += s.Empty
		total.Failed += s.Failed
		total.WardIssues += s.WardIssues
	}
	t.AppendFooter(table.Row{"Total", total.Units, total.Records, total.Empty, total.Failed, total.WardIssues})
	t.Render()
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape [--layout single|multi] [--muni <name>...] [--out <dir>] [--format delimited|sqlite]",
	Short: "Scrapes every ward of an election and writes the results to a file.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			serviceutil.Fatal("failed to load config", err)
		}
		applyScrapeFlags(cmd, &cfg)

		layout, err := results.ParseLayout(cfg.Layout)
		if err != nil {
			serviceutil.Fatal("invalid layout", err)
		}
		var delim rune
		if cfg.Delimiter != "" {
			delim, err = export.ParseDelimiter(cfg.Delimiter)
			if err != nil {
				serviceutil.Fatal("invalid delimiter", err)
			}
		}
		writer, err := export.NewWriter(cfg.Format, layout, delim)
		if err != nil {
			serviceutil.Fatal("invalid output format", err)
		}
		now, err := chrono.NewStandardTime()
		if err != nil {
			serviceutil.Fatal("failed to load timezone", err)
		}

		client, err := createClient(cfg)
		if err != nil {
			serviceutil.Fatal("failed to create client", err)
		}

		slog.Info(
			"scraping election",
			"election_id", cfg.ElectionId,
			"layout", layout.String(),
			"format", cfg.Format,
		)
		report, err := electionscrape.Run(cmd.Context(), client, electionscrape.Options{
			Layout:         layout,
			Municipalities: cfg.Municipalities,
			Writer:         writer,
			OutputDir:      cfg.OutputDir,
			OutputPrefix:   cfg.OutputPrefix,
			Time:           now,
		})
		if len(report.Summaries) > 0 {
			printSummary(report)
		}
		if errors.Is(err, results.ErrNothingCollected) {
			serviceutil.Fatal("no data was collected, nothing was written", err)
		}
		if err != nil {
			serviceutil.Fatal("scrape failed, nothing was written", err)
		}

		fmt.Printf("Wrote %d rows to %s\n", len(report.Table.Rows), report.Path)
		if report.Duplicates > 0 {
			fmt.Printf("%d duplicate records were dropped\n", report.Duplicates)
		}
	},
}
