package commands

import (
	"context"
	"kenosha-results/lib/scrapers/kenosha"
	"kenosha-results/lib/telemetry"
	"time"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "kenosha-scrape",
	Short: "kenosha-scrape scrapes ward level results off the Kenosha County election results site.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if *debug {
			telemetry.InitSlog(true)
		}
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	configPath *string
	electionId *int
	munis      *[]string
	delay      *time.Duration
	dumpHttp   *string
	debug      *bool
)

func init() {
	flags := rootCmd.PersistentFlags()
	configPath = flags.String("config", "config.json5", "The config file to read, a <name>.local.json5 next to it is merged on top.")
	electionId = flags.Int("election", kenosha.DefaultElectionId, "The election id (eid) to scrape.")
	munis = flags.StringArray("muni", nil, "Only scrape this municipality, can be repeated.")
	delay = flags.Duration("delay", kenosha.DefaultDelay, "The minimum time between two requests.")
	dumpHttp = flags.String("dump-http", "", "Write every request/response pair to this directory.")
	debug = flags.Bool("debug", false, "Enable debug logging.")
}

// ExecuteContext runs the CLI, the returned error has not been printed yet.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
