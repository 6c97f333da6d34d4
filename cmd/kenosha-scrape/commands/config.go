package commands

import (
	"errors"
	"fmt"
	"kenosha-results/lib/configutil"
	"kenosha-results/lib/restyutil"
	"kenosha-results/lib/scrapers/kenosha"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
)

type Config struct {
	BaseUrl          string `json:"base_url"`
	ElectionId       int    `json:"election_id"`
	SeedMunicipality string `json:"seed_municipality"`
	// Delay and Timeout are go duration strings, ex. "1s", "500ms".
	Delay          string   `json:"delay"`
	Timeout        string   `json:"timeout"`
	Retries        int      `json:"retries"`
	Layout         string   `json:"layout"`
	Municipalities []string `json:"municipalities"`
	OutputDir      string   `json:"output_dir"`
	OutputPrefix   string   `json:"output_prefix"`
	Format         string   `json:"format"`
	Delimiter      string   `json:"delimiter"`
	HttpDumpDir    string   `json:"http_dump_dir"`
}

func defaultConfig() Config {
	return Config{
		BaseUrl:          kenosha.DefaultBaseUrl,
		ElectionId:       kenosha.DefaultElectionId,
		SeedMunicipality: kenosha.DefaultSeedMunicipality,
		Delay:            kenosha.DefaultDelay.String(),
		Timeout:          kenosha.DefaultTimeout.String(),
		Retries:          2,
		Layout:           "multi",
		Format:           "delimited",
	}
}

// loadConfig reads the config file and applies every flag that was
// explicitly set on the command line on top of it.
func loadConfig(cmd *cobra.Command) (Config, error) {
	cfg, err := configutil.ReadConfig(*configPath, defaultConfig())
	if errors.Is(err, os.ErrNotExist) {
		slog.Debug("no config file found, using defaults", "path", *configPath)
	} else if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", *configPath, err)
	}

	flags := cmd.Flags()
	if flags.Changed("election") {
		cfg.ElectionId = *electionId
	}
	if flags.Changed("muni") {
		cfg.Municipalities = *munis
	}
	if flags.Changed("delay") {
		cfg.Delay = delay.String()
	}
	if flags.Changed("dump-http") {
		cfg.HttpDumpDir = *dumpHttp
	}
	return cfg, nil
}

func parseDuration(name, value string, fallback time.Duration) (time.Duration, error) {
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return d, nil
}

func (cfg Config) clientOptions() (kenosha.ClientOptions, error) {
	delay, err := parseDuration("delay", cfg.Delay, kenosha.DefaultDelay)
	if err != nil {
		return kenosha.ClientOptions{}, err
	}
	timeout, err := parseDuration("timeout", cfg.Timeout, kenosha.DefaultTimeout)
	if err != nil {
		return kenosha.ClientOptions{}, err
	}

	opts := kenosha.ClientOptions{
		BaseUrl:          cfg.BaseUrl,
		ElectionId:       cfg.ElectionId,
		SeedMunicipality: cfg.SeedMunicipality,
		Delay:            delay,
		Timeout:          timeout,
		Retries:          cfg.Retries,
	}
	if cfg.HttpDumpDir != "" {
		output, err := restyutil.NewFilesystemOutput(cfg.HttpDumpDir)
		if err != nil {
			return kenosha.ClientOptions{}, err
		}
		opts.HttpDump = output
	}
	return opts, nil
}

func createClient(cfg Config) (*kenosha.Client, error) {
	opts, err := cfg.clientOptions()
	if err != nil {
		return nil, err
	}
	return kenosha.NewClient(opts)
}
