package commands

import (
	"fmt"
	"kenosha-results/lib/serviceutil"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list [--muni <name>...]",
	Short: "Lists the municipalities and ward ids of an election without scraping results.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			serviceutil.Fatal("failed to load config", err)
		}
		client, err := createClient(cfg)
		if err != nil {
			serviceutil.Fatal("failed to create client", err)
		}

		plan, err := client.Discover(cmd.Context(), cfg.Municipalities)
		if err != nil {
			serviceutil.Fatal("failed to discover reporting units", err)
		}

		t := newTable()
		t.AppendHeader(table.Row{"Municipality", "Wards", "Ward ids"})
		for _, muni := range plan.Municipalities() {
			wards := plan.Wards(muni)
			ids := make([]string, len(wards))
			for i, w := range wards {
				ids[i] = fmt.Sprint(w)
			}
			t.AppendRow(table.Row{muni, len(wards), strings.Join(ids, " ")})
		}
		t.AppendFooter(table.Row{"Total", plan.UnitCount(), ""})
		t.Render()
	},
}
