package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/conantteo/gitlab-pipeline-app/internal/domain"
	"github.com/conantteo/gitlab-pipeline-app/internal/infrastructure/config"
	"github.com/spf13/cobra"
)

var overviewJSON bool

var overviewCmd = &cobra.Command{
	Use:   "overview",
	Short: "Pipeline status overview across the group",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return err
		}

		uc := newUseCase(cfg)
		snap, err := fetchSnapshot(cmd.Context(), cfg, uc)
		if err != nil {
			return err
		}

		if overviewJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(snap)
		}

		printOverview(snap)
		return nil
	},
}

func printOverview(snap domain.Snapshot) {
	if len(snap.Pipelines) == 0 && len(snap.FailedProjects) > 0 {
		fmt.Println("no projects found or unable to access the group")
		return
	}

	c := snap.Counts()
	fmt.Printf("✅ Successful: %d   ❌ Failed: %d   🔵 Running: %d   ⏳ Pending: %d\n\n",
		c.Succeeded, c.Failed, c.Running, c.Pending)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, " \tPROJECT\tBRANCH\tSTATUS\tCREATED\tTIME AGO\tUSER")
	for _, p := range snap.Pipelines {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			p.Status.Glyph(),
			p.ProjectName,
			p.Ref,
			p.Status,
			domain.FormatTimestamp(p.CreatedAt),
			domain.TimeAgo(p.UpdatedAt, time.Now()),
			orNA(p.TriggeredBy),
		)
	}
	_ = w.Flush()

	if len(snap.FailedProjects) > 0 {
		fmt.Printf("\n%d project(s) could not be fetched: %v\n", len(snap.FailedProjects), snap.FailedProjects)
	}
}

func init() {
	overviewCmd.Flags().BoolVar(&overviewJSON, "json", false, "print JSON")
	rootCmd.AddCommand(overviewCmd)
}
