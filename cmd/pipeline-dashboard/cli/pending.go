package cli

import (
	"fmt"
	"time"

	"github.com/conantteo/gitlab-pipeline-app/internal/domain"
	"github.com/conantteo/gitlab-pipeline-app/internal/infrastructure/config"
	"github.com/spf13/cobra"
)

var pendingJobs bool

var pendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "Pipelines that are pending, created or running",
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

		pending := snap.Pending()
		if len(pending) == 0 {
			fmt.Println("No pending pipelines found!")
			return nil
		}

		for _, p := range pending {
			fmt.Printf("%s %s - %s\n", p.Status.Glyph(), p.ProjectName, p.Ref)
			fmt.Printf("  Status:  %s\n", p.Status)
			fmt.Printf("  Created: %s (%s)\n", domain.FormatTimestamp(p.CreatedAt), domain.TimeAgo(p.CreatedAt, time.Now()))
			fmt.Printf("  User:    %s\n", orNA(p.TriggeredBy))
			if p.WebURL != "" {
				fmt.Printf("  URL:     %s\n", p.WebURL)
			}

			if pendingJobs {
				// jobs are optional enrichment: a fetch failure shows as no jobs
				jobs := uc.JobsFor(cmd.Context(), p.ProjectID, p.ID)
				if len(jobs) > 0 {
					fmt.Println("  Jobs:")
					for _, j := range jobs {
						fmt.Printf("    %s %s - %s\n", j.Status.Glyph(), j.Name, j.Status)
					}
				}
			}
			fmt.Println()
		}
		return nil
	},
}

func init() {
	pendingCmd.Flags().BoolVar(&pendingJobs, "jobs", true, "fetch the job breakdown per pipeline")
	rootCmd.AddCommand(pendingCmd)
}
