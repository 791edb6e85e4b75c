package cli

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/conantteo/gitlab-pipeline-app/internal/domain"
	"github.com/conantteo/gitlab-pipeline-app/internal/infrastructure/config"
	"github.com/spf13/cobra"
)

var successesLimit int

var successesCmd = &cobra.Command{
	Use:   "successes",
	Short: "Most recently completed successful pipelines",
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

		succ := snap.Successes(successesLimit)
		if len(succ) == 0 {
			fmt.Println("No successful pipelines found!")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "PROJECT\tBRANCH\tCOMPLETED\tURL")
		for _, p := range succ {
			_, _ = fmt.Fprintf(w, "✅ %s\t%s\t%s\t%s\n",
				p.ProjectName, p.Ref, domain.TimeAgo(p.UpdatedAt, time.Now()), p.WebURL)
		}
		_ = w.Flush()
		return nil
	},
}

func init() {
	successesCmd.Flags().IntVar(&successesLimit, "limit", 10, "max successes to show")
	rootCmd.AddCommand(successesCmd)
}
