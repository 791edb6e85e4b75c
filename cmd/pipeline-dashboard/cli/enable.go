package cli

import (
	"fmt"

	"github.com/conantteo/gitlab-pipeline-app/internal/infrastructure/config"
	"github.com/spf13/cobra"
)

var enableCmd = &cobra.Command{
	Use:   "enable <project_name>",
	Short: "Enable explicit project by name in config.yaml",
	Args:  cobra.MatchAll(cobra.ExactArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setEnabled(args[0], true)
	},
}

func setEnabled(name string, enabled bool) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	changed := false
	for i := range cfg.Projects {
		if cfg.Projects[i].Name == name && cfg.Projects[i].Enabled != enabled {
			cfg.Projects[i].Enabled = enabled
			changed = true
		}
	}

	verb := "enabled"
	if !enabled {
		verb = "disabled"
	}

	if !changed {
		fmt.Printf("no change (project %q already %s or not found)\n", name, verb)
		return nil
	}

	if err := config.Save(cfgPath, cfg); err != nil {
		return err
	}

	fmt.Printf("%s: %s\n", verb, name)
	return nil
}

func projectNameCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	out := make([]string, 0, len(cfg.Projects))
	for _, p := range cfg.Projects {
		if p.Name == "" {
			continue
		}

		if toComplete == "" || startsWith(p.Name, toComplete) {
			out = append(out, p.Name)
		}
	}

	return out, cobra.ShellCompDirectiveNoFileComp
}

func startsWith(s, pref string) bool {
	if len(pref) > len(s) {
		return false
	}

	return s[:len(pref)] == pref
}

func init() {
	enableCmd.ValidArgsFunction = projectNameCompletion
	rootCmd.AddCommand(enableCmd)
}
