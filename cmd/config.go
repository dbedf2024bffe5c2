package cmd

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/joshuaeyu/plum/pkg/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Edit the workspace configuration file",
	Long: `Open .plum/config.yaml in your editor.

Every setting can also be overridden for a single run through a PLUM_*
environment variable, e.g. PLUM_LOG_LEVEL=debug plum sync.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := appWorkspace.ConfigPath()

		// Recreate it if it was deleted
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := appConfig.Save(path); err != nil {
				return fmt.Errorf("failed to create config at %s: %w", path, err)
			}
		}

		fmt.Println(ui.FormatInfo("Opening config: " + path))

		c := exec.Command(GetPreferredEditor(), path)
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		return c.Run()
	},
}
