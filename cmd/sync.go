package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuaeyu/plum/internal/core/domain"
	"github.com/joshuaeyu/plum/internal/core/services"
	"github.com/joshuaeyu/plum/pkg/ui"
)

var syncHot bool

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Resync assets whose files changed",
	Long: `Reload every tracked asset whose file changed since it was last read.

A cold sync (default) considers every asset. A hot sync (--hot) only
considers assets flagged for hot reload, like the watcher does.
The default mode can be changed with 'default_sync' in the config.`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&syncHot, "hot", false, "Only resync hot-reload assets")
}

func runSync(cmd *cobra.Command, args []string) error {
	mode := domain.SyncMode(appConfig.DefaultSync)
	if cmd.Flags().Changed("hot") {
		mode = domain.SyncCold
		if syncHot {
			mode = domain.SyncHot
		}
	}

	resp, err := syncService.Execute(getContext(), services.SyncRequest{Mode: mode})
	if resp == nil {
		return err
	}
	if err != nil {
		// Bookkeeping failures do not undo the resyncs
		fmt.Println(ui.FormatWarning("Failed to record sync: " + err.Error()))
	}

	printSyncReport(resp.Report)
	return resp.Report.Err()
}

func printSyncReport(report domain.SyncReport) {
	if len(report.Resynced) > 0 {
		fmt.Print(ui.RenderList(ui.IconSuccess+" Resynced", report.Resynced))
	}
	for _, f := range report.Failures {
		fmt.Println(ui.FormatError(fmt.Sprintf("%s: %v", f.Path, f.Err)))
	}

	summary := fmt.Sprintf("%s sync: %d checked, %d resynced, %d unchanged",
		report.Mode, report.Checked, len(report.Resynced), len(report.Skipped))
	if len(report.Failures) > 0 {
		summary += fmt.Sprintf(", %d failed", len(report.Failures))
	}
	fmt.Println(ui.FormatMuted(summary))
}
