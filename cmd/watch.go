package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/joshuaeyu/plum/internal/adapters/watcher"
	"github.com/joshuaeyu/plum/internal/core/domain"
	"github.com/joshuaeyu/plum/internal/core/services"
	"github.com/joshuaeyu/plum/pkg/ui"
)

var watchQuiet bool

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Hot reload assets as their files change",
	Long: `Watch the files of hot-reload assets and resync them when they change.

Bursts of changes (an editor writing a temp file and renaming it over the
original, for example) are debounced into a single hot sync. The delay is
'watch_debounce_ms' in the config; 'ignore_patterns' lists file names that
never trigger a sync.

Use --quiet to suppress resync notifications.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVarP(&watchQuiet, "quiet", "q", false, "Suppress resync notifications")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(getContext(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var w *watcher.Watcher
	hotSync := func(ctx context.Context) {
		resp, err := syncService.Execute(ctx, services.SyncRequest{Mode: domain.SyncHot})
		if err != nil {
			appLogger.Warn("failed to record sync", "err", err)
		}
		if resp != nil && !watchQuiet && (len(resp.Report.Resynced) > 0 || len(resp.Report.Failures) > 0) {
			fmt.Println(ui.FormatMuted(time.Now().Format(appConfig.TimestampFormat)))
			printSyncReport(resp.Report)
		}
		if w != nil {
			if err := w.Refresh(assetManager.HotPaths()); err != nil {
				appLogger.Warn("failed to refresh watches", "err", err)
			}
		}
	}

	w, err := watcher.New(hotSync, watcher.Options{
		Debounce: time.Duration(appConfig.WatchDebounceMS) * time.Millisecond,
		Ignore:   appConfig.IgnorePatterns,
		Logger:   appLogger,
	})
	if err != nil {
		return err
	}
	defer w.Close()

	hot := assetManager.HotPaths()
	if err := w.Refresh(hot); err != nil {
		return err
	}

	if !watchQuiet {
		fmt.Println(ui.FormatRocket("Starting plum watcher..."))
		fmt.Println(ui.FormatMuted(fmt.Sprintf("Watching %d hot-reload assets in %d directories", len(hot), w.Dirs())))
		fmt.Println(ui.FormatMuted("Press Ctrl+C to stop"))
		fmt.Println()
	}
	if len(hot) == 0 {
		fmt.Println(ui.FormatWarning("No hot-reload assets; flag some with 'plum hot <path>'"))
	}

	// Catch up on edits made while nothing was watching
	if appConfig.SyncOnStart {
		hotSync(ctx)
	}

	if err := w.Run(ctx); err != nil {
		return err
	}

	if !watchQuiet {
		fmt.Println()
		fmt.Println(ui.FormatMuted("Watcher stopped"))
	}
	return nil
}
