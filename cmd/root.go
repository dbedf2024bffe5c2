package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuaeyu/plum/internal/adapters/device"
	"github.com/joshuaeyu/plum/internal/adapters/journal"
	"github.com/joshuaeyu/plum/internal/adapters/repository"
	"github.com/joshuaeyu/plum/internal/core/assets"
	"github.com/joshuaeyu/plum/internal/core/domain"
	"github.com/joshuaeyu/plum/internal/core/ports"
	"github.com/joshuaeyu/plum/internal/core/services"
	"github.com/joshuaeyu/plum/pkg/config"
	"github.com/joshuaeyu/plum/pkg/ui"
	"github.com/joshuaeyu/plum/pkg/workspace"
)

var (
	// Global flags
	workspaceFlag string

	// Global workspace instance
	appWorkspace *workspace.Workspace
	appConfig    *config.Config
	appLogger    *slog.Logger

	// Services
	trackService   *services.TrackService
	syncService    *services.SyncService
	listService    *services.ListService
	inspectService *services.InspectService
	historyService *services.HistoryService

	// Adapters
	appDevice    *device.Device
	assetManager *assets.Manager
	manifestRepo *repository.ManifestRepository
	syncJournal  *journal.Journal
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "plum",
	Short: "Plum - keeps in-memory assets in step with their files",
	Long: ui.StyleTitle.Render("Plum") + " - Asset Resync Engine\n\n" +
		"Track images, models and shaders in a workspace, see which ones went stale,\n" +
		"and resync them cold (everything) or hot (live-edited assets only).",
	SilenceUsage:       true,
	PersistentPreRunE:  initializeApp,
	PersistentPostRunE: shutdownApp,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&workspaceFlag, "workspace", "w", "", "Workspace root (default: nearest directory containing .plum)")

	// Add subcommands
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(hotCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// skipInit lists commands that run without an initialized workspace
var skipInit = map[string]bool{
	"init":    true,
	"version": true,
	"help":    true,
}

// resolveWorkspace returns the workspace named by --workspace, or the
// nearest initialized one above the working directory
func resolveWorkspace() (*workspace.Workspace, error) {
	if workspaceFlag != "" {
		return workspace.New(workspaceFlag), nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return workspace.Discover(cwd)
}

// initializeApp initializes the application components
func initializeApp(cmd *cobra.Command, args []string) error {
	if skipInit[cmd.Name()] {
		return nil
	}

	ws, err := resolveWorkspace()
	if err != nil {
		return err
	}
	appWorkspace = ws

	// Check if workspace exists
	if !appWorkspace.Exists() {
		fmt.Println(ui.FormatError("Workspace not initialized"))
		fmt.Println(ui.FormatInfo("Run 'plum init' in your asset directory"))
		return domain.ErrWorkspaceMissing
	}

	cfg, err := config.Load(appWorkspace.ConfigPath())
	if err != nil {
		return err
	}
	appConfig = cfg
	ui.SetTheme(appConfig.ColorTheme)

	appLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: appConfig.SlogLevel()}))
	slog.SetDefault(appLogger)

	// Initialize adapters
	appDevice = device.NewOS()
	loader := assets.NewLoader(appDevice)
	assetManager = assets.NewManager(
		assets.WithLoader(loader),
		assets.WithObserver(assets.ObserverFunc(logResync)),
	)
	manifestRepo = repository.NewManifestRepository(appWorkspace)

	// The journal is optional; another plum process may hold its lock
	syncJournal, historyService = nil, nil
	var events ports.Journal
	if j, err := journal.Open(appWorkspace.JournalPath()); err != nil {
		appLogger.Warn("sync history unavailable", "err", err)
	} else {
		syncJournal = j
		events = j
	}

	// Initialize services
	trackService = services.NewTrackService(appWorkspace, assetManager, manifestRepo, appDevice.Fs())
	syncService = services.NewSyncService(appWorkspace, assetManager, manifestRepo, events, appDevice.Fs(), appLogger)
	listService = services.NewListService(appWorkspace, assetManager, manifestRepo)
	inspectService = services.NewInspectService(appWorkspace, loader, manifestRepo)
	if syncJournal != nil {
		historyService = services.NewHistoryService(appWorkspace, syncJournal)
	}

	// Rebuild the registry from the manifest
	n, err := syncService.Restore(getContext())
	if err != nil {
		return err
	}
	appLogger.Debug("registry restored", "assets", n, "workspace", appWorkspace.RootPath)

	return nil
}

// shutdownApp releases the journal lock
func shutdownApp(cmd *cobra.Command, args []string) error {
	if syncJournal == nil {
		return nil
	}
	err := syncJournal.Close()
	syncJournal = nil
	return err
}

func logResync(ctx context.Context, mode domain.SyncMode, a assets.Asset, err error) {
	if err != nil {
		appLogger.Debug("resync failed", "mode", mode, "path", a.Path(), "err", err)
		return
	}
	appLogger.Debug("resynced", "mode", mode, "path", a.Path(), "kind", a.Kind(), "users", a.Users())
}

// requireHistory fails when the journal could not be opened
func requireHistory() error {
	if historyService == nil {
		return errors.New("sync history unavailable (is another plum process running?)")
	}
	return nil
}

// getContext returns a context for operations
func getContext() context.Context {
	return context.Background()
}
