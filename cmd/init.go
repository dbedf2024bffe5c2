package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/joshuaeyu/plum/pkg/config"
	"github.com/joshuaeyu/plum/pkg/ui"
	"github.com/joshuaeyu/plum/pkg/workspace"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a plum workspace",
	Long: `Initialize a plum workspace in the current directory (or --workspace).

This creates a .plum/ directory holding:
  - config.yaml   : Workspace configuration
  - manifest.json : Tracked assets and their file baselines
  - journal.db    : Resync history (created on first use)`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	root := workspaceFlag
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
		root = cwd
	}
	ws := workspace.New(root)

	// Check if already initialized
	if ws.Exists() {
		fmt.Println(ui.FormatWarning("Workspace already initialized"))
		fmt.Println(ui.FormatMuted("Location: " + ws.RootPath))
		return nil
	}

	fmt.Println(ui.FormatRocket("Initializing plum workspace..."))
	fmt.Println()

	if err := ws.Initialize(); err != nil {
		fmt.Println(ui.FormatError("Failed to initialize workspace"))
		return err
	}

	// Create default config
	if err := config.DefaultConfig().Save(ws.ConfigPath()); err != nil {
		fmt.Println(ui.FormatWarning("Failed to create default config: " + err.Error()))
		// Don't fail - config is optional
	} else {
		fmt.Println(ui.FormatSuccess("Config (config.yaml) created"))
	}

	// Keep the local history out of version control
	if err := createGitignore(ws); err != nil {
		fmt.Println(ui.FormatWarning("Failed to create .gitignore: " + err.Error()))
	} else {
		fmt.Println(ui.FormatSuccess("Git ignore file (.gitignore) created"))
	}

	fmt.Println()
	fmt.Println(ui.FormatSuccess("Workspace initialized"))
	fmt.Println(ui.FormatMuted("Location: " + ws.RootPath))
	fmt.Println(ui.FormatInfo("Track your first asset with: plum add textures/albedo.png --hot"))

	return nil
}

func createGitignore(ws *workspace.Workspace) error {
	content := `# Resync history is local to this machine
journal.db
*.tmp
`
	return os.WriteFile(filepath.Join(ws.StatePath, ".gitignore"), []byte(content), 0644)
}
