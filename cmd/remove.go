package cmd

import (
	"fmt"

	fuzzyfinder "github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/cobra"

	"github.com/joshuaeyu/plum/internal/core/services"
	"github.com/joshuaeyu/plum/pkg/ui"
)

// removeCmd represents the remove command
var removeCmd = &cobra.Command{
	Use:     "remove [path]",
	Short:   "Stop tracking an asset (alias: rm)",
	Aliases: []string{"rm"},
	Long: `Stop tracking an asset. The file itself is left alone.

With no argument, pick the asset interactively.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRemove,
}

func runRemove(cmd *cobra.Command, args []string) error {
	ctx := getContext()

	var target string
	if len(args) == 1 {
		target = args[0]
	} else {
		resp, err := listService.Execute(ctx, services.ListRequest{})
		if err != nil {
			return err
		}
		if resp.Total == 0 {
			fmt.Println(ui.FormatWarning("No assets tracked."))
			return nil
		}

		idx, err := fuzzyfinder.Find(
			resp.Assets,
			func(i int) string { return resp.Assets[i].Path },
			fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
				if i == -1 {
					return ""
				}
				a := resp.Assets[i]
				return fmt.Sprintf("Remove\n\nPath: %s\nKind: %s\nHot: %t\nUsers: %d",
					a.Path, a.Kind, a.HotReload, a.Users)
			}),
		)
		if err != nil {
			// Aborted
			return nil
		}
		target = appWorkspace.Abs(resp.Assets[idx].Path)
	}

	if err := trackService.Untrack(ctx, services.UntrackRequest{Path: target}); err != nil {
		fmt.Println(ui.FormatError("Failed to remove " + target))
		return err
	}

	fmt.Println(ui.FormatSuccess("Stopped tracking " + target))
	return nil
}
