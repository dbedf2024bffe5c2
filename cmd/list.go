package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/joshuaeyu/plum/internal/core/domain"
	"github.com/joshuaeyu/plum/internal/core/services"
	"github.com/joshuaeyu/plum/pkg/ui"
)

var (
	listStale bool
	listHot   bool
	listKind  string
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List tracked assets",
	Aliases: []string{"ls"},
	Long: `List tracked assets with their hot-reload flag and whether the file
changed since the asset was last loaded.

Examples:
  plum list
  plum list --stale
  plum list --kind shader --hot`,
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolVar(&listStale, "stale", false, "Only show assets whose file changed")
	listCmd.Flags().BoolVar(&listHot, "hot", false, "Only show hot-reload assets")
	listCmd.Flags().StringVar(&listKind, "kind", "", "Filter by kind (image, model, shader)")
}

func runList(cmd *cobra.Command, args []string) error {
	req := services.ListRequest{
		HotOnly:   listHot,
		StaleOnly: listStale,
	}
	if listKind != "" {
		req.Kind = domain.ParseKind(listKind)
		if req.Kind == domain.KindUnknown {
			return fmt.Errorf("unknown kind %q", listKind)
		}
	}

	ctx := getContext()
	resp, err := listService.Execute(ctx, req)
	if err != nil {
		fmt.Println(ui.FormatError("Failed to list assets"))
		return err
	}

	// Handle empty results
	if resp.Total == 0 {
		if listStale {
			fmt.Println(ui.FormatSuccess("Everything is up to date"))
		} else {
			fmt.Println(ui.FormatWarning("No assets tracked"))
			fmt.Println(ui.FormatInfo("Track one with: plum add <path>"))
		}
		return nil
	}

	fmt.Println(ui.FormatTitle("Assets"))
	fmt.Println()

	table := ui.NewTable([]ui.TableColumn{
		{Header: "Path", Width: 30},
		{Header: "Kind", Width: 8},
		{Header: "Hot", Width: 3, Align: ui.AlignCenter},
		{Header: "Status", Width: 8},
		{Header: "Size", Width: 9, Align: ui.AlignRight},
		{Header: "Synced", Width: 19},
		{Header: "Users", Width: 5, Align: ui.AlignRight},
	})

	for _, a := range resp.Assets {
		hot := ""
		if a.HotReload {
			hot = ui.StyleHot.Render("yes")
		}
		table.AddRow(
			ui.TruncatePath(a.Path, 48),
			string(a.Kind),
			hot,
			statusLabel(a),
			ui.FormatBytes(a.Size),
			a.SyncedAt.Local().Format(appConfig.TimestampFormat),
			strconv.Itoa(a.Users),
		)
	}

	table.Footer = fmt.Sprintf("Total: %d assets", resp.Total)
	if resp.Stale > 0 {
		table.Footer += fmt.Sprintf(", %d stale (run 'plum sync')", resp.Stale)
	}
	fmt.Print(table.Render())

	return nil
}

func statusLabel(a services.AssetStatus) string {
	switch {
	case !a.Registered:
		return ui.StyleMuted.Render("missing")
	case a.Stale:
		return ui.StyleStale.Render(ui.IconStale + " stale")
	default:
		return ui.StyleSuccess.Render("ok")
	}
}
