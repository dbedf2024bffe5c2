package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuaeyu/plum/internal/core/services"
	"github.com/joshuaeyu/plum/pkg/ui"
)

var hotOff bool

// hotCmd represents the hot command
var hotCmd = &cobra.Command{
	Use:   "hot <path>...",
	Short: "Flag assets for hot reload",
	Long: `Flag tracked assets for hot reload, or clear the flag with --off.

Hot-reload assets are resynced by 'plum sync --hot' and by 'plum watch'.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runHot,
}

func init() {
	hotCmd.Flags().BoolVar(&hotOff, "off", false, "Clear the hot-reload flag")
}

func runHot(cmd *cobra.Command, args []string) error {
	ctx := getContext()

	for _, path := range args {
		rec, err := trackService.SetHot(ctx, services.HotRequest{Path: path, Hot: !hotOff})
		if err != nil {
			fmt.Println(ui.FormatError("Failed to update " + path))
			return err
		}
		if rec.HotReload {
			fmt.Println(ui.FormatSuccess(rec.Path + " will hot reload " + ui.IconHot))
		} else {
			fmt.Println(ui.FormatSuccess(rec.Path + " resyncs on cold sync only"))
		}
	}
	return nil
}
