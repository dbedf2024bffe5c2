package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuaeyu/plum/internal/core/domain"
	"github.com/joshuaeyu/plum/internal/core/services"
	"github.com/joshuaeyu/plum/pkg/ui"
)

var addHot bool

// addCmd represents the add command
var addCmd = &cobra.Command{
	Use:   "add <path>...",
	Short: "Track one or more assets",
	Long: `Load assets and start tracking them.

The kind is taken from the file extension; images with an unknown
extension are recognized by their content. Supported kinds:
  - image  : png, jpg, gif, bmp, tiff, webp
  - model  : Wavefront obj
  - shader : glsl, vert, frag, geom, comp

Examples:
  plum add textures/wall.png
  plum add shaders/*.frag --hot`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().BoolVar(&addHot, "hot", false, "Flag the assets for hot reload")
}

func runAdd(cmd *cobra.Command, args []string) error {
	// If the flag was NOT changed by the user, use the config default
	if !cmd.Flags().Changed("hot") {
		addHot = appConfig.DefaultHot
	}

	ctx := getContext()
	failed := 0

	for _, path := range args {
		resp, err := trackService.Execute(ctx, services.TrackRequest{Path: path, Hot: addHot})
		if err != nil {
			failed++
			switch {
			case errors.Is(err, domain.ErrAssetExists):
				fmt.Println(ui.FormatWarning("Already tracked: " + path))
			case errors.Is(err, domain.ErrUnsupportedKind):
				fmt.Println(ui.FormatError("Unsupported asset: " + path))
			default:
				fmt.Println(ui.FormatError(err.Error()))
			}
			continue
		}

		msg := fmt.Sprintf("Tracking %s (%s, %s)", resp.Record.Path, resp.Record.Kind, ui.FormatBytes(resp.Record.Size))
		if resp.Record.HotReload {
			msg += " " + ui.IconHot
		}
		fmt.Println(ui.FormatSuccess(msg))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d assets could not be tracked", failed, len(args))
	}
	return nil
}
