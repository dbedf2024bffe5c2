package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/joshuaeyu/plum/internal/core/services"
	"github.com/joshuaeyu/plum/pkg/ui"
)

var (
	historyLimit int
	historyPrune int
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history [path]",
	Short: "Show recent resyncs",
	Long: `Show the most recent resyncs, newest first, optionally for one asset.

Examples:
  plum history
  plum history --limit 50
  plum history shaders/basic.frag
  plum history --prune 500`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 0, "Number of events to show (default from config)")
	historyCmd.Flags().IntVar(&historyPrune, "prune", 0, "Drop all but the newest N events")
}

func runHistory(cmd *cobra.Command, args []string) error {
	if err := requireHistory(); err != nil {
		return err
	}
	ctx := getContext()

	if cmd.Flags().Changed("prune") {
		removed, err := syncJournal.Prune(ctx, historyPrune)
		if err != nil {
			return err
		}
		fmt.Println(ui.FormatSuccess(fmt.Sprintf("Pruned %d events", removed)))
		return nil
	}

	req := services.HistoryRequest{Limit: historyLimit}
	if !cmd.Flags().Changed("limit") {
		req.Limit = appConfig.HistoryLimit
	}
	if len(args) == 1 {
		req.Path = args[0]
	}

	resp, err := historyService.Execute(ctx, req)
	if err != nil {
		return err
	}
	if len(resp.Events) == 0 {
		fmt.Println(ui.FormatInfo("No resyncs recorded yet"))
		return nil
	}

	fmt.Println(ui.FormatTitle("History"))
	fmt.Println()

	table := ui.NewTable([]ui.TableColumn{
		{Header: "#", Width: 4, Align: ui.AlignRight},
		{Header: "When", Width: 19},
		{Header: "Mode", Width: 4},
		{Header: "Path", Width: 30},
		{Header: "Users", Width: 5, Align: ui.AlignRight},
		{Header: "Result", Width: 6},
	})

	for _, ev := range resp.Events {
		result := ui.StyleSuccess.Render("ok")
		if ev.Failed() {
			result = ui.StyleError.Render(ui.Truncate(ev.Error, 60))
		}
		table.AddRow(
			strconv.FormatUint(ev.Seq, 10),
			ev.At.Local().Format(appConfig.TimestampFormat),
			string(ev.Mode),
			ui.TruncatePath(ev.Path, 48),
			strconv.Itoa(ev.Users),
			result,
		)
	}

	if resp.Failed > 0 {
		table.Footer = fmt.Sprintf("%d of %d resyncs failed", resp.Failed, len(resp.Events))
	}
	fmt.Print(table.Render())

	return nil
}
