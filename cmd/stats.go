package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"

	"github.com/ispell/ispell/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show local practice history",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := buildEnv(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		events, err := env.store.RecentSessions(limit)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			fmt.Println("No practice sessions recorded yet.")
			return nil
		}

		if path, _ := cmd.Flags().GetString("export"); path != "" {
			if err := exportStats(path, events); err != nil {
				return err
			}
			fmt.Printf("Exported %d sessions to %s.\n", len(events), path)
			return nil
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Date", "Book", "Duration", "Words", "Attempts", "Accuracy", "Failed"})
		for _, ev := range events {
			t.AppendRow(table.Row{
				ev.StartedAt.Local().Format("2006-01-02 15:04"),
				ev.ListCode,
				(time.Duration(ev.DurationS) * time.Second).String(),
				ev.Words,
				ev.Attempts,
				fmt.Sprintf("%.1f%%", ev.Accuracy),
				ev.Failed,
			})
		}
		t.Render()
		return nil
	},
}

// exportStats writes the history to an xlsx workbook.
func exportStats(path string, events []store.SessionEvent) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const sheet = "Sessions"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("drop default sheet: %w", err)
	}

	header := []any{"Date", "Book", "Duration (s)", "Words", "Attempts", "Correct", "Accuracy (%)", "Failed"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, ev := range events {
		row := []any{
			ev.StartedAt.Local().Format("2006-01-02 15:04"),
			ev.ListCode,
			ev.DurationS,
			ev.Words,
			ev.Attempts,
			ev.Correct,
			ev.Accuracy,
			ev.Failed,
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func init() {
	statsCmd.Flags().Int("limit", 20, "Number of sessions to show (0 for all)")
	statsCmd.Flags().String("export", "", "Export history to an .xlsx file instead of printing")
}
