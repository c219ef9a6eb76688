package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/ispell/ispell/internal/vocab"
)

var booksCmd = &cobra.Command{
	Use:   "books",
	Short: "List word books and pick the active one",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := buildEnv(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		if code, _ := cmd.Flags().GetString("select"); code != "" {
			if err := env.creds.SetCurrentBook(code); err != nil {
				return err
			}
			fmt.Printf("Active book set to %s.\n", code)
			return nil
		}

		cats, err := env.client.BookHierarchy(ctx)
		if err != nil {
			return err
		}
		current, err := env.creds.CurrentBook()
		if err != nil {
			return err
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"", "Code", "Name", "Category", "Words", "Learned"})
		appendBooks(t, cats, "", current)
		t.Render()

		fmt.Println("\nUse `ispell books --select <code>` to change the active book.")
		return nil
	},
}

// appendBooks flattens the category tree into table rows.
func appendBooks(t table.Writer, cats []vocab.Category, parent, current string) {
	for _, c := range cats {
		name := c.Name
		if parent != "" {
			name = parent + " / " + c.Name
		}
		for _, b := range c.Books {
			marker := ""
			if b.ListCode == current {
				marker = "●"
			}
			t.AppendRow(table.Row{marker, b.ListCode, b.Name, name, b.WordCount, b.Learned})
		}
		appendBooks(t, c.Children, name, current)
	}
}

func init() {
	booksCmd.Flags().String("select", "", "Set the active book by list code")
}
