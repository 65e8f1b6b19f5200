package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

// NewQuizzesCmd prints the quizzes available to start a session from.
func NewQuizzesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "quizzes",
		Short: "List available quizzes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			deps, err := buildDeps(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer deps.Close()

			quizzes, err := deps.quizzes.ListQuizzes(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tCATEGORIES\tCREATED")
			for _, q := range quizzes {
				created := "-"
				if q.CreatedAt > 0 {
					created = time.UnixMilli(q.CreatedAt).Format("2006-01-02")
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", q.ID, q.Title, q.Categories, created)
			}
			return w.Flush()
		},
	}
}
