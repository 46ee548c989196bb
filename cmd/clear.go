package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var clearYes bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all recorded sessions",
	Long:  "Delete the session ledger. Settings and the current cycle position are kept.",
	RunE: func(cmd *cobra.Command, args []string) error {
		count := len(app.timer.Sessions())
		if count == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No sessions to clear.")
			return nil
		}

		if !clearYes {
			fmt.Fprintf(cmd.OutOrStdout(), "Delete %d sessions? This cannot be undone. [y/N] ", count)
			answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			answer = strings.ToLower(strings.TrimSpace(answer))
			if answer != "y" && answer != "yes" {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
				return nil
			}
		}

		app.timer.ClearSessions()
		if err := saveTimer(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "🗑  Cleared %d sessions.\n", count)
		return nil
	},
}

func init() {
	clearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "Skip the confirmation prompt")
	rootCmd.AddCommand(clearCmd)
}
