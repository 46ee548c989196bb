package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/xvierd/pomo/internal/adapters/git"
	"github.com/xvierd/pomo/internal/adapters/tui"
)

var (
	timerTask    string
	timerProject string
	timerFromGit bool
)

var timerCmd = &cobra.Command{
	Use:   "timer",
	Short: "Open the interactive timer",
	Long: `Open the fullscreen timer. Sessions started in it are tagged with the
selected task and project, taken from --task/--project or from the current
git branch and repository with --from-git.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		taskID, projectID, err := resolveSelection(ctx)
		if err != nil {
			return err
		}
		app.timer.SelectTask(taskID, projectID)

		if !isInteractive() {
			return errors.New("the timer needs an interactive terminal; use 'pomo status' instead")
		}
		return launchTUI(ctx)
	},
}

func init() {
	timerCmd.Flags().StringVarP(&timerTask, "task", "t", "", "Task reference for new sessions")
	timerCmd.Flags().StringVarP(&timerProject, "project", "p", "", "Project reference for new sessions")
	timerCmd.Flags().BoolVar(&timerFromGit, "from-git", false, "Use the git branch as task and the repository as project")
	rootCmd.AddCommand(timerCmd)
}

// resolveSelection merges git context with explicit flags. Flags win.
func resolveSelection(ctx context.Context) (*string, *string, error) {
	var taskID, projectID *string
	if timerFromGit {
		info, err := app.git.Detect(ctx, "")
		if err != nil {
			return nil, nil, fmt.Errorf("failed to detect git context: %w", err)
		}
		taskID, projectID = git.Selection(info)
	}
	if timerTask != "" {
		t := timerTask
		taskID = &t
	}
	if timerProject != "" {
		p := timerProject
		projectID = &p
	}
	return taskID, projectID, nil
}

// launchTUI runs the fullscreen timer until the user quits or a signal arrives.
func launchTUI(parent context.Context) error {
	ctx, cancel := setupSignalHandler(parent)
	defer cancel()

	ticker := newTicker(time.Second)
	view := tui.NewProgram(app.timer, func() bool { return ticker.Step(ctx) }, &app.config.Theme)
	return view.Run(ctx)
}
