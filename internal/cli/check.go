package cli

import (
	"log/slog"

	"github.com/spf13/cobra"
)

func newCheckCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check that every required tool is installed",
		Long: `Resolve each configured tool on PATH and report where it was found.
Exits non-zero if any tool is missing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			results := app.LookPath.CheckAll(app.Config.Tools.Required())
			app.Printer.Tools(results)

			for _, r := range results {
				if !r.Found() {
					cmd.SilenceUsage = true
					slog.Debug("tool missing", "tool", r.Name, "error", r.Err)
					return NewExitError(1)
				}
			}
			return nil
		},
	}
}
