package cli

import (
	"github.com/spf13/cobra"

	"sra2mito/internal/summary"
)

func newStatusCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status <output-dir|summary.yaml>",
		Short: "Show the outcome of previous runs",
		Long: `Print the stage-by-stage outcome recorded in a run summary, or in every
*_summary.yaml found in an output directory (and its per-sample sub-directories).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			reader := summary.NewReader(app.Fs)

			paths, err := reader.Find(args[0])
			if err != nil {
				return err
			}
			for _, path := range paths {
				run, err := reader.Read(path)
				if err != nil {
					return err
				}
				printRun(app.Printer, run)
			}
			return nil
		},
	}
}
