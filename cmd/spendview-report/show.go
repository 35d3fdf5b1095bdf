package main

import (
	"github.com/spf13/cobra"

	"spendview/internal/filter"
	"spendview/internal/report"
)

func showCmd(root *rootOptions) *cobra.Command {
	var (
		asJSON bool
		items  bool
	)
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the dashboard",
		Long:  `Print totals per category and per day together with the remaining budget.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cs, err := root.constraints()
			if err != nil {
				return err
			}
			app, err := root.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			engine := filter.NewEngine(cs...)
			v := app.Builder.Build(app.Loader.Snapshot().Records, engine.Constraints())
			if asJSON {
				return report.RenderJSON(cmd.OutOrStdout(), v)
			}
			return report.Render(cmd.OutOrStdout(), v, report.Options{Items: items})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the view as JSON")
	cmd.Flags().BoolVar(&items, "items", false, "list every expense under its day")
	return cmd
}
