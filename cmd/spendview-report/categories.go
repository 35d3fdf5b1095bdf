package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

func categoriesCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List known categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := root.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			out := cmd.OutOrStdout()
			r := lipgloss.NewRenderer(out)
			headerStyle := r.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "%s\t%s\t%s\n", headerStyle.Render("ID"), headerStyle.Render("Name"), headerStyle.Render("Color"))
			for _, e := range app.Loader.Registry().Entries() {
				swatch := r.NewStyle().Foreground(lipgloss.Color(e.HexColor)).Render("●")
				fmt.Fprintf(w, "%d\t%s\t%s %s\n", e.ID, e.Display, swatch, e.HexColor)
			}
			return w.Flush()
		},
	}
}
