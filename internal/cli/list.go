package cli

import (
	"fmt"

	"github.com/garyjia/billed/internal/application/bills"
	"github.com/spf13/cobra"
)

func newListCmd(opts *rootOptions) *cobra.Command {
	var (
		xlsxPath string
		preview  int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List bills, newest first",
		Long:  "List the bills of the configured store with formatted dates and statuses, newest first.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := startContainer(cmd, opts)
			if err != nil {
				return err
			}
			defer shutdown(c)

			out := cmd.OutOrStdout()

			views, err := c.Retriever().GetBills(cmd.Context())
			if err != nil {
				fmt.Fprintln(out, errorStyle.Render(err.Error()))
				return err
			}
			if views == nil {
				fmt.Fprintln(out, dimStyle.Render("Aucun stockage configuré"))
				return nil
			}

			p := bills.NewPresenter(views, bills.PresenterHandles{}, c.Logger())
			fmt.Fprintln(out, renderBills(p.Rows()))

			if preview > 0 {
				pv, err := p.OpenPreview(preview - 1)
				if err != nil {
					return err
				}
				if pv.Broken {
					fmt.Fprintln(out, errorStyle.Render("Justificatif indisponible"))
				} else {
					fmt.Fprintf(out, "Justificatif: %s\n", pv.FileURL)
				}
				p.Dismiss()
			}

			if xlsxPath != "" {
				if err := c.Exporter().WriteFile(xlsxPath, p.Rows()); err != nil {
					return err
				}
				fmt.Fprintln(out, okStyle.Render(fmt.Sprintf("%d notes de frais exportées vers %s", p.Len(), xlsxPath)))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "also write the listing to an .xlsx workbook")
	cmd.Flags().IntVar(&preview, "preview", 0, "show the proof of the given row (1-based)")
	return cmd
}
