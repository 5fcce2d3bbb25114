package cli

import (
	"fmt"
	"os"

	"github.com/garyjia/billed/internal/application/newbill"
	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/domain/workflow"
	"github.com/spf13/cobra"
)

func newSubmitCmd(opts *rootOptions) *cobra.Command {
	var (
		filePath string
		form     newbill.Form
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a new bill with its proof",
		Long:  "Upload a proof file (jpg, jpeg or png) and submit the bill on behalf of the configured session user.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := os.ReadFile(filePath)
			if err != nil {
				return fmt.Errorf("reading proof file: %w", err)
			}

			c, err := startContainer(cmd, opts)
			if err != nil {
				return err
			}
			defer shutdown(c)

			ctx := cmd.Context()
			term := newTerminal(cmd.OutOrStdout(), cmd.ErrOrStderr(), filePath)
			controller := newbill.NewController(c.Gateway(), newbill.Handles{
				FileInput:    term,
				ErrorMessage: term,
				Navigator:    term,
			}, c.Logger(), newbill.WithNavigationPolicy(c.NavigationPolicy()))
			sess := c.Session()

			outcomes, err := controller.ChangeFile(ctx, sess, entity.AttachmentFile{Name: filePath, Content: content})
			if err != nil {
				return err
			}
			if outcome := <-outcomes; outcome.Err != nil {
				return outcome.Err
			}

			result := controller.Submit(ctx, sess, form)
			if result.State == workflow.StateBlocked {
				return fmt.Errorf("submission blocked: %w", result.Reason)
			}
			if err := <-result.Persisted; err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render(fmt.Sprintf("Note de frais %s enregistrée", result.Bill.ID)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&filePath, "file", "f", "", "proof file (jpg, jpeg or png)")
	cmd.Flags().StringVar(&form.Type, "type", entity.TypeTransports, "expense type")
	cmd.Flags().StringVar(&form.Name, "name", "", "expense name")
	cmd.Flags().StringVar(&form.Date, "date", "", "expense date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&form.Amount, "amount", "", "amount TTC")
	cmd.Flags().StringVar(&form.VAT, "vat", "", "VAT amount")
	cmd.Flags().StringVar(&form.Pct, "pct", "", "VAT percentage")
	cmd.Flags().StringVar(&form.Commentary, "commentary", "", "free comment")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
