package cli

import (
	"context"
	"os"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xenking/commercial-invoice/internal/domain/invoice"
)

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		orderID, fulfillID int64
		out                string
	)

	cmd := &cobra.Command{
		Use:          "render",
		Short:        "Render the commercial invoice PDF of an order/fulfillment pair",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withService(cmd.Context(), rootOpts, func(ctx context.Context, svc *invoice.Service) error {
				doc, err := svc.Render(ctx, orderID, fulfillID)
				if err != nil {
					return err
				}
				if out == "-" {
					_, err = cmd.OutOrStdout().Write(doc.Content)
					return errors.Wrap(err, "write stdout")
				}
				if err := os.WriteFile(out, doc.Content, 0o644); err != nil {
					return errors.Wrap(err, "write pdf")
				}
				zctx.From(ctx).Info("Invoice written", zap.String("path", out), zap.Int("bytes", len(doc.Content)))
				return nil
			})
		},
	}

	pairFlags(cmd, &orderID, &fulfillID)
	cmd.Flags().StringVarP(&out, "out", "o", invoice.FileName, `output file, "-" for stdout`)

	return cmd
}
