package cli

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/spf13/cobra"

	"github.com/xenking/commercial-invoice/internal/domain/invoice"
)

// NewDataCommand creates the data command, which prints the assembled
// view-model as JSON.
func NewDataCommand(rootOpts *RootOptions) *cobra.Command {
	var orderID, fulfillID int64

	cmd := &cobra.Command{
		Use:          "data",
		Short:        "Print the assembled invoice data as JSON",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withService(cmd.Context(), rootOpts, func(ctx context.Context, svc *invoice.Service) error {
				vm, err := svc.ViewModel(ctx, orderID, fulfillID)
				if err != nil {
					return err
				}
				var e jx.Encoder
				vm.Encode(&e)
				if _, err := cmd.OutOrStdout().Write(append(e.Bytes(), '\n')); err != nil {
					return errors.Wrap(err, "write stdout")
				}
				return nil
			})
		},
	}

	pairFlags(cmd, &orderID, &fulfillID)

	return cmd
}
