package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MorseWayne/gift_market/internal/client"
	"github.com/MorseWayne/gift_market/internal/domain"
)

func addProfile(topLevel *cobra.Command, o *rootOptions) {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show wallet balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := o.client.FetchProfile(cmd.Context())
			if err != nil {
				return userError(err, "failed to load profile")
			}
			printProfileBalance(cmd.OutOrStdout(), profile)
			return nil
		},
	}
	topLevel.AddCommand(cmd)
}

func addDeposit(topLevel *cobra.Command, o *rootOptions) {
	cmd := &cobra.Command{
		Use:   "deposit <amount>",
		Short: "Create a TON deposit request",
		Example: `
market deposit 1.5
market deposit 2,25
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := domain.ParseAmount(args[0])
			if err != nil {
				return err
			}
			res, err := o.client.CreateDeposit(cmd.Context(), amount)
			if err != nil {
				return userError(err, "failed to create deposit")
			}
			printDeposit(cmd.OutOrStdout(), res)
			return nil
		},
	}
	topLevel.AddCommand(cmd)
}

func addWithdraw(topLevel *cobra.Command, o *rootOptions) {
	cmd := &cobra.Command{
		Use:   "withdraw <amount> <address>",
		Short: "Request a withdrawal to a TON address",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := domain.ParseAmount(args[0])
			if err != nil {
				return err
			}
			res, err := o.client.RequestWithdrawal(cmd.Context(), amount, args[1])
			if err != nil {
				return userError(err, "failed to request withdrawal")
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Withdrawal %s: %s (%s TON)\n", res.WithdrawalID, res.Status, formatTON(res.Amount))

			// 提现成功后刷新余额
			profile, err := o.client.FetchProfile(cmd.Context())
			if err != nil {
				return userError(err, "failed to reload profile")
			}
			printProfileBalance(out, profile)
			return nil
		},
	}
	topLevel.AddCommand(cmd)
}

func addTransactions(topLevel *cobra.Command, o *rootOptions) {
	var limit int

	cmd := &cobra.Command{
		Use:   "transactions",
		Short: "List recent wallet transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := o.client.FetchTransactions(cmd.Context(), limit)
			if err != nil {
				return userError(err, "failed to load transactions")
			}
			printTransactions(cmd.OutOrStdout(), list.Transactions)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", client.DefaultTransactionLimit, "Number of transactions to show.")

	topLevel.AddCommand(cmd)
}
