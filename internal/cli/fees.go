package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/handleswap/handleswap/internal/daemon"
)

func init() {
	rootCmd.AddCommand(feesCmd)
}

var feesCmd = &cobra.Command{
	Use:   "fees AMOUNT_CENTS",
	Short: "Quote the fee breakdown for a sale price",
	Long:  `Print the escrow, processing, and platform fees for a sale price in cents, using the configured fee schedule.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runFees,
}

func runFees(cmd *cobra.Command, args []string) error {
	salePrice, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("amount must be an integer number of cents: %q", args[0])
	}

	cfg, err := daemon.Load()
	if err != nil {
		return err
	}
	engineCfg, err := cfg.EngineConfig()
	if err != nil {
		return err
	}
	fees, err := engineCfg.CalculateFees(salePrice)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Sale price:      %s\n", cents(salePrice))
	fmt.Fprintf(os.Stdout, "Escrow fee:      %s\n", cents(fees.EscrowFee))
	fmt.Fprintf(os.Stdout, "Processing fee:  %s\n", cents(fees.ProcessingFee))
	fmt.Fprintf(os.Stdout, "Platform fee:    %s\n", cents(fees.PlatformFee))
	fmt.Fprintf(os.Stdout, "Buyer pays:      %s\n", cents(fees.TotalBuyerPays))
	fmt.Fprintf(os.Stdout, "Seller receives: %s\n", cents(fees.SellerPayout))
	return nil
}

// cents formats a cent amount as dollars.
func cents(c int64) string {
	sign := ""
	if c < 0 {
		sign = "-"
		c = -c
	}
	return fmt.Sprintf("%s$%d.%02d", sign, c/100, c%100)
}
