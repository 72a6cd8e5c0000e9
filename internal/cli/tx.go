package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/handleswap/handleswap/internal/daemon"
)

func init() {
	rootCmd.AddCommand(txCmd)
	txCmd.AddCommand(txShowCmd)
	txCmd.AddCommand(txSweepCmd)
}

var txCmd = &cobra.Command{
	Use:   "tx",
	Short: "Inspect escrow transactions",
}

// ─── tx show ────────────────────────────────────────────────────────────────

var txShowCmd = &cobra.Command{
	Use:   "show TX_ID",
	Short: "Print one transaction as JSON",
	Long:  `Fetch a transaction through the engine, which applies the deadline check before returning it.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runTxShow,
}

func runTxShow(cmd *cobra.Command, args []string) error {
	cfg, err := daemon.Load()
	if err != nil {
		return err
	}
	engine, db, err := daemon.Build(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := engine.GetTransaction(context.Background(), args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(tx)
}

// ─── tx sweep ───────────────────────────────────────────────────────────────

var txSweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Expire every overdue transaction now",
	Long:  `Apply the deadline check to all non-terminal transactions. Equivalent to what any read does lazily.`,
	RunE:  runTxSweep,
}

func runTxSweep(cmd *cobra.Command, args []string) error {
	cfg, err := daemon.Load()
	if err != nil {
		return err
	}
	engine, db, err := daemon.Build(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := engine.SweepAll(context.Background())
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Swept %d overdue transaction(s).\n", n)
	return nil
}
