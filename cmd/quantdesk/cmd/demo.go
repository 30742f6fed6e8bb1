package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quantdesk/quantdesk/events"
	"github.com/quantdesk/quantdesk/internal/logging"
	"github.com/quantdesk/quantdesk/ledger"
	"github.com/quantdesk/quantdesk/market"
	"github.com/quantdesk/quantdesk/oracle"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run a scripted manual trading session",
	Long: `Run a short scripted session against the simulation venue:

  1. Open a leveraged BTC long from the oracle price
  2. Mark the book and show floating PnL
  3. Close the position and print the settlement
  4. Fire the kill switch with two positions open`,
	RunE: runDemo,
}

func init() {
	rootCmd.AddCommand(demoCmd)
}

func runDemo(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	log := logging.Nop()

	quotes := oracle.New(log)
	eventLog := events.NewLog(events.DefaultCap)
	book := ledger.New(log,
		ledger.WithListener(eventLog),
		ledger.WithQuoter(quotes),
	)
	venue := market.Simulation

	fmt.Printf("Simulation balance: %.2f USDT\n\n", book.Balance(venue))

	price := quotes.Price("BTC", venue)
	pos, err := book.Open(ctx, ledger.OpenRequest{
		Venue:    venue,
		Symbol:   "BTC",
		Side:     ledger.Buy,
		Amount:   100,
		Leverage: 10,
		Price:    price,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Opened %s %s @ %.2f (margin %.2f, fee %.2f)\n",
		pos.Side, pos.Symbol, pos.EntryPrice, pos.InitialMargin, pos.Fee)

	mark := quotes.Price("BTC", venue)
	fmt.Printf("Floating PnL @ %.2f: %.2f\n", mark, ledger.FloatingPnL(pos, mark))

	closed, err := book.Close(ctx, pos.ID, mark, ledger.TriggerManual)
	if err != nil {
		return err
	}
	fmt.Printf("Closed with status %s, PnL %.2f, balance %.2f\n\n",
		closed.Status, closed.PnL, book.Balance(venue))

	// Two fresh positions, then the panic button.
	for _, sym := range []string{"ETH", "SOL"} {
		px := quotes.Price(sym, venue)
		if _, err := book.Open(ctx, ledger.OpenRequest{
			Venue: venue, Symbol: sym, Side: ledger.Sell,
			Amount: 50, Leverage: 5, Price: px,
		}); err != nil {
			return err
		}
	}
	n, err := book.KillSwitch(ctx, venue)
	if err != nil {
		return err
	}
	fmt.Printf("Kill switch closed %d positions, balance %.2f\n\n", n, book.Balance(venue))

	fmt.Println("Recent events:")
	for _, e := range eventLog.Recent(10) {
		fmt.Printf("  [%s] %s\n", e.Kind, e.Message)
	}
	return nil
}
