// Package report renders run results for the console. It is a pure
// reporting sink: nothing downstream consumes its output.
package report

import (
	"fmt"
	"io"
	"strings"

	"listingsniper/src/model"
)

const rule = "-------------------------------------"

// PrintOrderDetails writes the tabular summary of a concluded order,
// including one row per fill.
func PrintOrderDetails(w io.Writer, order *model.Order) {
	var b strings.Builder

	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "Symbol       : %s\n", order.Symbol)
	fmt.Fprintf(&b, "Order ID     : %d\n", order.OrderID)
	fmt.Fprintf(&b, "Status       : %s\n", order.Status)
	fmt.Fprintf(&b, "Type         : %s\n", order.Type)
	fmt.Fprintf(&b, "Side         : %s\n", order.Side)
	fmt.Fprintf(&b, "Quantity     : %s\n", order.OrigQty)
	fmt.Fprintf(&b, "Price        : %s\n", order.Price)
	fmt.Fprintf(&b, "Filled Qty   : %s\n", order.ExecutedQty)
	fmt.Fprintf(&b, "Total Quote  : %s\n", order.CummulativeQuoteQty)
	fmt.Fprintf(&b, "Time in Force: %s\n", order.TimeInForce)
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "Fills:")
	for _, fill := range order.Fills {
		fmt.Fprintf(&b, "  - Price: %s, Qty: %s, Commission: %s %s\n",
			fill.Price, fill.Quantity, fill.Commission, fill.CommissionAsset)
	}
	fmt.Fprintln(&b, rule)

	_, _ = io.WriteString(w, b.String())
}

// PrintBalances writes free/locked balance rows.
func PrintBalances(w io.Writer, balances []model.AssetBalance) {
	var b strings.Builder

	fmt.Fprintln(&b, rule)
	for _, row := range balances {
		fmt.Fprintf(&b, "%-10s free: %-20s locked: %s\n", row.Asset, row.Free, row.Locked)
	}
	fmt.Fprintln(&b, rule)

	_, _ = io.WriteString(w, b.String())
}

// PrintExecutionLogs writes recent journal rows, newest first.
func PrintExecutionLogs(w io.Writer, rows []model.ExecutionLog) {
	var b strings.Builder

	fmt.Fprintln(&b, rule)
	for _, row := range rows {
		fmt.Fprintf(&b, "%s  %-12s %-10s %-14s order=%d %s@%s",
			row.CreatedAt.Format("2006-01-02 15:04:05"),
			row.Phase, row.Symbol, row.Outcome,
			row.ExchangeOrderID, row.Quantity, row.Price)
		if row.ErrorMessage != nil {
			fmt.Fprintf(&b, " err=%q", *row.ErrorMessage)
		}
		fmt.Fprintln(&b)
	}
	fmt.Fprintln(&b, rule)

	_, _ = io.WriteString(w, b.String())
}
