// Package cornix formats trades as messages understood by the Cornix signal
// copying bot.
package cornix

import (
	"fmt"
	"html"
	"strings"

	"github.com/igolaizola/tvrelay/pkg/trade"
	"github.com/shopspring/decimal"
)

const pricePrecision = 8

var hundred = decimal.NewFromInt(100)

type Formatter struct {
	Exchange          string
	Leverage          string
	TakeProfitPercent decimal.Decimal
	StopLossPercent   decimal.Decimal
}

func DefaultFormatter() Formatter {
	return Formatter{
		Exchange:          "Binance Futures",
		Leverage:          "Isolated (20X)",
		TakeProfitPercent: decimal.NewFromInt(5),
		StopLossPercent:   decimal.NewFromInt(3),
	}
}

func (f Formatter) TakeProfit(entry decimal.Decimal, dir trade.Direction) decimal.Decimal {
	ratio := f.TakeProfitPercent.Div(hundred)
	if dir == trade.Short {
		ratio = ratio.Neg()
	}
	return entry.Mul(decimal.NewFromInt(1).Add(ratio)).Round(pricePrecision)
}

func (f Formatter) StopLoss(entry decimal.Decimal, dir trade.Direction) decimal.Decimal {
	ratio := f.StopLossPercent.Div(hundred).Neg()
	if dir == trade.Short {
		ratio = ratio.Neg()
	}
	return entry.Mul(decimal.NewFromInt(1).Add(ratio)).Round(pricePrecision)
}

func (f Formatter) Entry(t *trade.Trade) string {
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "Action: %s 💹\n", t.Direction)
	fmt.Fprintf(sb, "Symbol: #%s\n", t.Symbol)
	sb.WriteString("--- ⌁ ---\n")
	fmt.Fprintf(sb, "Exchange: %s\n", html.EscapeString(f.Exchange))
	fmt.Fprintf(sb, "Timeframe: %s\n", html.EscapeString(t.Timeframe))
	fmt.Fprintf(sb, "Leverage: %s\n", html.EscapeString(f.Leverage))
	sb.WriteString("--- ⌁ ---\n")
	fmt.Fprintf(sb, "☑️ Entry Price: %s\n", t.EntryPrice)
	fmt.Fprintf(sb, "☑️ Take Profit: %s\n", f.TakeProfit(t.EntryPrice, t.Direction))
	fmt.Fprintf(sb, "☑️ Stop Loss: %s\n", f.StopLoss(t.EntryPrice, t.Direction))
	sb.WriteString("--- ⌁ ---\n")
	sb.WriteString("⚠️ Wait for Close Signal!")
	return sb.String()
}

// Exit updates the take profit of the open trade to the exit price, which
// makes Cornix close it.
func (f Formatter) Exit(symbol string, price decimal.Decimal) string {
	return fmt.Sprintf("#%s Tp %s", symbol, price)
}

// Profit returns the profit percentage of a trade closed at price.
func Profit(t *trade.Trade, price decimal.Decimal) decimal.Decimal {
	if t.EntryPrice.IsZero() {
		return decimal.Zero
	}
	perc := price.Sub(t.EntryPrice).Div(t.EntryPrice).Mul(hundred)
	if t.Direction == trade.Short {
		perc = perc.Neg()
	}
	return perc
}
