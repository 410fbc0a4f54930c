package exit

import (
	"errors"
	"fmt"

	"github.com/igolaizola/tvrelay/pkg/trade"
	"github.com/igolaizola/tvrelay/pkg/trailing"
	"github.com/shopspring/decimal"
)

// Type is the exit regime reported by the alert.
type Type string

const (
	PumpTrailing Type = "pump_trailing"
	DumpTrailing Type = "dump_trailing"
	TrailingStop Type = "trailing_stop"
)

var ErrInvalidComputation = errors.New("exit: invalid computation")

// Bar is the market data reported along with an exit alert.
type Bar struct {
	High  decimal.Decimal
	Low   decimal.Decimal
	Close decimal.Decimal
}

// Lookup is the read side of the trade registry.
type Lookup interface {
	Get(symbol string) (*trade.Trade, bool)
}

type Resolver struct {
	trades Lookup
	calc   *trailing.Calculator
}

func NewResolver(trades Lookup, calc *trailing.Calculator) *Resolver {
	return &Resolver{
		trades: trades,
		calc:   calc,
	}
}

// Resolve returns the price at which the exit fired. The raw price is
// returned unchanged when there is no open trade for the symbol, when the
// exit type doesn't apply to the trade direction or when the trailing stop
// didn't trigger on the reported bar. Resolve never modifies the registry.
func (r *Resolver) Resolve(symbol string, typ Type, raw decimal.Decimal, bar Bar) (decimal.Decimal, error) {
	t, ok := r.trades.Get(symbol)
	if !ok {
		return raw, nil
	}

	var evaluate func(entry, extreme, closePrice float64) (trailing.Result, error)
	var extreme decimal.Decimal
	switch {
	case typ == PumpTrailing && t.Direction == trade.Long:
		evaluate, extreme = r.calc.LongPumpExit, bar.High
	case typ == DumpTrailing && t.Direction == trade.Short:
		evaluate, extreme = r.calc.ShortPumpExit, bar.Low
	case typ == TrailingStop && t.Direction == trade.Long:
		evaluate, extreme = r.calc.RegularLongExit, bar.High
	case typ == TrailingStop && t.Direction == trade.Short:
		evaluate, extreme = r.calc.RegularShortExit, bar.Low
	default:
		return raw, nil
	}

	res, err := evaluate(t.EntryPrice.InexactFloat64(), extreme.InexactFloat64(), bar.Close.InexactFloat64())
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %s %s %s: %w", ErrInvalidComputation, t.Symbol, typ, t.Direction, err)
	}
	price, ok := res.Price()
	if !ok {
		return raw, nil
	}
	return price, nil
}
