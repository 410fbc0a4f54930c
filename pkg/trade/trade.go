package trade

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Direction int

const (
	Long Direction = iota
	Short
)

// ParseDirection accepts the BUY/SELL wording used by alerts as well as
// LONG/SHORT.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BUY", "LONG":
		return Long, nil
	case "SELL", "SHORT":
		return Short, nil
	default:
		return Long, fmt.Errorf("trade: unknown direction %q", s)
	}
}

func (d Direction) String() string {
	if d == Short {
		return "SELL"
	}
	return "BUY"
}

func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(b []byte) error {
	v, err := ParseDirection(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

type Trade struct {
	ID         string          `json:"id"`
	Symbol     string          `json:"symbol"`
	Direction  Direction       `json:"action"`
	EntryPrice decimal.Decimal `json:"entry_price"`
	Timeframe  string          `json:"timeframe"`
	OpenedAt   time.Time       `json:"entry_time"`
}

func New(symbol string, direction Direction, entryPrice decimal.Decimal, timeframe string) *Trade {
	return &Trade{
		ID:         uuid.NewString(),
		Symbol:     strings.ToUpper(strings.TrimSpace(symbol)),
		Direction:  direction,
		EntryPrice: entryPrice,
		Timeframe:  timeframe,
		OpenedAt:   time.Now().UTC(),
	}
}
