package signal

import (
	"errors"
	"fmt"
	"strings"

	"github.com/igolaizola/tvrelay/pkg/exit"
	"github.com/igolaizola/tvrelay/pkg/trade"
	"github.com/shopspring/decimal"
)

type Kind string

const (
	Entry Kind = "entry"
	Exit  Kind = "exit"
)

const DefaultTimeframe = "15m"

var ErrInvalid = errors.New("signal: invalid signal")

type Signal struct {
	Kind      Kind
	Symbol    string
	Direction trade.Direction
	// Entry fields
	EntryPrice decimal.Decimal
	Timeframe  string
	// Exit fields
	ExitType  exit.Type
	ExitPrice decimal.Decimal
	Bar       exit.Bar
}

type Parser interface {
	Parse(text string) (*Signal, error)
}

// Options holds the values used for fields missing from an alert.
type Options struct {
	Timeframe string
}

// FromFields builds a signal from the raw alert fields, applying defaults
// and rejecting alerts that can't be relayed.
func FromFields(fields map[string]string, opts Options) (*Signal, error) {
	get := func(key string) string {
		return strings.TrimSpace(fields[key])
	}

	kind := Kind(strings.ToLower(get("type")))
	if kind == "" {
		kind = Entry
	}
	if kind != Entry && kind != Exit {
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalid, kind)
	}

	symbol := strings.ToUpper(get("ticker"))
	if symbol == "" {
		return nil, fmt.Errorf("%w: missing ticker", ErrInvalid)
	}
	s := &Signal{
		Kind:   kind,
		Symbol: symbol,
	}

	if kind == Entry {
		action := get("action")
		if action == "" {
			action = "BUY"
		}
		dir, err := trade.ParseDirection(action)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		s.Direction = dir
		s.EntryPrice, err = price(get("entry_price"), "entry_price")
		if err != nil {
			return nil, err
		}
		s.Timeframe = get("timeframe")
		if s.Timeframe == "" {
			s.Timeframe = opts.Timeframe
		}
		if s.Timeframe == "" {
			s.Timeframe = DefaultTimeframe
		}
		return s, nil
	}

	s.ExitType = exit.Type(strings.ToLower(get("exit_type")))
	if s.ExitType == "" {
		s.ExitType = "unknown"
	}
	var err error
	s.ExitPrice, err = price(get("exit_price"), "exit_price")
	if err != nil {
		return nil, err
	}
	if s.Bar.High, err = optionalPrice(get("high"), "high", s.ExitPrice); err != nil {
		return nil, err
	}
	if s.Bar.Low, err = optionalPrice(get("low"), "low", s.ExitPrice); err != nil {
		return nil, err
	}
	if s.Bar.Close, err = optionalPrice(get("close"), "close", s.ExitPrice); err != nil {
		return nil, err
	}
	return s, nil
}

func price(value, name string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Decimal{}, fmt.Errorf("%w: missing %s", ErrInvalid, name)
	}
	d, err := decimal.NewFromString(strings.Replace(value, ",", ".", 1))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: couldn't parse %s %q: %v", ErrInvalid, name, value, err)
	}
	if !d.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("%w: %s must be positive: %s", ErrInvalid, name, d)
	}
	return d, nil
}

func optionalPrice(value, name string, fallback decimal.Decimal) (decimal.Decimal, error) {
	if value == "" {
		return fallback, nil
	}
	return price(value, name)
}
