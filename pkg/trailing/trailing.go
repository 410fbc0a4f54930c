package trailing

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

const (
	// Profit percentage at which the offset starts growing from LowOffset.
	anchorProfit = 0.5
	// Profit span over which the offset grows from LowOffset to HighOffset.
	profitSpan = 9.5

	pricePrecision = 8
)

var (
	ErrInvalidInput = errors.New("trailing: invalid input")
	ErrNonFinite    = errors.New("trailing: non-finite result")
)

// Config holds the trailing stop tunables. All values are percentages.
type Config struct {
	// TSI is the regular trailing stop activation percentage.
	TSI float64
	// LowOffset is the trailing offset applied at 0.5% profit or less.
	LowOffset float64
	// HighOffset is the trailing offset reached at 10% profit.
	HighOffset float64
	// ActTsPump is the pump/dump trailing stop activation percentage.
	ActTsPump float64
}

func DefaultConfig() Config {
	return Config{
		TSI:        0.3,
		LowOffset:  0.2,
		HighOffset: 0.3,
		ActTsPump:  1.0,
	}
}

func (c Config) Validate() error {
	values := []struct {
		name  string
		value float64
	}{
		{"tsi", c.TSI},
		{"low offset", c.LowOffset},
		{"high offset", c.HighOffset},
		{"act ts pump", c.ActTsPump},
	}
	for _, v := range values {
		if math.IsNaN(v.value) || math.IsInf(v.value, 0) || v.value < 0 {
			return fmt.Errorf("trailing: invalid %s: %v", v.name, v.value)
		}
	}
	if c.HighOffset < c.LowOffset {
		return fmt.Errorf("trailing: high offset %v lower than low offset %v", c.HighOffset, c.LowOffset)
	}
	return nil
}

// DynamicOffset interpolates the trailing offset linearly with profit. The
// offset never goes below lowOffset.
func DynamicOffset(profitPercent, lowOffset, highOffset float64) float64 {
	return math.Max(lowOffset, lowOffset+(highOffset-lowOffset)/profitSpan*(profitPercent-anchorProfit))
}

// Result is the outcome of an exit evaluation: either triggered at a price or
// not triggered at all.
type Result struct {
	price     decimal.Decimal
	triggered bool
}

func Triggered(price decimal.Decimal) Result {
	return Result{price: price, triggered: true}
}

func NotTriggered() Result {
	return Result{}
}

func (r Result) Triggered() bool {
	return r.triggered
}

// Price returns the exit price and whether the exit was triggered.
func (r Result) Price() (decimal.Decimal, bool) {
	return r.price, r.triggered
}

func (r Result) String() string {
	if !r.triggered {
		return "not triggered"
	}
	return fmt.Sprintf("triggered at %s", r.price)
}

type Calculator struct {
	cfg Config
}

func NewCalculator(cfg Config) (*Calculator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Calculator{cfg: cfg}, nil
}

func (c *Calculator) Config() Config {
	return c.cfg
}

func (c *Calculator) offset(entry, extreme float64) float64 {
	profit := math.Abs(extreme-entry) / entry * 100
	return DynamicOffset(profit, c.cfg.LowOffset, c.cfg.HighOffset)
}

// RegularLongExit evaluates the regular trailing stop of a long position
// against the bar high.
func (c *Calculator) RegularLongExit(entry, high, closePrice float64) (Result, error) {
	if err := check(entry, high, closePrice); err != nil {
		return NotTriggered(), err
	}
	ts := c.offset(entry, high)
	activation := entry * (1 + c.cfg.TSI/100)
	trigger := activation * (1 + ts/100)
	closeLevel := closePrice * (1 + ts/100)
	if err := finite(ts, activation, trigger, closeLevel); err != nil {
		return NotTriggered(), err
	}
	if high >= closeLevel && high >= trigger {
		return triggered(activation * (1 + ts/100))
	}
	return NotTriggered(), nil
}

// RegularShortExit evaluates the regular trailing stop of a short position
// against the bar low.
func (c *Calculator) RegularShortExit(entry, low, closePrice float64) (Result, error) {
	if err := check(entry, low, closePrice); err != nil {
		return NotTriggered(), err
	}
	ts := c.offset(entry, low)
	activation := entry * (1 - c.cfg.TSI/100)
	trigger := activation * (1 - ts/100)
	closeLevel := closePrice * (1 - ts/100)
	if err := finite(ts, activation, trigger, closeLevel); err != nil {
		return NotTriggered(), err
	}
	if low <= closeLevel && low <= trigger {
		return triggered(activation * (1 - ts/100))
	}
	return NotTriggered(), nil
}

// LongPumpExit evaluates the pump trailing stop of a long position. Unlike
// the regular stop, the high must strictly exceed the activation levels.
func (c *Calculator) LongPumpExit(entry, high, closePrice float64) (Result, error) {
	if err := check(entry, high, closePrice); err != nil {
		return NotTriggered(), err
	}
	ts := c.offset(entry, high)
	activation := entry * (1 + c.cfg.ActTsPump/100)
	trigger := activation * (1 + ts/100)
	closeLevel := closePrice * (1 + ts/100)
	if err := finite(ts, activation, trigger, closeLevel); err != nil {
		return NotTriggered(), err
	}
	if high > trigger && high > activation && high >= closeLevel {
		return triggered(activation * (1 + ts/100))
	}
	return NotTriggered(), nil
}

// ShortPumpExit evaluates the dump trailing stop of a short position.
func (c *Calculator) ShortPumpExit(entry, low, closePrice float64) (Result, error) {
	if err := check(entry, low, closePrice); err != nil {
		return NotTriggered(), err
	}
	ts := c.offset(entry, low)
	activation := entry * (1 - c.cfg.ActTsPump/100)
	trigger := activation * (1 - ts/100)
	closeLevel := closePrice * (1 - ts/100)
	if err := finite(ts, activation, trigger, closeLevel); err != nil {
		return NotTriggered(), err
	}
	if low < trigger && low < activation && low <= closeLevel {
		return triggered(activation * (1 - ts/100))
	}
	return NotTriggered(), nil
}

// Round rounds a price to 8 fractional digits, half away from zero, using
// the shortest decimal representation of v.
func Round(v float64) (decimal.Decimal, error) {
	if err := finite(v); err != nil {
		return decimal.Decimal{}, err
	}
	return decimal.NewFromFloat(v).Round(pricePrecision), nil
}

func triggered(price float64) (Result, error) {
	d, err := Round(price)
	if err != nil {
		return NotTriggered(), err
	}
	return Triggered(d), nil
}

func check(entry, extreme, closePrice float64) error {
	if err := finite(entry, extreme, closePrice); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if entry <= 0 {
		return fmt.Errorf("%w: entry price %v must be positive", ErrInvalidInput, entry)
	}
	return nil
}

func finite(values ...float64) error {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %v", ErrNonFinite, v)
		}
	}
	return nil
}
