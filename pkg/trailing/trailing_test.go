package trailing

import (
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"
)

func TestDynamicOffsetFloor(t *testing.T) {
	for _, profit := range []float64{-50, -3, 0, 0.1, 0.25, 0.5} {
		if got := DynamicOffset(profit, 0.2, 0.3); got != 0.2 {
			t.Errorf("profit %v: want 0.2, got %v", profit, got)
		}
	}
}

func TestDynamicOffsetInterpolation(t *testing.T) {
	tests := []struct {
		profit   float64
		low      float64
		high     float64
		want     float64
		decimals int32
	}{
		{profit: 1.5, low: 0.2, high: 0.3, want: 0.21052632, decimals: 8},
		{profit: 10, low: 0.2, high: 0.3, want: 0.3, decimals: 8},
		{profit: 10, low: 0.1, high: 0.2, want: 0.2, decimals: 8},
		{profit: 2, low: 0.2, high: 0.3, want: 0.21578947, decimals: 8},
	}
	for _, tt := range tests {
		got := decimal.NewFromFloat(DynamicOffset(tt.profit, tt.low, tt.high)).Round(tt.decimals)
		want := decimal.NewFromFloat(tt.want)
		if !got.Equal(want) {
			t.Errorf("profit %v (%v, %v): want %s, got %s", tt.profit, tt.low, tt.high, want, got)
		}
	}
}

func TestDynamicOffsetMonotonic(t *testing.T) {
	prev := DynamicOffset(0.5, 0.2, 0.3)
	for profit := 0.51; profit < 30; profit += 0.37 {
		got := DynamicOffset(profit, 0.2, 0.3)
		if got < prev {
			t.Fatalf("offset decreased at profit %v: %v < %v", profit, got, prev)
		}
		prev = got
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "default", cfg: DefaultConfig()},
		{name: "earlier tuning", cfg: Config{TSI: 0.9, LowOffset: 0.1, HighOffset: 0.2, ActTsPump: 1.0}},
		{name: "negative tsi", cfg: Config{TSI: -1, LowOffset: 0.1, HighOffset: 0.2, ActTsPump: 1.0}, wantErr: true},
		{name: "nan offset", cfg: Config{TSI: 0.3, LowOffset: math.NaN(), HighOffset: 0.2, ActTsPump: 1.0}, wantErr: true},
		{name: "inverted offsets", cfg: Config{TSI: 0.3, LowOffset: 0.3, HighOffset: 0.2, ActTsPump: 1.0}, wantErr: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("want error %t, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestExits(t *testing.T) {
	calc, err := NewCalculator(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	earlier, err := NewCalculator(Config{TSI: 0.9, LowOffset: 0.1, HighOffset: 0.2, ActTsPump: 1.0})
	if err != nil {
		t.Fatal(err)
	}

	type exitFunc func(entry, extreme, closePrice float64) (Result, error)
	tests := []struct {
		name    string
		exit    exitFunc
		entry   float64
		extreme float64
		close   float64
		want    string
	}{
		// high 101.5 is below close level 101.61347...
		{name: "regular long close too high", exit: calc.RegularLongExit, entry: 100, extreme: 101.5, close: 101.4},
		{name: "regular long triggered", exit: calc.RegularLongExit, entry: 100, extreme: 101.5, close: 101.0, want: "100.51115789"},
		{name: "regular long earlier tuning", exit: earlier.RegularLongExit, entry: 100, extreme: 101.5, close: 101.0, want: "101.01152105"},
		{name: "regular long below activation", exit: calc.RegularLongExit, entry: 100, extreme: 100.2, close: 100.0},
		{name: "regular short triggered", exit: calc.RegularShortExit, entry: 100, extreme: 98.5, close: 98.9, want: "99.49010526"},
		{name: "regular short close too low", exit: calc.RegularShortExit, entry: 100, extreme: 98.5, close: 98.4},
		{name: "long pump triggered", exit: calc.LongPumpExit, entry: 100, extreme: 102.0, close: 101.6, want: "101.21794737"},
		{name: "long pump close too high", exit: calc.LongPumpExit, entry: 100, extreme: 102.0, close: 101.8},
		{name: "long pump below trigger", exit: calc.LongPumpExit, entry: 100, extreme: 101.0, close: 100.9},
		{name: "short dump triggered", exit: calc.ShortPumpExit, entry: 50, extreme: 49.0, close: 49.2, want: "49.39318421"},
		{name: "short dump above trigger", exit: calc.ShortPumpExit, entry: 50, extreme: 49.45, close: 49.5},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			res, err := tt.exit(tt.entry, tt.extreme, tt.close)
			if err != nil {
				t.Fatal(err)
			}
			price, ok := res.Price()
			if tt.want == "" {
				if ok {
					t.Errorf("want not triggered, got %s", res)
				}
				return
			}
			if !ok {
				t.Fatalf("want triggered at %s, got %s", tt.want, res)
			}
			if price.String() != tt.want {
				t.Errorf("want %s, got %s", tt.want, price)
			}
		})
	}
}

func TestExitsInvalidInput(t *testing.T) {
	calc, err := NewCalculator(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name    string
		entry   float64
		extreme float64
		close   float64
	}{
		{name: "zero entry", entry: 0, extreme: 101, close: 100},
		{name: "negative entry", entry: -5, extreme: 101, close: 100},
		{name: "nan high", entry: 100, extreme: math.NaN(), close: 100},
		{name: "infinite close", entry: 100, extreme: 101, close: math.Inf(1)},
	}
	exits := []func(entry, extreme, closePrice float64) (Result, error){
		calc.RegularLongExit, calc.RegularShortExit, calc.LongPumpExit, calc.ShortPumpExit,
	}
	for _, tt := range tests {
		for i, exit := range exits {
			res, err := exit(tt.entry, tt.extreme, tt.close)
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("%s (evaluator %d): want ErrInvalidInput, got %v", tt.name, i, err)
			}
			if res.Triggered() {
				t.Errorf("%s (evaluator %d): unexpected trigger", tt.name, i)
			}
		}
	}
}

func TestRound(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{in: 1.000000005, want: "1.00000001"},
		{in: 2.675, want: "2.675"},
		{in: 100.51115789473684, want: "100.51115789"},
		{in: -1.000000005, want: "-1.00000001"},
	}
	for _, tt := range tests {
		got, err := Round(tt.in)
		if err != nil {
			t.Fatal(err)
		}
		if got.String() != tt.want {
			t.Errorf("round %v: want %s, got %s", tt.in, tt.want, got)
		}
	}
	if _, err := Round(math.NaN()); !errors.Is(err, ErrNonFinite) {
		t.Errorf("want ErrNonFinite, got %v", err)
	}
}
