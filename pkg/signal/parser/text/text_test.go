package text

import (
	"errors"
	"reflect"
	"testing"

	"github.com/igolaizola/tvrelay/pkg/exit"
	"github.com/igolaizola/tvrelay/pkg/signal"
	"github.com/igolaizola/tvrelay/pkg/trade"
	"github.com/shopspring/decimal"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		msg     string
		want    *signal.Signal
		wantErr bool
	}{
		{
			name: "entry",
			msg: `type: entry
action: BUY
ticker: BTCUSDT
entry_price: 27000.5
`,
			want: &signal.Signal{
				Kind:       signal.Entry,
				Symbol:     "BTCUSDT",
				Direction:  trade.Long,
				EntryPrice: toDecimal("27000.5"),
				Timeframe:  "30m",
			},
		},
		{
			name: "exit with equal signs",
			msg: `type=exit
ticker=BTCUSDT
exit_type=dump_trailing
exit_price=26500
low = 26400`,
			want: &signal.Signal{
				Kind:      signal.Exit,
				Symbol:    "BTCUSDT",
				ExitType:  exit.DumpTrailing,
				ExitPrice: toDecimal("26500"),
				Bar: exit.Bar{
					High:  toDecimal("26500"),
					Low:   toDecimal("26400"),
					Close: toDecimal("26500"),
				},
			},
		},
		{name: "free text", msg: "buy btc now!", wantErr: true},
		{name: "empty", msg: "\n\n", wantErr: true},
	}

	parser, err := NewParser(signal.Options{Timeframe: "30m"})
	if err != nil {
		t.Fatal(err)
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			sig, err := parser.Parse(tt.msg)
			if err != nil {
				if tt.wantErr {
					if !errors.Is(err, signal.ErrInvalid) {
						t.Errorf("want ErrInvalid, got %v", err)
					}
					return
				}
				t.Fatal(err)
			}
			if tt.wantErr {
				t.Fatalf("want error, got %+v", sig)
			}
			if !reflect.DeepEqual(*sig, *tt.want) {
				t.Errorf("got: %+v, want: %+v", sig, tt.want)
			}
		})
	}
}

func toDecimal(value string) decimal.Decimal {
	d, err := decimal.NewFromString(value)
	if err != nil {
		panic(err)
	}
	return d
}
