package trade

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in      string
		want    Direction
		wantErr bool
	}{
		{in: "BUY", want: Long},
		{in: "buy", want: Long},
		{in: " long ", want: Long},
		{in: "SELL", want: Short},
		{in: "short", want: Short},
		{in: "hold", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseDirection(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("%q: want error %t, got %v", tt.in, tt.wantErr, err)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("%q: want %s, got %s", tt.in, tt.want, got)
		}
	}
}

func TestNew(t *testing.T) {
	tr := New(" btcusdt", Short, decimal.NewFromFloat(27000.5), "1h")
	if tr.Symbol != "BTCUSDT" {
		t.Errorf("wrong symbol: %s", tr.Symbol)
	}
	if tr.ID == "" {
		t.Error("missing id")
	}
	if tr.OpenedAt.IsZero() {
		t.Error("missing opening time")
	}
	other := New("BTCUSDT", Short, decimal.NewFromFloat(27000.5), "1h")
	if other.ID == tr.ID {
		t.Error("trade ids must be unique")
	}
}

func TestTradeJSON(t *testing.T) {
	tr := New("ETHUSDT", Short, decimal.RequireFromString("1850.25"), "15m")
	js, err := json.Marshal(tr)
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]interface{}
	if err := json.Unmarshal(js, &got); err != nil {
		t.Fatal(err)
	}
	if got["action"] != "SELL" {
		t.Errorf("want action SELL, got %v", got["action"])
	}
	if got["entry_price"] != "1850.25" {
		t.Errorf("want entry price 1850.25, got %v", got["entry_price"])
	}
}
