package json

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/igolaizola/tvrelay/pkg/signal"
)

// Parser parses TradingView alerts sent as JSON objects. Prices may be JSON
// numbers or strings.
type Parser struct {
	Options signal.Options
}

func (p Parser) Parse(text string) (*signal.Signal, error) {
	dec := json.NewDecoder(bytes.NewBufferString(text))
	dec.UseNumber()
	var raw map[string]interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: json: couldn't parse alert (%s): %v", signal.ErrInvalid, text, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: json: empty alert", signal.ErrInvalid)
	}
	fields := make(map[string]string, len(raw))
	for k, v := range raw {
		switch v := v.(type) {
		case nil:
		case string:
			fields[strings.ToLower(k)] = v
		case json.Number:
			fields[strings.ToLower(k)] = v.String()
		default:
			fields[strings.ToLower(k)] = fmt.Sprint(v)
		}
	}
	return signal.FromFields(fields, p.Options)
}
