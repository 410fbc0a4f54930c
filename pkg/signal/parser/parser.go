package parser

import (
	"errors"

	"github.com/igolaizola/tvrelay/pkg/signal"
	"github.com/igolaizola/tvrelay/pkg/signal/parser/json"
	"github.com/igolaizola/tvrelay/pkg/signal/parser/text"
)

var ErrNotFound = errors.New("parser: not found")

func NewParser(name string, opts signal.Options) (signal.Parser, error) {
	switch name {
	case "json":
		return json.Parser{Options: opts}, nil
	case "text":
		return text.NewParser(opts)
	default:
		return nil, ErrNotFound
	}
}
