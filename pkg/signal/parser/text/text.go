package text

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/igolaizola/tvrelay/pkg/signal"
)

type parser struct {
	line *regexp.Regexp
	opts signal.Options
}

// NewParser returns a parser for plain text alerts with one "key: value" or
// "key=value" pair per line.
func NewParser(opts signal.Options) (signal.Parser, error) {
	line, err := regexp.Compile(`^\s*([A-Za-z_]+)\s*[:=]\s*(.*?)\s*$`)
	if err != nil {
		return nil, fmt.Errorf("text: couldn't create regex: %w", err)
	}
	return &parser{
		line: line,
		opts: opts,
	}, nil
}

func (p *parser) Parse(text string) (*signal.Signal, error) {
	fields := make(map[string]string)
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		matches := p.line.FindStringSubmatch(line)
		if len(matches) < 3 {
			return nil, fmt.Errorf("%w: text: couldn't parse line: %s", signal.ErrInvalid, line)
		}
		fields[strings.ToLower(matches[1])] = matches[2]
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: text: empty alert", signal.ErrInvalid)
	}
	return signal.FromFields(fields, p.opts)
}
