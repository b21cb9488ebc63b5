package usage

import (
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// Parser turns a ProductUsageDyn document into a Reading.
type Parser struct {
	logger zerolog.Logger
	now    func() time.Time
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithParserLogger logs which candidate produced each field.
func WithParserLogger(logger zerolog.Logger) ParserOption {
	return func(p *Parser) {
		p.logger = logger
	}
}

// WithClock overrides the capture-time source.
func WithClock(now func() time.Time) ParserOption {
	return func(p *Parser) {
		if now != nil {
			p.now = now
		}
	}
}

func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{
		logger: zerolog.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse is NewParser().Parse.
func Parse(data []byte) (Reading, error) {
	return NewParser().Parse(data)
}

// Parse resolves every field independently through its candidate list.
// Either all four fields resolve or an error is returned.
func (p *Parser) Parse(data []byte) (Reading, error) {
	root, err := decodeTree(data)
	if err != nil {
		return Reading{}, &ParseError{Kind: MalformedXML, Err: err}
	}

	var reading Reading
	for _, f := range fields {
		value, err := p.resolve(root, f)
		if err != nil {
			return Reading{}, err
		}
		f.assign(&reading, value)
	}

	reading.Timestamp = p.now().UTC()
	return reading, nil
}

func (p *Parser) resolve(root *node, f field) (int, error) {
	for i, c := range f.candidates {
		raw, ok := c.lookup(root)
		if !ok {
			continue
		}
		value, err := strconv.Atoi(raw)
		if err != nil {
			continue
		}
		if value < 0 || (f.percentage && value > 100) {
			return 0, &ParseError{Kind: OutOfRange, Field: f.name, Value: value}
		}
		p.logger.Debug().
			Str("field", f.name).
			Str("candidate", c.desc).
			Int("rank", i).
			Int("value", value).
			Msg("resolved usage field")
		return value, nil
	}

	p.logger.Warn().Str("field", f.name).Int("candidates", len(f.candidates)).Msg("no candidate matched")
	return 0, &ParseError{Kind: MissingField, Field: f.name}
}
