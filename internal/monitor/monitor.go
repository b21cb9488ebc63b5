package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/joshp123/hp-instant-ink/internal/printer"
	"github.com/joshp123/hp-instant-ink/internal/usage"
)

// Fetcher retrieves the raw usage document.
type Fetcher interface {
	Fetch(ctx context.Context, endpoint string, timeout time.Duration) ([]byte, error)
}

// Monitor runs one fetch and parse against a single printer.
type Monitor struct {
	fetcher  Fetcher
	parser   *usage.Parser
	endpoint string
	timeout  time.Duration
	logger   zerolog.Logger
}

func New(fetcher Fetcher, parser *usage.Parser, endpoint string, timeout time.Duration, logger zerolog.Logger) (*Monitor, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("monitor fetcher is required")
	}
	if endpoint == "" {
		return nil, fmt.Errorf("%w: printer endpoint is required", printer.ErrInvalidInput)
	}
	if parser == nil {
		parser = usage.NewParser()
	}
	return &Monitor{
		fetcher:  fetcher,
		parser:   parser,
		endpoint: endpoint,
		timeout:  timeout,
		logger:   logger,
	}, nil
}

func (m *Monitor) Endpoint() string {
	return m.endpoint
}

// Read performs exactly one attempt. No partial Reading is returned on error.
func (m *Monitor) Read(ctx context.Context) (usage.Reading, error) {
	payload, err := m.fetcher.Fetch(ctx, m.endpoint, m.timeout)
	if err != nil {
		return usage.Reading{}, err
	}
	reading, err := m.parser.Parse(payload)
	if err != nil {
		m.logger.Debug().Str("url", m.endpoint).Bytes("payload", payload).Msg("unparsable usage document")
		return usage.Reading{}, err
	}
	return reading, nil
}
