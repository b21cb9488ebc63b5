package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/joshp123/hp-instant-ink/internal/usage"
)

// Reader produces one live Reading per call.
type Reader interface {
	Read(ctx context.Context) (usage.Reading, error)
}

// Collector scrapes the printer on every Prometheus collection. Gauges keep
// their last good value when a scrape fails; scrape_success reports the miss.
type Collector struct {
	reader     Reader
	timeout    time.Duration
	logger     zerolog.Logger
	sourceTime func() time.Time

	scrapeSuccess           prometheus.Gauge
	lastSuccess             prometheus.Gauge
	scrapeDuration          prometheus.Gauge
	pagesPrinted            prometheus.Gauge
	subscriptionImpressions prometheus.Gauge
	inkLevel                *prometheus.GaugeVec
}

// CollectorOption configures a Collector.
type CollectorOption func(*Collector)

// WithSourceTime reports when the printer last produced fresh data, for
// readers that may answer from a cache. last_success then follows it instead
// of the reading's capture time.
func WithSourceTime(fn func() time.Time) CollectorOption {
	return func(c *Collector) {
		c.sourceTime = fn
	}
}

func NewCollector(reader Reader, printerURL string, timeout time.Duration, logger zerolog.Logger, opts ...CollectorOption) *Collector {
	constLabels := prometheus.Labels{"printer": printerURL}
	c := &Collector{
		reader:  reader,
		timeout: timeout,
		logger:  logger,
		scrapeSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "hp_instant_ink_scrape_success",
			Help:        "Last scrape success (1=ok, 0=error)",
			ConstLabels: constLabels,
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "hp_instant_ink_last_success_timestamp_seconds",
			Help:        "Last successful scrape timestamp (epoch seconds)",
			ConstLabels: constLabels,
		}),
		scrapeDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "hp_instant_ink_scrape_duration_seconds",
			Help:        "Duration of the last printer scrape (seconds)",
			ConstLabels: constLabels,
		}),
		pagesPrinted: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "hp_instant_ink_pages_printed",
			Help:        "Lifetime page count reported by the printer",
			ConstLabels: constLabels,
		}),
		subscriptionImpressions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "hp_instant_ink_subscription_impressions",
			Help:        "Pages counted against the Instant Ink subscription",
			ConstLabels: constLabels,
		}),
		inkLevel: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "hp_instant_ink_ink_level_percent",
			Help:        "Remaining ink (%)",
			ConstLabels: constLabels,
		}, []string{"cartridge"}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.scrapeSuccess.Describe(ch)
	c.lastSuccess.Describe(ch)
	c.scrapeDuration.Describe(ch)
	c.pagesPrinted.Describe(ch)
	c.subscriptionImpressions.Describe(ch)
	c.inkLevel.Describe(ch)
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout+time.Second)
	defer cancel()

	started := time.Now()
	reading, err := c.reader.Read(ctx)
	c.scrapeDuration.Set(time.Since(started).Seconds())
	if err != nil {
		c.logger.Warn().Err(err).Msg("printer scrape failed")
		c.scrapeSuccess.Set(0)
		c.collectAll(ch)
		return
	}

	c.scrapeSuccess.Set(1)
	fresh := reading.Timestamp
	if c.sourceTime != nil {
		if at := c.sourceTime(); !at.IsZero() {
			fresh = at
		}
	}
	c.lastSuccess.Set(float64(fresh.Unix()))
	c.pagesPrinted.Set(float64(reading.PagesPrinted))
	c.subscriptionImpressions.Set(float64(reading.SubscriptionImpressions))
	c.inkLevel.WithLabelValues("colour").Set(float64(reading.ColourInkLevel))
	c.inkLevel.WithLabelValues("black").Set(float64(reading.BlackInkLevel))
	c.collectAll(ch)
}

func (c *Collector) collectAll(ch chan<- prometheus.Metric) {
	c.scrapeSuccess.Collect(ch)
	c.lastSuccess.Collect(ch)
	c.scrapeDuration.Collect(ch)
	c.pagesPrinted.Collect(ch)
	c.subscriptionImpressions.Collect(ch)
	c.inkLevel.Collect(ch)
}

// Registry builds a registry holding the printer collector and build info,
// like the daemon's plugin registry.
func Registry(collector prometheus.Collector, version string) *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collector)
	registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name:        "hp_instant_ink_build_info",
		Help:        "Build information",
		ConstLabels: prometheus.Labels{"version": version},
	}, func() float64 { return 1 }))
	return registry
}
