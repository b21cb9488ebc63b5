package mqttpub

import (
	"context"
	"crypto/rand"
	"crypto/tls"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"

	"github.com/joshp123/hp-instant-ink/internal/usage"
)

const (
	DefaultTopic = "hp-instant-ink/reading"

	defaultPort    = "1883"
	connectTimeout = 10 * time.Second
	disconnectWait = 250
)

// Config describes the broker connection and publish semantics.
type Config struct {
	Broker   string
	Topic    string
	ClientID string
	Username string
	Password string
	QoS      byte
	Retain   bool
}

// client is the subset of mqtt.Client the publisher needs.
type client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// Publisher sends Readings as JSON to a single topic.
type Publisher struct {
	client client
	topic  string
	qos    byte
	retain bool
	logger zerolog.Logger
}

// Connect dials the broker and returns a ready Publisher.
func Connect(cfg Config, logger zerolog.Logger) (*Publisher, error) {
	if err := validateTopic(cfg.Topic); err != nil {
		return nil, err
	}
	if cfg.QoS > 2 {
		return nil, fmt.Errorf("mqtt qos must be 0, 1 or 2, got %d", cfg.QoS)
	}
	broker, err := BrokerURL(cfg.Broker)
	if err != nil {
		return nil, err
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	if secureScheme(broker) {
		opts.SetTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12})
	}
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = randomClientID()
	}
	opts.SetClientID(clientID)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetConnectTimeout(connectTimeout)
	opts.SetAutoReconnect(false)

	c := mqtt.NewClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connect %s: %w", broker, token.Error())
	}
	logger.Debug().Str("broker", broker).Str("client_id", clientID).Msg("connected to mqtt broker")

	return newPublisher(c, cfg, logger), nil
}

func newPublisher(c client, cfg Config, logger zerolog.Logger) *Publisher {
	return &Publisher{
		client: c,
		topic:  cfg.Topic,
		qos:    cfg.QoS,
		retain: cfg.Retain,
		logger: logger,
	}
}

// Publish sends reading and waits for the broker acknowledgement allowed by
// the QoS, or until ctx is done.
func (p *Publisher) Publish(ctx context.Context, reading usage.Reading) error {
	payload, err := json.Marshal(reading)
	if err != nil {
		return fmt.Errorf("marshal reading: %w", err)
	}

	token := p.client.Publish(p.topic, p.qos, p.retain, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return fmt.Errorf("publish %s: %w", p.topic, ctx.Err())
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", p.topic, err)
	}

	p.logger.Debug().Str("topic", p.topic).Int("bytes", len(payload)).Bool("retain", p.retain).Msg("published reading")
	return nil
}

func (p *Publisher) Close() {
	p.client.Disconnect(disconnectWait)
}

// BrokerURL accepts host, host:port or a full tcp/ssl/ws/wss URL.
func BrokerURL(raw string) (string, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", fmt.Errorf("mqtt broker is required")
	}
	if !strings.Contains(value, "://") {
		host := value
		if _, _, err := net.SplitHostPort(value); err != nil {
			host = net.JoinHostPort(value, defaultPort)
		}
		return "tcp://" + host, nil
	}

	parsed, err := url.Parse(value)
	if err != nil {
		return "", fmt.Errorf("parse mqtt broker: %w", err)
	}
	switch parsed.Scheme {
	case "tcp", "mqtt", "ssl", "tls", "mqtts", "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported mqtt broker scheme %q", parsed.Scheme)
	}
	if parsed.Hostname() == "" {
		return "", fmt.Errorf("invalid mqtt broker %q", raw)
	}
	return value, nil
}

func secureScheme(broker string) bool {
	for _, prefix := range []string{"ssl://", "tls://", "mqtts://", "wss://"} {
		if strings.HasPrefix(broker, prefix) {
			return true
		}
	}
	return false
}

func validateTopic(topic string) error {
	if strings.TrimSpace(topic) == "" {
		return fmt.Errorf("mqtt topic is required")
	}
	if strings.ContainsAny(topic, "+#") {
		return fmt.Errorf("mqtt topic %q must not contain wildcards", topic)
	}
	return nil
}

func randomClientID() string {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("hp-instant-ink-%d", time.Now().UnixNano())
	}
	return "hp-instant-ink-" + hex.EncodeToString(buf)
}
