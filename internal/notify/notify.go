// Package notify forwards domain events to an external chat bridge over
// Redis pub/sub. Each event is published as JSON on the channel
// "<prefix><team>". Delivery is best effort: failures are logged and never
// fail the command that produced the event.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Iron-Ham/clawteam/internal/event"
	"github.com/Iron-Ham/clawteam/internal/logging"
)

// Both bound the time a command spends on an unreachable server.
const (
	connectTimeout = 500 * time.Millisecond
	publishTimeout = 500 * time.Millisecond
)

// Publisher sends a payload to a channel.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// RedisConfig holds connection settings for the Redis server.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RedisPublisher publishes with PUBLISH on a go-redis client.
type RedisPublisher struct {
	client *redis.Client
}

// NewRedisPublisher connects to Redis and verifies the connection with PING.
func NewRedisPublisher(cfg RedisConfig) (*RedisPublisher, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: connectTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Addr, err)
	}
	return &RedisPublisher{client: client}, nil
}

// Publish implements Publisher.
func (p *RedisPublisher) Publish(ctx context.Context, channel string, payload []byte) error {
	return p.client.Publish(ctx, channel, payload).Err()
}

// Close closes the underlying client.
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}

// Message is the JSON document published for each event.
type Message struct {
	Type      string    `json:"type"`
	Team      string    `json:"team"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// Payload encodes e as a Message.
func Payload(e event.Event) ([]byte, error) {
	return json.Marshal(Message{
		Type:      e.EventType(),
		Team:      e.TeamName(),
		Timestamp: e.Timestamp(),
		Data:      e,
	})
}

// Notifier subscribes to a bus and forwards every event to a Publisher.
type Notifier struct {
	pub    Publisher
	prefix string
	logger *logging.Logger
}

// NewNotifier creates a Notifier that publishes on "<prefix><team>".
func NewNotifier(pub Publisher, prefix string, logger *logging.Logger) *Notifier {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Notifier{pub: pub, prefix: prefix, logger: logger}
}

// Channel returns the channel events for team are published on.
func (n *Notifier) Channel(team string) string {
	return n.prefix + team
}

// Attach subscribes the notifier to every event on bus and returns the
// subscription id.
func (n *Notifier) Attach(bus *event.Bus) string {
	return bus.SubscribeAll(n.Handle)
}

// Handle publishes one event. Errors are logged.
func (n *Notifier) Handle(e event.Event) {
	payload, err := Payload(e)
	if err != nil {
		n.logger.Warn("failed to encode event", "event", e.EventType(), "error", err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	channel := n.Channel(e.TeamName())
	if err := n.pub.Publish(ctx, channel, payload); err != nil {
		n.logger.Warn("failed to publish event", "event", e.EventType(), "channel", channel, "error", err.Error())
		return
	}
	n.logger.Debug("event published", "event", e.EventType(), "channel", channel)
}
