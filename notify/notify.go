package notify

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"kanban/domain"
)

const (
	publishTimeout = 2 * time.Second
	reconnectDelay = time.Second
)

// RedisPublisher publishes moved notices to a Redis pub/sub channel.
type RedisPublisher struct {
	client  *redis.Client
	channel string
	log     *log.Logger
}

// NewRedisPublisher creates a publisher writing to channel.
func NewRedisPublisher(client *redis.Client, channel string, logger *log.Logger) *RedisPublisher {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &RedisPublisher{client: client, channel: channel, log: logger}
}

// TaskMoved publishes the notice. Failures are logged and never reach the
// gesture that produced the notice.
func (p *RedisPublisher) TaskMoved(ctx context.Context, notice domain.TaskMoved) {
	if err := p.Publish(ctx, notice); err != nil {
		p.log.WithFields(log.Fields{"task": notice.TaskID, "channel": p.channel}).Errorf("publish notice: %v", err)
	}
}

// Publish encodes and publishes the notice, returning any Redis error.
func (p *RedisPublisher) Publish(ctx context.Context, notice domain.TaskMoved) error {
	data, err := sonic.Marshal(notice)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	return p.client.Publish(ctx, p.channel, data).Err()
}

// Subscribe relays notices from channel to handle until ctx is cancelled.
// Malformed payloads are logged and skipped. The subscription is re-created
// if Redis closes it.
func Subscribe(
	ctx context.Context,
	logger *log.Logger,
	rc *redis.Client,
	channel string,
	handle func(domain.TaskMoved),
) {
	if logger == nil {
		logger = log.StandardLogger()
	}
	for {
		sub := rc.Subscribe(ctx, channel)
		ch := sub.Channel()
	recv:
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case msg, ok := <-ch:
				if !ok {
					break recv
				}
				var notice domain.TaskMoved
				if err := sonic.UnmarshalString(msg.Payload, &notice); err != nil {
					logger.Errorf("unable to parse notice: %v", err)
					continue
				}
				handle(notice)
			}
		}
		_ = sub.Close()
		if ctx.Err() != nil {
			return
		}
		logger.Error("pubsub channel closed, reconnecting")
		if !wait(ctx, reconnectDelay) {
			return
		}
	}
}

// wait blocks for d and reports false if ctx ended first.
func wait(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
