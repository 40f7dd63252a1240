package notify

import (
	"context"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/MayaraRocha95/todo-list-hp/domain"
)

// Redis publishes notifications as JSON on a pub/sub channel.
type Redis struct {
	client  *redis.Client
	channel string
	log     log.FieldLogger
}

// NewRedis creates a Redis notifier publishing on channel.
func NewRedis(client *redis.Client, channel string, l log.FieldLogger) *Redis {
	if l == nil {
		l = log.StandardLogger()
	}
	return &Redis{client: client, channel: channel, log: l}
}

func (r *Redis) Notify(ctx context.Context, n domain.Notification) {
	payload, err := sonic.Marshal(n)
	if err != nil {
		r.log.WithError(err).Error("failed to marshal notification")
		return
	}
	if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		r.log.WithError(err).WithField("channel", r.channel).Error("unable to publish notification")
	}
}
