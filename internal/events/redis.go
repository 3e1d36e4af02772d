// README: Redis pub/sub implementation of the Publisher contract.
package events

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// channelPrefix namespaces dispatch events away from other redis traffic.
const channelPrefix = "khabar:events:"

type RedisPublisher struct {
	redis *redis.Client
}

func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{redis: rdb}
}

// Publish marshals the event and fires it at the topic channel. Failures are
// logged and swallowed: a lost notification must never fail a dispatch.
func (p *RedisPublisher) Publish(ctx context.Context, topic string, e Event) {
	body, err := json.Marshal(e)
	if err != nil {
		log.WithError(err).WithField("type", e.Type).Error("marshal event")
		return
	}
	if err := p.redis.Publish(ctx, channelPrefix+topic, body).Err(); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"topic": topic,
			"type":  e.Type,
		}).Warn("publish event")
	}
}
