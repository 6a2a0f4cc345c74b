// README: Redis pub/sub notification sink.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"mashwar/internal/types"
)

const channelPrefix = "notify:user:%s"

// RedisSink publishes notifications as JSON on a per-user channel. The
// socket gateway subscribed to these channels pushes them to connected
// clients.
type RedisSink struct {
	redis *redis.Client
}

func NewRedisSink(redis *redis.Client) *RedisSink {
	return &RedisSink{redis: redis}
}

func (s *RedisSink) Send(ctx context.Context, userID types.ID, n Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return s.redis.Publish(ctx, fmt.Sprintf(channelPrefix, string(userID)), payload).Err()
}
