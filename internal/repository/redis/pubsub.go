package redis

import (
	"context"
	"encoding/json"

	"github.com/kirinyoku/deskgo/internal/events"
	"github.com/redis/go-redis/v9"
)

// SeatsPubSub broadcasts committed lifecycle events to every API instance so
// live seat maps can refresh.
type SeatsPubSub struct {
	rdb     *redis.Client
	channel string
}

func NewSeatsPubSub(rdb *redis.Client) *SeatsPubSub {
	return &SeatsPubSub{
		rdb:     rdb,
		channel: ChannelSeatsChanged(),
	}
}

func (p *SeatsPubSub) Publish(ctx context.Context, ev events.Event) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	return p.rdb.Publish(ctx, p.channel, b).Err()
}

func (p *SeatsPubSub) Subscribe(ctx context.Context, handler func(ctx context.Context, ev events.Event)) error {
	sub := p.rdb.Subscribe(ctx, p.channel)
	defer sub.Close()

	ch := sub.Channel(redis.WithChannelSize(256))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var ev events.Event
			if err := json.Unmarshal([]byte(m.Payload), &ev); err == nil &&
				ev.SeatID != 0 {
				handler(ctx, ev)
			}
		}
	}
}
