package redishandler

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/saxenaaman628/org-voting-system/internal/services"
)

const roomPrefix = "election:"

func RoomChannel(electionID string) string {
	return roomPrefix + electionID
}

// Room publishes vote notifications to one pub/sub channel per election.
type Room struct {
	rdb *redis.Client
}

func NewRoom(rdb *redis.Client) *Room {
	return &Room{rdb: rdb}
}

var _ services.Notifier = (*Room)(nil)

func (r *Room) NotifyVoteCast(ctx context.Context, event services.VoteCastEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return r.rdb.Publish(ctx, RoomChannel(event.ElectionID), payload).Err()
}

// Subscribe joins an election's room. The returned channel is closed when
// ctx is done or the subscription drops.
func (r *Room) Subscribe(ctx context.Context, electionID string) (<-chan services.VoteCastEvent, error) {
	sub := r.rdb.Subscribe(ctx, RoomChannel(electionID))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("subscribe to %s: %w", RoomChannel(electionID), err)
	}

	events := make(chan services.VoteCastEvent)
	go func() {
		defer close(events)
		defer sub.Close()

		messages := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				var event services.VoteCastEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					log.Printf("room %s: bad payload: %v", msg.Channel, err)
					continue
				}
				select {
				case events <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return events, nil
}
