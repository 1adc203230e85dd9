package redishandler

import (
	"context"
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/redis/go-redis/v9"

	"github.com/saxenaaman628/org-voting-system/internal/services"
)

const AuditStream = "audit.events"

// AuditLog appends audit events to a redis stream.
type AuditLog struct {
	rdb    *redis.Client
	stream string
}

func NewAuditLog(rdb *redis.Client) *AuditLog {
	return &AuditLog{rdb: rdb, stream: AuditStream}
}

var _ services.AuditSink = (*AuditLog)(nil)

func (a *AuditLog) Record(ctx context.Context, event services.AuditEvent) error {
	_, err := a.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: a.stream,
		Values: map[string]interface{}{
			"user_id":       event.UserID,
			"action":        event.Action,
			"resource_type": event.ResourceType,
			"resource_id":   event.ResourceID,
			"details":       event.Details,
			"occurred_at":   event.OccurredAt.UTC().Format(time.RFC3339Nano),
		},
	}).Result()
	return err
}

// ReadAuditEvents returns up to count events starting at the oldest entry.
// Querying the audit log belongs to the audit service; this reader is for
// tooling and tests against the stream.
func (a *AuditLog) ReadAuditEvents(ctx context.Context, count int64) ([]services.AuditEvent, error) {
	entries, err := a.rdb.XRangeN(ctx, a.stream, "-", "+", count).Result()
	if err != nil {
		return nil, err
	}

	events := make([]services.AuditEvent, 0, len(entries))
	for _, entry := range entries {
		var event services.AuditEvent
		if err := decodeAudit(entry.Values, &event); err != nil {
			return nil, fmt.Errorf("audit entry %s: %w", entry.ID, err)
		}
		events = append(events, event)
	}
	return events, nil
}

func decodeAudit(values map[string]interface{}, out *services.AuditEvent) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
		Result:     out,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(values)
}
