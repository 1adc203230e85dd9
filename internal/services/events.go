package services

import (
	"context"
	"log"
	"time"
)

// VoteCastEvent is published to an election's room after a cast commits.
type VoteCastEvent struct {
	ElectionID string    `json:"electionId" mapstructure:"electionId"`
	Timestamp  time.Time `json:"timestamp" mapstructure:"timestamp"`
}

// AuditEvent records who did what to which resource.
type AuditEvent struct {
	UserID       string    `json:"userId" mapstructure:"user_id"`
	Action       string    `json:"action" mapstructure:"action"`
	ResourceType string    `json:"resourceType" mapstructure:"resource_type"`
	ResourceID   string    `json:"resourceId" mapstructure:"resource_id"`
	Details      string    `json:"details,omitempty" mapstructure:"details"`
	OccurredAt   time.Time `json:"occurredAt" mapstructure:"occurred_at"`
}

const (
	ActionVoteCast          = "vote_cast"
	ActionElectionCreated   = "election_created"
	ActionElectionCancelled = "election_cancelled"
	ActionElectionDeleted   = "election_deleted"
	ActionVoterAdded        = "voter_added"
	ActionVoterRemoved      = "voter_removed"
	ActionVoterEligibility  = "voter_eligibility_changed"

	ResourceElection      = "election"
	ResourceElectionVoter = "election_voter"
)

type Notifier interface {
	NotifyVoteCast(ctx context.Context, event VoteCastEvent) error
}

type AuditSink interface {
	Record(ctx context.Context, event AuditEvent) error
}

type NopNotifier struct{}

func (NopNotifier) NotifyVoteCast(context.Context, VoteCastEvent) error { return nil }

type NopAuditSink struct{}

func (NopAuditSink) Record(context.Context, AuditEvent) error { return nil }

// Clock returns the current time. Services use it for every time decision.
type Clock func() time.Time

func SystemClock() time.Time {
	return time.Now().UTC()
}

// hooks delivers post-commit signals. Delivery is best effort: errors and
// panics are logged and never reach the caller, and a caller waits at most
// one timeout no matter how many signals it sends.
type hooks struct {
	notifier Notifier
	audit    AuditSink
	timeout  time.Duration
}

type hookCall struct {
	what string
	fn   func(context.Context) error
}

func newHooks(notifier Notifier, audit AuditSink, timeout time.Duration) hooks {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if audit == nil {
		audit = NopAuditSink{}
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return hooks{notifier: notifier, audit: audit, timeout: timeout}
}

func (h hooks) notifyCall(event VoteCastEvent) hookCall {
	return hookCall{
		what: "notify vote cast for election " + event.ElectionID,
		fn: func(ctx context.Context) error {
			return h.notifier.NotifyVoteCast(ctx, event)
		},
	}
}

func (h hooks) recordCall(event AuditEvent) hookCall {
	return hookCall{
		what: "audit " + event.Action + " on " + event.ResourceType + " " + event.ResourceID,
		fn: func(ctx context.Context) error {
			return h.audit.Record(ctx, event)
		},
	}
}

func (h hooks) record(ctx context.Context, event AuditEvent) {
	h.run(ctx, h.recordCall(event))
}

// run starts every call on its own goroutine and returns when all of them
// finish or the timeout passes. Calls still running then are abandoned with
// a cancelled context.
func (h hooks) run(ctx context.Context, calls ...hookCall) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.timeout)
	defer cancel()

	done := make(chan struct{}, len(calls))
	for _, call := range calls {
		go func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("hook panic (%s): %v", call.what, r)
				}
				done <- struct{}{}
			}()
			if err := call.fn(ctx); err != nil {
				log.Printf("hook failed (%s): %v", call.what, err)
			}
		}()
	}

	for range calls {
		select {
		case <-done:
		case <-ctx.Done():
			log.Printf("hooks still running after %s, abandoned", h.timeout)
			return
		}
	}
}
