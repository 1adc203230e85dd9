package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saxenaaman628/org-voting-system/internal/models"
	"github.com/saxenaaman628/org-voting-system/internal/repositories"
)

func TestSweepActivatesLaggingElection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// created two hours ago, so it was stored as scheduled
	f.clock.Set(baseTime.Add(-2 * time.Hour))
	election := f.openElection(t, electionSetup{})
	require.Equal(t, models.StatusScheduled, election.Status)
	f.clock.Set(baseTime)

	res, err := f.voting.ValidateVote(ctx, voteFor(election, "u1", 0))
	require.NoError(t, err)
	assert.Equal(t, []string{MsgElectionNotOpen}, res.Errors, "not open until the sweep runs")

	swept, err := f.scheduler.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, repositories.SweepResult{Activated: 1}, swept)

	stored, err := f.elections.GetElection(ctx, testOrg, election.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, stored.Status)

	_, err = f.voting.CastVote(ctx, voteFor(election, "u1", 0))
	require.NoError(t, err)
}

func TestSweepStatusMatchesClock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.clock.Set(baseTime.Add(-24 * time.Hour))
	windows := [][2]time.Duration{
		{-3 * time.Hour, -2 * time.Hour},
		{-time.Hour, time.Hour},
		{time.Hour, 2 * time.Hour},
		{-time.Hour, 0},
	}
	var ids []string
	for _, w := range windows {
		e := f.openElection(t, electionSetup{start: baseTime.Add(w[0]), end: baseTime.Add(w[1])})
		ids = append(ids, e.ID)
	}
	cancelled := f.openElection(t, electionSetup{start: baseTime.Add(-time.Hour), end: baseTime.Add(time.Hour)})
	_, err := f.elections.CancelElection(ctx, testOrg, cancelled.ID, "admin-1")
	require.NoError(t, err)
	ids = append(ids, cancelled.ID)

	for _, at := range []time.Time{baseTime, baseTime.Add(90 * time.Minute), baseTime.Add(3 * time.Hour)} {
		f.clock.Set(at)
		_, err := f.scheduler.Sweep(ctx)
		require.NoError(t, err)

		again, err := f.scheduler.Sweep(ctx)
		require.NoError(t, err)
		assert.Zero(t, again.Total(), "second sweep at %s must not change rows", at)

		for _, id := range ids {
			e, err := f.elections.GetElection(ctx, testOrg, id)
			require.NoError(t, err)
			assert.True(t, e.ConsistentAt(at), "election %s is %s at %s", e.Title, e.Status, at)
		}
	}

	e, err := f.elections.GetElection(ctx, testOrg, cancelled.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, e.Status, "cancelled is never overwritten")
}

func TestSchedulerRunStopsOnCancel(t *testing.T) {
	f := newFixture(t)
	f.clock.Set(baseTime.Add(-2 * time.Hour))
	election := f.openElection(t, electionSetup{})
	f.clock.Set(baseTime)

	scheduler := NewScheduler(f.repos, 10*time.Millisecond, f.opts)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		scheduler.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		e, err := f.repos.Elections.FindByID(context.Background(), election.ID)
		return err == nil && e.Status == models.StatusActive
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}
