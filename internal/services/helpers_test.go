package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/saxenaaman628/org-voting-system/internal/database"
	"github.com/saxenaaman628/org-voting-system/internal/models"
	"github.com/saxenaaman628/org-voting-system/internal/repositories"
)

const testOrg = "org-1"

var baseTime = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

// fakeClock is a settable clock; steps, when set, are returned one per call
// before falling back to now.
type fakeClock struct {
	mu    sync.Mutex
	now   time.Time
	steps []time.Time
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.steps) > 0 {
		t := c.steps[0]
		c.steps = c.steps[1:]
		return t
	}
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *fakeClock) Queue(times ...time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.steps = append(c.steps, times...)
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []VoteCastEvent
	err    error
}

func (n *recordingNotifier) NotifyVoteCast(_ context.Context, event VoteCastEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return n.err
}

func (n *recordingNotifier) Events() []VoteCastEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]VoteCastEvent(nil), n.events...)
}

type recordingAudit struct {
	mu     sync.Mutex
	events []AuditEvent
}

func (a *recordingAudit) Record(_ context.Context, event AuditEvent) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, event)
	return nil
}

func (a *recordingAudit) Actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.events))
	for _, e := range a.events {
		out = append(out, e.Action)
	}
	return out
}

type panickingAudit struct{}

func (panickingAudit) Record(context.Context, AuditEvent) error { panic("audit backend exploded") }

var errHubDown = errors.New("hub down")

// staleLedger reports no prior ballots, as a read racing a concurrent
// commit would.
type staleLedger struct {
	repositories.VoteRepository
}

func (staleLedger) CountForUser(context.Context, string, string) (int64, error) {
	return 0, nil
}

// stuckNotifier ignores its context and blocks until release is closed.
type stuckNotifier struct {
	release chan struct{}
}

func (n stuckNotifier) NotifyVoteCast(context.Context, VoteCastEvent) error {
	<-n.release
	return nil
}

type fixture struct {
	repos     *repositories.Repositories
	clock     *fakeClock
	notifier  *recordingNotifier
	audit     *recordingAudit
	opts      Options
	voting    *VotingService
	elections *ElectionService
	registry  *RegistryService
	tally     *TallyService
	scheduler *Scheduler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	f := &fixture{
		repos:    repositories.New(db),
		clock:    newFakeClock(baseTime),
		notifier: &recordingNotifier{},
		audit:    &recordingAudit{},
	}
	f.opts = Options{Clock: f.clock.Now, Notifier: f.notifier, Audit: f.audit, HookTimeout: time.Second}
	f.rebuild()
	return f
}

func (f *fixture) rebuild() {
	f.voting = NewVotingService(f.repos, f.opts)
	f.elections = NewElectionService(f.repos, f.opts)
	f.registry = NewRegistryService(f.repos, f.opts)
	f.tally = NewTallyService(f.repos)
	f.scheduler = NewScheduler(f.repos, time.Minute, f.opts)
}

type electionSetup struct {
	start, end time.Time
	maxVotes   int
	registry   bool
	options    []string
}

func (f *fixture) openElection(t *testing.T, setup electionSetup) *models.Election {
	t.Helper()
	if setup.start.IsZero() {
		setup.start = baseTime.Add(-time.Hour)
	}
	if setup.end.IsZero() {
		setup.end = baseTime.Add(time.Hour)
	}
	if setup.maxVotes == 0 {
		setup.maxVotes = 1
	}
	if setup.options == nil {
		setup.options = []string{"Option A", "Option B", "Option C"}
	}

	options := make([]models.OptionParams, 0, len(setup.options))
	for _, text := range setup.options {
		options = append(options, models.OptionParams{Text: text})
	}

	election, err := f.elections.CreateElection(context.Background(), models.ElectionParams{
		OrganizationID:        testOrg,
		Title:                 "Council election",
		StartDate:             setup.start,
		EndDate:               setup.end,
		MaxVotesPerUser:       setup.maxVotes,
		RequiresVoterRegistry: setup.registry,
		CreatedBy:             "admin-1",
		Options:               options,
	})
	require.NoError(t, err)
	return election
}

func (f *fixture) member(t *testing.T, id, nationalID string) *models.User {
	t.Helper()
	user := &models.User{ID: id, OrganizationID: testOrg, NationalID: nationalID, Name: id}
	require.NoError(t, f.elections.RegisterMember(context.Background(), user))
	return user
}

func voteFor(election *models.Election, userID string, options ...int) VoteRequest {
	ids := make([]string, 0, len(options))
	for _, i := range options {
		ids = append(ids, election.Options[i].ID)
	}
	return VoteRequest{
		ElectionID:     election.ID,
		OptionIDs:      ids,
		UserID:         userID,
		OrganizationID: testOrg,
		IPAddress:      "10.0.0.1",
		UserAgent:      "test-agent",
	}
}
