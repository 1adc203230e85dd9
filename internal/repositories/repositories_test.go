package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saxenaaman628/org-voting-system/internal/database"
	"github.com/saxenaaman628/org-voting-system/internal/models"
)

func setupRepos(t *testing.T) *Repositories {
	t.Helper()
	db, err := database.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	return New(db)
}

func createElection(t *testing.T, repos *Repositories, start, end, now time.Time) *models.Election {
	t.Helper()
	election, err := models.NewElection(models.ElectionParams{
		OrganizationID:  "org-1",
		Title:           "Budget vote",
		StartDate:       start,
		EndDate:         end,
		MaxVotesPerUser: 2,
		Options:         []models.OptionParams{{Text: "Yes"}, {Text: "No"}, {Text: "Abstain"}},
	}, now)
	require.NoError(t, err)
	require.NoError(t, repos.Elections.Create(context.Background(), election))
	return election
}

func ballot(election *models.Election, userID string, option int, index int) *models.Vote {
	at := time.Now().UTC()
	return &models.Vote{
		UserID:           userID,
		ElectionID:       election.ID,
		SelectedOptionID: election.Options[option].ID,
		BallotIndex:      index,
		VerificationHash: models.NewVerificationHash(userID, election.ID, at),
		CreatedAt:        at,
	}
}

func TestFindByIDLoadsOptionsInOrder(t *testing.T) {
	repos := setupRepos(t)
	now := time.Now().UTC()
	election := createElection(t, repos, now, now.Add(time.Hour), now)

	found, err := repos.Elections.FindByID(context.Background(), election.ID)
	require.NoError(t, err)
	require.Len(t, found.Options, 3)
	assert.Equal(t, "Yes", found.Options[0].Text)
	assert.Equal(t, "Abstain", found.Options[2].Text)

	_, err = repos.Elections.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	next, err := repos.Elections.NextOptionIndex(context.Background(), election.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, next)
}

func TestLedgerRejectsSecondBatchAndRepeatedOption(t *testing.T) {
	repos := setupRepos(t)
	ctx := context.Background()
	now := time.Now().UTC()
	election := createElection(t, repos, now, now.Add(time.Hour), now)

	require.NoError(t, repos.Votes.Insert(ctx, []*models.Vote{ballot(election, "u1", 0, 0)}))

	err := repos.Votes.Insert(ctx, []*models.Vote{ballot(election, "u1", 1, 0)})
	assert.ErrorIs(t, err, ErrDuplicate, "ballot index 0 already taken")

	err = repos.Votes.Insert(ctx, []*models.Vote{ballot(election, "u1", 0, 1)})
	assert.ErrorIs(t, err, ErrDuplicate, "same option twice")

	count, err := repos.Votes.CountForUser(ctx, election.ID, "u1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestTallyIncludesEmptyOptions(t *testing.T) {
	repos := setupRepos(t)
	ctx := context.Background()
	now := time.Now().UTC()
	election := createElection(t, repos, now, now.Add(time.Hour), now)

	require.NoError(t, repos.Votes.Insert(ctx, []*models.Vote{
		ballot(election, "u1", 0, 0),
		ballot(election, "u1", 2, 1),
		ballot(election, "u2", 0, 0),
	}))

	rows, err := repos.Votes.Tally(ctx, election.ID)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.EqualValues(t, 2, rows[0].Votes)
	assert.EqualValues(t, 0, rows[1].Votes)
	assert.EqualValues(t, 1, rows[2].Votes)
	assert.Equal(t, "No", rows[1].Text)
}

func TestSweepIsIdempotent(t *testing.T) {
	repos := setupRepos(t)
	ctx := context.Background()
	now := time.Now().UTC()
	created := now.Add(-48 * time.Hour)

	startsNow := createElection(t, repos, now.Add(-time.Hour), now.Add(time.Hour), created)
	ended := createElection(t, repos, now.Add(-3*time.Hour), now.Add(-time.Hour), created)
	later := createElection(t, repos, now.Add(time.Hour), now.Add(2*time.Hour), created)
	require.Equal(t, models.StatusScheduled, startsNow.Status)
	require.Equal(t, models.StatusScheduled, ended.Status)

	first, err := repos.Elections.Sweep(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, SweepResult{Activated: 1, Completed: 0, Expired: 1}, first)

	second, err := repos.Elections.Sweep(ctx, now)
	require.NoError(t, err)
	assert.Zero(t, second.Total())

	for id, want := range map[string]models.ElectionStatus{
		startsNow.ID: models.StatusActive,
		ended.ID:     models.StatusCompleted,
		later.ID:     models.StatusScheduled,
	} {
		e, err := repos.Elections.FindByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want, e.Status)
	}

	third, err := repos.Elections.Sweep(ctx, now.Add(90*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, SweepResult{Activated: 1, Completed: 1, Expired: 0}, third)
}

func TestVoterRegistry(t *testing.T) {
	repos := setupRepos(t)
	ctx := context.Background()
	now := time.Now().UTC()
	election := createElection(t, repos, now, now.Add(time.Hour), now)

	require.NoError(t, repos.Voters.Create(ctx, models.NewElectionVoter(election.ID, "u1", "admin", "", now)))
	require.NoError(t, repos.Voters.Create(ctx, models.NewElectionVoter(election.ID, "u2", "admin", "", now)))
	err := repos.Voters.Create(ctx, models.NewElectionVoter(election.ID, "u1", "admin", "", now))
	assert.ErrorIs(t, err, ErrDuplicate)

	marked, err := repos.Voters.MarkVoted(ctx, election.ID, "u1")
	require.NoError(t, err)
	assert.True(t, marked)
	marked, err = repos.Voters.MarkVoted(ctx, election.ID, "u1")
	require.NoError(t, err)
	assert.False(t, marked, "has_voted flips once")

	changed, err := repos.Voters.SetEligible(ctx, election.ID, "u2", false)
	require.NoError(t, err)
	assert.True(t, changed)

	counts, err := repos.Voters.Stats(ctx, election.ID)
	require.NoError(t, err)
	assert.Equal(t, VoterCounts{Total: 2, Voted: 1, Eligible: 1}, counts)

	voted := true
	list, err := repos.Voters.List(ctx, election.ID, &voted)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "u1", list[0].UserID)

	registered, err := repos.Voters.RegisteredUserIDs(ctx, election.ID, []string{"u1", "u3"})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"u1": true}, registered)
}

func TestPurgeRemovesOwnedRows(t *testing.T) {
	repos := setupRepos(t)
	ctx := context.Background()
	now := time.Now().UTC()
	election := createElection(t, repos, now, now.Add(time.Hour), now)

	require.NoError(t, repos.Votes.Insert(ctx, []*models.Vote{ballot(election, "u1", 0, 0)}))
	require.NoError(t, repos.Voters.Create(ctx, models.NewElectionVoter(election.ID, "u1", "admin", "", now)))

	require.NoError(t, repos.Elections.Purge(ctx, election.ID))

	_, err := repos.Elections.FindByID(ctx, election.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	count, err := repos.Votes.CountForElection(ctx, election.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	assert.ErrorIs(t, repos.Elections.Purge(ctx, election.ID), ErrNotFound)
}
