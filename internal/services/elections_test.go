package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saxenaaman628/org-voting-system/internal/models"
)

func TestCreateElectionValidatesInput(t *testing.T) {
	f := newFixture(t)
	_, err := f.elections.CreateElection(context.Background(), models.ElectionParams{
		OrganizationID:  testOrg,
		Title:           "Bad window",
		StartDate:       baseTime,
		EndDate:         baseTime,
		MaxVotesPerUser: 1,
		Options:         []models.OptionParams{{Text: "a"}, {Text: "b"}},
	})
	var inputErr *InputError
	require.ErrorAs(t, err, &inputErr)
	assert.ErrorIs(t, err, models.ErrInvalidWindow)
}

func TestCreateElectionIsAudited(t *testing.T) {
	f := newFixture(t)
	election := f.openElection(t, electionSetup{})
	assert.Equal(t, []string{ActionElectionCreated}, f.audit.Actions())

	list, err := f.elections.ListElections(context.Background(), testOrg, nil)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, election.ID, list[0].ID)

	status := models.StatusCompleted
	list, err = f.elections.ListElections(context.Background(), testOrg, &status)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestAddOptionOnlyBeforeStart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	scheduled := f.openElection(t, electionSetup{start: baseTime.Add(time.Hour), end: baseTime.Add(2 * time.Hour)})

	option, err := f.elections.AddOption(ctx, testOrg, scheduled.ID, models.OptionParams{Text: "Option D", ImageURL: "https://cdn.example.com/d.png"})
	require.NoError(t, err)
	assert.Equal(t, 3, option.OrderIndex)

	_, err = f.elections.AddOption(ctx, testOrg, scheduled.ID, models.OptionParams{Text: ""})
	assert.ErrorIs(t, err, models.ErrOptionTextLength)

	active := f.openElection(t, electionSetup{})
	_, err = f.elections.AddOption(ctx, testOrg, active.ID, models.OptionParams{Text: "Late"})
	assert.ErrorIs(t, err, ErrOptionsLocked)
}

func TestOptionsAddedAfterCreation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	election, err := f.elections.CreateElection(ctx, models.ElectionParams{
		OrganizationID:  testOrg,
		Title:           "Empty ballot",
		StartDate:       baseTime.Add(time.Hour),
		EndDate:         baseTime.Add(2 * time.Hour),
		MaxVotesPerUser: 1,
	})
	require.NoError(t, err)
	assert.Empty(t, election.Options)

	for i, text := range []string{"First", "Second"} {
		option, err := f.elections.AddOption(ctx, testOrg, election.ID, models.OptionParams{Text: text})
		require.NoError(t, err)
		assert.Equal(t, i, option.OrderIndex)
	}

	stored, err := f.elections.GetElection(ctx, testOrg, election.ID)
	require.NoError(t, err)
	require.Len(t, stored.Options, 2)
	assert.Equal(t, "First", stored.Options[0].Text)
}

func TestCancelledElectionRejectsVotes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	election := f.openElection(t, electionSetup{})

	cancelled, err := f.elections.CancelElection(ctx, testOrg, election.ID, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)

	_, err = f.voting.CastVote(ctx, voteFor(election, "u1", 0))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{MsgElectionNotOpen}, verr.Reasons)

	_, err = f.elections.CancelElection(ctx, testOrg, election.ID, "admin-1")
	assert.ErrorIs(t, err, models.ErrAlreadyFinished)

	_, err = f.scheduler.Sweep(ctx)
	require.NoError(t, err)
	f.clock.Set(election.EndDate.Add(time.Hour))
	_, err = f.scheduler.Sweep(ctx)
	require.NoError(t, err)

	stored, err := f.elections.GetElection(ctx, testOrg, election.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, stored.Status)
	assert.Contains(t, f.audit.Actions(), ActionElectionCancelled)
}

func TestCancelCompletedElectionFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	election := f.openElection(t, electionSetup{})

	f.clock.Set(election.EndDate)
	_, err := f.elections.CancelElection(ctx, testOrg, election.ID, "admin-1")
	assert.ErrorIs(t, err, models.ErrAlreadyFinished)
}

func TestDeleteElectionRequiresPurgeWhenVoted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	election := f.openElection(t, electionSetup{registry: true})
	f.member(t, "u1", "NID-1")
	_, err := f.registry.AddVoter(ctx, testOrg, election.ID, "u1", "admin-1", "")
	require.NoError(t, err)
	_, err = f.voting.CastVote(ctx, voteFor(election, "u1", 0))
	require.NoError(t, err)

	assert.ErrorIs(t, f.elections.DeleteElection(ctx, testOrg, election.ID, "admin-1", false), ErrElectionHasVotes)
	require.NoError(t, f.elections.DeleteElection(ctx, testOrg, election.ID, "admin-1", true))

	_, err = f.elections.GetElection(ctx, testOrg, election.ID)
	assert.ErrorIs(t, err, ErrElectionNotFound)
	count, err := f.repos.Votes.CountForElection(ctx, election.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	empty := f.openElection(t, electionSetup{})
	require.NoError(t, f.elections.DeleteElection(ctx, testOrg, empty.ID, "admin-1", false))
	assert.ErrorIs(t, f.elections.DeleteElection(ctx, "other-org", empty.ID, "admin-1", false), ErrElectionNotFound)
}

func TestRegisterMember(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.member(t, "u1", "NID-1")

	err := f.elections.RegisterMember(ctx, &models.User{ID: "u2", OrganizationID: testOrg, NationalID: "NID-1"})
	var inputErr *InputError
	assert.ErrorAs(t, err, &inputErr)

	err = f.elections.RegisterMember(ctx, &models.User{ID: "u3", OrganizationID: testOrg, NationalID: "NID-3", Role: "root"})
	assert.ErrorAs(t, err, &inputErr)
}
