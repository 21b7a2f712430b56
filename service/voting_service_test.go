package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"votapp-backend/models"
)

func TestCreateVoting(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	admin := ts.newUser(t, models.RoleAdmin)
	voting, err := ts.votings.Create(ctx, models.CreateVotingInput{
		Title:       "  What should we name the service?  ",
		Description: "naming is hard",
		Options:     []string{" Alpha ", "Beta", "Gamma"},
	}, admin.ID)
	require.NoError(t, err)

	assert.Equal(t, "What should we name the service?", voting.Title)
	assert.Len(t, voting.Code, 6)
	assert.Equal(t, strings.ToUpper(voting.Code), voting.Code)
	assert.True(t, voting.IsActive)
	assert.Nil(t, voting.ClosedAt)

	// Option texts come back trimmed, in the submitted order.
	require.Len(t, voting.Options, 3)
	assert.Equal(t, "Alpha", voting.Options[0].Text)
	assert.Equal(t, "Beta", voting.Options[1].Text)
	assert.Equal(t, "Gamma", voting.Options[2].Text)
}

func TestCreateVoting_Validation(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()
	admin := ts.newUser(t, models.RoleAdmin)

	tests := []struct {
		name  string
		input models.CreateVotingInput
	}{
		{"short title", models.CreateVotingInput{Title: "Hi?", Options: []string{"A", "B"}}},
		{"long title", models.CreateVotingInput{Title: strings.Repeat("q", 201), Options: []string{"A", "B"}}},
		{"long description", models.CreateVotingInput{
			Title: "A perfectly fine title", Description: strings.Repeat("d", 501), Options: []string{"A", "B"}}},
		{"one option", models.CreateVotingInput{Title: "A perfectly fine title", Options: []string{"A"}}},
		{"options collapse to one", models.CreateVotingInput{Title: "A perfectly fine title", Options: []string{"A", "  "}}},
		{"duplicate after trim", models.CreateVotingInput{Title: "A perfectly fine title", Options: []string{"A", " A "}}},
		{"eleven options", models.CreateVotingInput{Title: "A perfectly fine title", Options: []string{
			"1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11"}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ts.votings.Create(ctx, tc.input, admin.ID)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestVotingCodes_Unique(t *testing.T) {
	ts := newTestServices(t)
	admin := ts.newUser(t, models.RoleAdmin)

	seen := make(map[string]bool, 200)
	for i := 0; i < 200; i++ {
		voting := ts.newVoting(t, admin.ID)
		require.False(t, seen[voting.Code], "code %s issued twice", voting.Code)
		seen[voting.Code] = true
	}
}

func TestUpdateVoting(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	admin := ts.newUser(t, models.RoleAdmin)
	voting := ts.newVoting(t, admin.ID)

	title := "An updated question title?"
	inactive := false
	updated, err := ts.votings.Update(ctx, voting.ID, models.UpdateVotingInput{
		Title:    &title,
		IsActive: &inactive,
	}, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.False(t, updated.IsActive)

	// Omitted fields keep their values.
	desc := "only the description this time"
	updated, err = ts.votings.Update(ctx, voting.ID, models.UpdateVotingInput{
		Description: &desc,
	}, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.Equal(t, desc, updated.Description)
}

// ClosedAt and IsActive must move together no matter which operation flips
// the flag.
func TestUpdateVoting_ClosedAtFollowsIsActive(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	admin := ts.newUser(t, models.RoleAdmin)
	voting := ts.newVoting(t, admin.ID)

	// Closing through an update records the close time.
	inactive := false
	updated, err := ts.votings.Update(ctx, voting.ID, models.UpdateVotingInput{IsActive: &inactive}, admin.ID)
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
	require.NotNil(t, updated.ClosedAt)

	// Reopening clears the stale close time.
	active := true
	updated, err = ts.votings.Update(ctx, voting.ID, models.UpdateVotingInput{IsActive: &active}, admin.ID)
	require.NoError(t, err)
	assert.True(t, updated.IsActive)
	assert.Nil(t, updated.ClosedAt)

	// Repeating the current state is a no-op for ClosedAt.
	updated, err = ts.votings.Update(ctx, voting.ID, models.UpdateVotingInput{IsActive: &active}, admin.ID)
	require.NoError(t, err)
	assert.Nil(t, updated.ClosedAt)

	// A voting closed through update rejects casts like one closed via Close.
	_, err = ts.votings.Update(ctx, voting.ID, models.UpdateVotingInput{IsActive: &inactive}, admin.ID)
	require.NoError(t, err)
	voter := ts.newUser(t, models.RoleVoter)
	_, err = ts.votes.CastVote(ctx, voting.ID, voting.Options[0].ID, voter.ID)
	assert.ErrorIs(t, err, ErrVotingClosed)
}

func TestUpdateVoting_Authorization(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	creator := ts.newUser(t, models.RoleAdmin)
	other := ts.newUser(t, models.RoleAdmin)
	voting := ts.newVoting(t, creator.ID)

	title := "Someone else's edit?"
	_, err := ts.votings.Update(ctx, voting.ID, models.UpdateVotingInput{Title: &title}, other.ID)
	assert.ErrorIs(t, err, ErrNotCreator)

	_, err = ts.votings.Update(ctx, "missing", models.UpdateVotingInput{Title: &title}, creator.ID)
	assert.ErrorIs(t, err, ErrVotingNotFound)
}

func TestCloseVoting(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	admin := ts.newUser(t, models.RoleAdmin)
	voting := ts.newVoting(t, admin.ID)

	closed, err := ts.votings.Close(ctx, voting.ID, admin.ID)
	require.NoError(t, err)
	assert.False(t, closed.IsActive)
	require.NotNil(t, closed.ClosedAt)

	_, err = ts.votings.Close(ctx, voting.ID, admin.ID)
	assert.ErrorIs(t, err, ErrVotingAlreadyClosed)
}

func TestDeleteVoting(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	creator := ts.newUser(t, models.RoleAdmin)
	other := ts.newUser(t, models.RoleAdmin)
	voter := ts.newUser(t, models.RoleVoter)
	voting := ts.newVoting(t, creator.ID)

	_, err := ts.votes.CastVote(ctx, voting.ID, voting.Options[0].ID, voter.ID)
	require.NoError(t, err)

	err = ts.votings.Delete(ctx, voting.ID, other.ID)
	assert.ErrorIs(t, err, ErrNotCreator)

	require.NoError(t, ts.votings.Delete(ctx, voting.ID, creator.ID))

	_, err = ts.votings.GetByID(ctx, voting.ID)
	assert.ErrorIs(t, err, ErrVotingNotFound)

	// Votes and options go with the voting.
	var votes, options int64
	ts.db.Model(&models.Vote{}).Where("voting_id = ?", voting.ID).Count(&votes)
	ts.db.Model(&models.Option{}).Where("voting_id = ?", voting.ID).Count(&options)
	assert.Zero(t, votes)
	assert.Zero(t, options)

	err = ts.votings.Delete(ctx, voting.ID, creator.ID)
	assert.ErrorIs(t, err, ErrVotingNotFound)
}

func TestGetByCode_CaseInsensitive(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	admin := ts.newUser(t, models.RoleAdmin)
	voting := ts.newVoting(t, admin.ID)

	found, err := ts.votings.GetByCode(ctx, strings.ToLower(voting.Code))
	require.NoError(t, err)
	assert.Equal(t, voting.ID, found.ID)
}
