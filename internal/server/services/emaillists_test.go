package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/teamboard/internal/common"
	"github.com/dmitrijs2005/teamboard/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmailLists_AdminOnly(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	ana := e.signUp(t, "ana@team.io")

	_, err := e.lists.List(ctx, ana, models.AllowedEmails)
	assert.ErrorIs(t, err, common.ErrForbidden)
	_, err = e.lists.Add(ctx, ana, models.AllowedEmails, "bo@team.io")
	assert.ErrorIs(t, err, common.ErrForbidden)
	assert.ErrorIs(t, e.lists.Remove(ctx, ana, models.AllowedEmails, "ana@team.io"), common.ErrForbidden)
}

func TestEmailLists_AddListRemove(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin := e.signUp(t, adminEmail)

	_, err := e.lists.Add(ctx, admin, models.AllowedEmails, "not an email")
	assert.ErrorIs(t, err, common.ErrInvalidEmail)

	entry, err := e.lists.Add(ctx, admin, models.AllowedEmails, " Bo@Team.io")
	require.NoError(t, err)
	assert.Equal(t, "bo@team.io", entry.Email)

	_, err = e.lists.Add(ctx, admin, models.AllowedEmails, "bo@team.io")
	assert.ErrorIs(t, err, common.ErrAlreadyExists)

	entries, err := e.lists.List(ctx, admin, models.AllowedEmails)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	require.NoError(t, e.lists.Remove(ctx, admin, models.AllowedEmails, "BO@team.io"))
	assert.ErrorIs(t, e.lists.Remove(ctx, admin, models.AllowedEmails, "bo@team.io"), common.ErrorNotFound)
}

func TestEmailLists_ProtectedAdmin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin := e.signUp(t, adminEmail)

	_, err := e.lists.Add(ctx, admin, models.AdminEmails, adminEmail)
	require.NoError(t, err)

	err = e.lists.Remove(ctx, admin, models.AdminEmails, "ADMIN@teamboard.example")
	assert.ErrorIs(t, err, common.ErrProtected)

	// The allow-list has no protected entry.
	_, err = e.lists.Add(ctx, admin, models.AllowedEmails, adminEmail)
	require.NoError(t, err)
	assert.NoError(t, e.lists.Remove(ctx, admin, models.AllowedEmails, adminEmail))
}

func TestEmailLists_IsListed(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin := e.signUp(t, adminEmail)
	ana := e.signUp(t, "ana@team.io")

	ok, err := e.lists.IsListed(ctx, ana, models.AllowedEmails, "ana@team.io")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = e.lists.IsListed(ctx, ana, models.AdminEmails, "Ana@team.io")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = e.lists.IsListed(ctx, ana, models.AllowedEmails, "bo@team.io")
	assert.ErrorIs(t, err, common.ErrForbidden)

	ok, err = e.lists.IsListed(ctx, admin, models.AdminEmails, adminEmail)
	require.NoError(t, err)
	assert.True(t, ok, "configured administrators count as listed")

	ok, err = e.lists.IsListed(ctx, admin, models.AllowedEmails, "bo@team.io")
	require.NoError(t, err)
	assert.False(t, ok)
}
