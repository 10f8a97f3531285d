package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/teamboard/internal/common"
	"github.com/dmitrijs2005/teamboard/internal/server/changefeed"
	"github.com/dmitrijs2005/teamboard/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddTask(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin := e.signUp(t, adminEmail)
	ana := e.signUp(t, "ana@team.io")
	due := time.Date(2026, 3, 14, 17, 30, 0, 0, time.UTC)

	_, err := e.tasks.Add(ctx, ana, "Quarterly report", due)
	assert.ErrorIs(t, err, common.ErrForbidden)

	_, err = e.tasks.Add(ctx, admin, "  ", due)
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = e.tasks.Add(ctx, admin, "Quarterly report", time.Time{})
	assert.ErrorIs(t, err, common.ErrValidation)

	task, err := e.tasks.Add(ctx, admin, "Quarterly report", due)
	require.NoError(t, err)
	assert.Equal(t, "Quarterly report", task.Title)
	assert.Equal(t, admin.UserID, task.CreatedBy)
	assert.Equal(t, 0, task.DueDate.Hour())
	assert.Equal(t, 14, task.DueDate.Day())
	assert.Equal(t, []string{changefeed.TopicTasks}, e.feed.published())

	got, err := e.tasks.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.Title, got.Title)
}

func TestListedAdminCanAddTask(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin := e.signUp(t, adminEmail)
	lead := e.signUp(t, "lead@team.io")

	_, err := e.lists.Add(ctx, admin, models.AdminEmails, "lead@team.io")
	require.NoError(t, err)

	_, err = e.tasks.Add(ctx, lead, "Retro", time.Now())
	assert.NoError(t, err)
}

func TestSetCompletion(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin := e.signUp(t, adminEmail)
	ana := e.signUp(t, "ana@team.io")

	task, err := e.tasks.Add(ctx, admin, "Retro", time.Now())
	require.NoError(t, err)

	_, err = e.tasks.SetCompletion(ctx, ana, "8d0b7f6e-55a4-4bb6-9d2a-0c6f0a3a1d11", true)
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.Empty(t, e.store.completions)

	c, err := e.tasks.SetCompletion(ctx, ana, task.ID, true)
	require.NoError(t, err)
	assert.Equal(t, models.CompletionID(ana.UserID, task.ID), c.ID)
	assert.True(t, c.Completed)

	c, err = e.tasks.SetCompletion(ctx, ana, task.ID, false)
	require.NoError(t, err)
	assert.False(t, c.Completed)
	assert.Len(t, e.store.completions, 1)

	assert.Contains(t, e.feed.published(), changefeed.CompletionsTopic(ana.UserID))
}

func TestListCompletions(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin := e.signUp(t, adminEmail)
	ana := e.signUp(t, "ana@team.io")
	bo := e.signUp(t, "bo@team.io")

	task, err := e.tasks.Add(ctx, admin, "Retro", time.Now())
	require.NoError(t, err)
	_, err = e.tasks.SetCompletion(ctx, ana, task.ID, true)
	require.NoError(t, err)
	_, err = e.tasks.SetCompletion(ctx, bo, task.ID, true)
	require.NoError(t, err)

	own, err := e.tasks.ListCompletions(ctx, ana, "", "")
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, ana.UserID, own[0].UserID)

	_, err = e.tasks.ListCompletions(ctx, ana, bo.UserID, "")
	assert.ErrorIs(t, err, common.ErrForbidden)

	_, err = e.tasks.ListCompletions(ctx, ana, "", task.ID)
	assert.ErrorIs(t, err, common.ErrForbidden)

	all, err := e.tasks.ListCompletions(ctx, admin, "", task.ID)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	other, err := e.tasks.ListCompletions(ctx, admin, bo.UserID, "")
	require.NoError(t, err)
	assert.Len(t, other, 1)
}

func TestDeleteCompletion(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin := e.signUp(t, adminEmail)
	ana := e.signUp(t, "ana@team.io")
	bo := e.signUp(t, "bo@team.io")

	task, err := e.tasks.Add(ctx, admin, "Retro", time.Now())
	require.NoError(t, err)
	c, err := e.tasks.SetCompletion(ctx, ana, task.ID, true)
	require.NoError(t, err)

	assert.ErrorIs(t, e.tasks.DeleteCompletion(ctx, bo, c.ID), common.ErrForbidden)
	require.NoError(t, e.tasks.DeleteCompletion(ctx, ana, c.ID))
	assert.ErrorIs(t, e.tasks.DeleteCompletion(ctx, ana, c.ID), common.ErrorNotFound)

	c, err = e.tasks.SetCompletion(ctx, ana, task.ID, true)
	require.NoError(t, err)
	require.NoError(t, e.tasks.DeleteCompletion(ctx, admin, c.ID))
	assert.Empty(t, e.store.completions)
}
