package repository

import (
	"testing"
	"time"

	"taskboard/internal/apperrors"
	"taskboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddCommentValidation(t *testing.T) {
	_, manager := newTestUser(t, models.RoleManager)
	user, session := newTestUser(t, models.RoleUser)

	task := newTestTask(t, manager, user.ID, time.Now().Add(time.Hour))

	before := countRows(t, "comments")
	for _, body := range []string{"", "   ", "\n\t "} {
		_, err := AddComment(testDB, session, task.ID, body)
		assert.True(t, apperrors.IsValidation(err), "body %q must fail validation", body)
	}
	assert.Equal(t, before, countRows(t, "comments"), "failed comments must not insert rows")

	_, err := AddComment(testDB, session, 999999999, "ghost task")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestAddCommentAuthorization(t *testing.T) {
	_, manager := newTestUser(t, models.RoleManager)
	user, session := newTestUser(t, models.RoleUser)
	_, stranger := newTestUser(t, models.RoleUser)

	task := newTestTask(t, manager, user.ID, time.Now().Add(time.Hour))

	_, err := AddComment(testDB, session, task.ID, "by the assignee")
	assert.NoError(t, err)

	_, err = AddComment(testDB, manager, task.ID, "by a manager")
	assert.NoError(t, err)

	_, err = AddComment(testDB, stranger, task.ID, "by a stranger")
	assert.True(t, apperrors.IsAuthorization(err))
}

func TestListCommentsNewestFirst(t *testing.T) {
	_, manager := newTestUser(t, models.RoleManager)
	user, session := newTestUser(t, models.RoleUser)

	task := newTestTask(t, manager, user.ID, time.Now().Add(time.Hour))

	first, err := AddComment(testDB, session, task.ID, "first")
	require.NoError(t, err)
	second, err := AddComment(testDB, session, task.ID, "second")
	require.NoError(t, err)
	third, err := AddComment(testDB, session, task.ID, "  trimmed  ")
	require.NoError(t, err)
	assert.Equal(t, "trimmed", third.Body)

	comments, err := ListComments(testDB, session, task.ID)
	require.NoError(t, err)
	require.Len(t, comments, 3)

	assert.Equal(t, third.ID, comments[0].ID)
	assert.Equal(t, second.ID, comments[1].ID)
	assert.Equal(t, first.ID, comments[2].ID)

	for _, c := range comments {
		assert.Equal(t, user.ID, c.AuthorID)
		assert.Equal(t, task.ID, c.TaskID)
		assert.False(t, c.CreatedAt.IsZero())
	}
}

func TestListCommentsVisibility(t *testing.T) {
	_, manager := newTestUser(t, models.RoleManager)
	user, session := newTestUser(t, models.RoleUser)
	_, stranger := newTestUser(t, models.RoleUser)

	task := newTestTask(t, manager, user.ID, time.Now().Add(time.Hour))
	_, err := AddComment(testDB, session, task.ID, "visible")
	require.NoError(t, err)

	_, err = ListComments(testDB, stranger, task.ID)
	assert.True(t, apperrors.IsAuthorization(err))

	_, err = ListComments(testDB, manager, 999999999)
	assert.True(t, apperrors.IsNotFound(err))
}
