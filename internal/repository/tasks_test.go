package repository

import (
	"testing"
	"time"

	"taskboard/internal/apperrors"
	"taskboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTaskRequiresManager(t *testing.T) {
	_, member := newTestUser(t, models.RoleUser)

	before := countRows(t, "tasks")
	_, err := CreateTask(testDB, member, CreateTaskInput{
		Title:      "not allowed",
		DueDate:    time.Now().Add(time.Hour),
		AssignedTo: member.UserID,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsAuthorization(err))
	assert.Equal(t, before, countRows(t, "tasks"), "failed create must not insert a row")
}

func TestCreateTaskValidation(t *testing.T) {
	_, manager := newTestUser(t, models.RoleManager)
	assignee, _ := newTestUser(t, models.RoleUser)

	_, err := CreateTask(testDB, manager, CreateTaskInput{
		Title:      "   ",
		DueDate:    time.Now().Add(time.Hour),
		AssignedTo: assignee.ID,
	})
	assert.True(t, apperrors.IsValidation(err), "blank title must fail validation")

	_, err = CreateTask(testDB, manager, CreateTaskInput{
		Title:      "orphan assignee",
		DueDate:    time.Now().Add(time.Hour),
		AssignedTo: 999999999,
	})
	assert.True(t, apperrors.IsValidation(err), "unknown assignee must fail validation")

	_, err = CreateTask(testDB, manager, CreateTaskInput{
		Title:      "bad priority",
		DueDate:    time.Now().Add(time.Hour),
		Priority:   "Urgent",
		AssignedTo: assignee.ID,
	})
	assert.True(t, apperrors.IsValidation(err), "unknown priority must fail validation")
}

func TestCreateTaskDefaults(t *testing.T) {
	_, manager := newTestUser(t, models.RoleManager)
	assignee, _ := newTestUser(t, models.RoleUser)

	task, err := CreateTask(testDB, manager, CreateTaskInput{
		Title:      "defaults",
		DueDate:    time.Now().Add(time.Hour),
		AssignedTo: assignee.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusPending, task.Status, "status is forced to Pending")
	assert.Equal(t, models.PriorityMedium, task.Priority)
	require.NotNil(t, task.CreatedBy)
	assert.Equal(t, manager.UserID, *task.CreatedBy)
}

func TestListTasksScoping(t *testing.T) {
	_, manager := newTestUser(t, models.RoleManager)
	userA, sessionA := newTestUser(t, models.RoleUser)
	userB, _ := newTestUser(t, models.RoleUser)

	due := time.Now().Add(48 * time.Hour)
	taskA1 := newTestTask(t, manager, userA.ID, due)
	taskA2 := newTestTask(t, manager, userA.ID, due)
	taskB := newTestTask(t, manager, userB.ID, due)

	// Non-privileged caller sees exactly their own assignments.
	views, err := ListTasks(testDB, sessionA)
	require.NoError(t, err)
	ids := map[int]bool{}
	for _, v := range views {
		assert.Equal(t, userA.ID, v.AssignedTo)
		ids[v.ID] = true
	}
	assert.True(t, ids[taskA1.ID])
	assert.True(t, ids[taskA2.ID])
	assert.False(t, ids[taskB.ID])

	// A manager sees every task in the store.
	views, err = ListTasks(testDB, manager)
	require.NoError(t, err)
	assert.Equal(t, countRows(t, "tasks"), len(views))
}

func TestListTasksOrdering(t *testing.T) {
	_, manager := newTestUser(t, models.RoleManager)
	user, session := newTestUser(t, models.RoleUser)

	base := time.Now().Add(100 * time.Hour)
	late := newTestTask(t, manager, user.ID, base.Add(2*time.Hour))
	early := newTestTask(t, manager, user.ID, base)
	tie := newTestTask(t, manager, user.ID, base)

	views, err := ListTasks(testDB, session)
	require.NoError(t, err)
	require.Len(t, views, 3)

	assert.Equal(t, early.ID, views[0].ID, "due date ascending")
	assert.Equal(t, tie.ID, views[1].ID, "id breaks the tie")
	assert.Equal(t, late.ID, views[2].ID)
}

func TestListTasksDerivedStatus(t *testing.T) {
	_, manager := newTestUser(t, models.RoleManager)
	user, session := newTestUser(t, models.RoleUser)

	overdue := newTestTask(t, manager, user.ID, time.Now().Add(-time.Hour))
	dueSoon := newTestTask(t, manager, user.ID, time.Now().Add(2*time.Hour))
	pending := newTestTask(t, manager, user.ID, time.Now().Add(72*time.Hour))

	views, err := ListTasks(testDB, session)
	require.NoError(t, err)

	byID := map[int]models.DerivedStatus{}
	for _, v := range views {
		byID[v.ID] = v.DerivedStatus
	}
	assert.Equal(t, models.DerivedOverdue, byID[overdue.ID])
	assert.Equal(t, models.DerivedDueSoon, byID[dueSoon.ID])
	assert.Equal(t, models.DerivedPending, byID[pending.ID])
}

func TestListOverdueAndDueWithin(t *testing.T) {
	_, manager := newTestUser(t, models.RoleManager)
	user, session := newTestUser(t, models.RoleUser)

	now := time.Now()
	overdue := newTestTask(t, manager, user.ID, now.Add(-time.Hour))
	dueSoon := newTestTask(t, manager, user.ID, now.Add(2*time.Hour))
	newTestTask(t, manager, user.ID, now.Add(72*time.Hour)) // outside both windows

	views, err := ListOverdue(testDB, session, now)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, overdue.ID, views[0].ID)
	assert.Equal(t, models.DerivedOverdue, views[0].DerivedStatus)

	views, err = ListDueWithin(testDB, session, now, models.DueSoonHorizon)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, dueSoon.ID, views[0].ID)

	// Completed tasks drop out of both windows.
	_, err = CompleteTask(testDB, session, overdue.ID, true)
	require.NoError(t, err)
	views, err = ListOverdue(testDB, session, now)
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestGetTaskVisibility(t *testing.T) {
	_, manager := newTestUser(t, models.RoleManager)
	user, session := newTestUser(t, models.RoleUser)
	_, other := newTestUser(t, models.RoleUser)

	task := newTestTask(t, manager, user.ID, time.Now().Add(time.Hour))

	_, err := GetTask(testDB, session, task.ID)
	assert.NoError(t, err, "assignee can view")

	_, err = GetTask(testDB, manager, task.ID)
	assert.NoError(t, err, "manager can view")

	_, err = GetTask(testDB, other, task.ID)
	assert.True(t, apperrors.IsAuthorization(err), "stranger cannot view")

	_, err = GetTask(testDB, manager, 999999999)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestUpdateTaskPartial(t *testing.T) {
	_, manager := newTestUser(t, models.RoleManager)
	user, _ := newTestUser(t, models.RoleUser)

	task := newTestTask(t, manager, user.ID, time.Now().Add(time.Hour))

	high := models.PriorityHigh
	updated, err := UpdateTask(testDB, manager, task.ID, UpdateTaskInput{Priority: &high})
	require.NoError(t, err)

	assert.Equal(t, models.PriorityHigh, updated.Priority)
	assert.Equal(t, task.Title, updated.Title, "untouched fields survive")
	assert.Equal(t, task.Description, updated.Description)
	assert.Equal(t, task.AssignedTo, updated.AssignedTo)
	assert.Equal(t, task.Status, updated.Status, "update never writes status")
}

func TestUpdateTaskAuthorization(t *testing.T) {
	_, manager := newTestUser(t, models.RoleManager)
	user, session := newTestUser(t, models.RoleUser)

	task := newTestTask(t, manager, user.ID, time.Now().Add(-time.Hour))

	high := models.PriorityHigh
	_, err := UpdateTask(testDB, session, task.ID, UpdateTaskInput{Priority: &high})
	require.Error(t, err)
	assert.True(t, apperrors.IsAuthorization(err), "assignee may not edit fields")

	got, err := GetTask(testDB, manager, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.Priority, got.Priority, "task unchanged after failed update")

	_, err = UpdateTask(testDB, manager, 999999999, UpdateTaskInput{Priority: &high})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestUpdateTaskValidation(t *testing.T) {
	_, manager := newTestUser(t, models.RoleManager)
	user, _ := newTestUser(t, models.RoleUser)

	task := newTestTask(t, manager, user.ID, time.Now().Add(time.Hour))

	blank := "   "
	_, err := UpdateTask(testDB, manager, task.ID, UpdateTaskInput{Title: &blank})
	assert.True(t, apperrors.IsValidation(err))

	ghost := 999999999
	_, err = UpdateTask(testDB, manager, task.ID, UpdateTaskInput{AssignedTo: &ghost})
	assert.True(t, apperrors.IsValidation(err))
}

func TestCompleteTaskByAssignee(t *testing.T) {
	_, manager := newTestUser(t, models.RoleManager)
	user, session := newTestUser(t, models.RoleUser)

	task := newTestTask(t, manager, user.ID, time.Now().Add(time.Hour))

	completed, err := CompleteTask(testDB, session, task.ID, false)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, completed.Status)

	// Completed is terminal, a second completion fails.
	_, err = CompleteTask(testDB, session, task.ID, false)
	assert.True(t, apperrors.IsValidation(err))
}

func TestCompleteTaskManagerPolicy(t *testing.T) {
	_, manager := newTestUser(t, models.RoleManager)
	user, _ := newTestUser(t, models.RoleUser)

	task := newTestTask(t, manager, user.ID, time.Now().Add(time.Hour))

	// Policy off: even a manager may not complete someone else's task.
	_, err := CompleteTask(testDB, manager, task.ID, false)
	assert.True(t, apperrors.IsAuthorization(err))

	// Policy on: the manager may.
	completed, err := CompleteTask(testDB, manager, task.ID, true)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, completed.Status)
}

func TestCompleteTaskByStranger(t *testing.T) {
	_, manager := newTestUser(t, models.RoleManager)
	user, _ := newTestUser(t, models.RoleUser)
	_, stranger := newTestUser(t, models.RoleUser)

	task := newTestTask(t, manager, user.ID, time.Now().Add(time.Hour))

	_, err := CompleteTask(testDB, stranger, task.ID, true)
	assert.True(t, apperrors.IsAuthorization(err))
}

func TestDeleteTaskCascades(t *testing.T) {
	_, manager := newTestUser(t, models.RoleManager)
	user, session := newTestUser(t, models.RoleUser)

	task := newTestTask(t, manager, user.ID, time.Now().Add(time.Hour))
	_, err := AddComment(testDB, session, task.ID, "will be cascaded")
	require.NoError(t, err)

	// Only managers may delete.
	err = DeleteTask(testDB, session, task.ID)
	assert.True(t, apperrors.IsAuthorization(err))

	require.NoError(t, DeleteTask(testDB, manager, task.ID))

	_, err = GetTask(testDB, manager, task.ID)
	assert.True(t, apperrors.IsNotFound(err))

	var n int
	require.NoError(t, testDB.QueryRow("SELECT COUNT(*) FROM comments WHERE task_id = $1", task.ID).Scan(&n))
	assert.Zero(t, n, "comments go with their task")

	assert.True(t, apperrors.IsNotFound(DeleteTask(testDB, manager, task.ID)))
}
