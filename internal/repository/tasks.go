package repository

import (
	"database/sql"
	"strings"
	"time"

	"taskboard/internal/apperrors"
	"taskboard/internal/models"

	"github.com/lib/pq"
)

// Every statement here is fixed and parameter-bound; filters never go
// through string assembly.
const taskColumns = "id, title, description, due_date, status, priority, category, assigned_to, created_by, created_at, updated_at"

func scanTask(row interface{ Scan(...interface{}) error }) (models.Task, error) {
	var (
		task      models.Task
		createdBy sql.NullInt64
	)
	err := row.Scan(&task.ID, &task.Title, &task.Description, &task.DueDate,
		&task.Status, &task.Priority, &task.Category, &task.AssignedTo,
		&createdBy, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return models.Task{}, err
	}
	if createdBy.Valid {
		v := int(createdBy.Int64)
		task.CreatedBy = &v
	}
	return task, nil
}

func collectTaskViews(rows *sql.Rows, now time.Time) ([]models.TaskView, error) {
	defer rows.Close()
	views := []models.TaskView{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		views = append(views, models.TaskView{
			Task:          task,
			DerivedStatus: models.Classify(task.Status, task.DueDate, now),
		})
	}
	return views, rows.Err()
}

type CreateTaskInput struct {
	Title       string
	Description string
	DueDate     time.Time
	Priority    models.Priority
	Category    string
	AssignedTo  int
}

// CreateTask inserts a new task with status Pending. Manage-only; the
// caller never chooses the initial status.
func CreateTask(db *sql.DB, s models.Session, in CreateTaskInput) (models.Task, error) {
	if !s.CanManage() {
		return models.Task{}, apperrors.Authorization("only managers may create tasks")
	}
	if strings.TrimSpace(in.Title) == "" {
		return models.Task{}, apperrors.Validation("title must not be empty")
	}
	if in.DueDate.IsZero() {
		return models.Task{}, apperrors.Validation("due date is required")
	}
	if in.Priority == "" {
		in.Priority = models.PriorityMedium
	}
	if !models.ValidPriority(in.Priority) {
		return models.Task{}, apperrors.Validation("invalid priority %q", in.Priority)
	}
	exists, err := userExists(db, in.AssignedTo)
	if err != nil {
		return models.Task{}, err
	}
	if !exists {
		return models.Task{}, apperrors.Validation("assignee %d does not exist", in.AssignedTo)
	}

	row := db.QueryRow(
		`INSERT INTO tasks (title, description, due_date, status, priority, category, assigned_to, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING `+taskColumns,
		strings.TrimSpace(in.Title), in.Description, in.DueDate,
		string(models.StatusPending), string(in.Priority), in.Category,
		in.AssignedTo, s.UserID,
	)
	task, err := scanTask(row)
	if err != nil {
		// 23503 = foreign_key_violation, the assignee vanished between
		// the pre-check and the insert
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return models.Task{}, apperrors.Validation("assignee %d does not exist", in.AssignedTo)
		}
		return models.Task{}, err
	}
	return task, nil
}

// GetTask fetches a single task with its derived status. Managers see any
// task; everyone else only their own.
func GetTask(db *sql.DB, s models.Session, id int) (models.TaskView, error) {
	row := db.QueryRow("SELECT "+taskColumns+" FROM tasks WHERE id = $1", id)
	task, err := scanTask(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.TaskView{}, apperrors.NotFound("task", id)
		}
		return models.TaskView{}, err
	}
	if !s.CanManage() && !s.Owns(task.AssignedTo) {
		return models.TaskView{}, apperrors.Authorization("not allowed to view task %d", id)
	}
	return models.TaskView{
		Task:          task,
		DerivedStatus: models.Classify(task.Status, task.DueDate, time.Now()),
	}, nil
}

// ListTasks returns every task for a manager, otherwise only the caller's
// assignments. Due date ascending, id as tiebreak. Classification happens
// fresh on every call and is never cached.
func ListTasks(db *sql.DB, s models.Session) ([]models.TaskView, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if s.CanManage() {
		rows, err = db.Query("SELECT " + taskColumns + " FROM tasks ORDER BY due_date, id")
	} else {
		rows, err = db.Query("SELECT "+taskColumns+" FROM tasks WHERE assigned_to = $1 ORDER BY due_date, id", s.UserID)
	}
	if err != nil {
		return nil, err
	}
	return collectTaskViews(rows, time.Now())
}

// ListOverdue returns pending tasks whose due date has passed, scoped like
// ListTasks.
func ListOverdue(db *sql.DB, s models.Session, now time.Time) ([]models.TaskView, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if s.CanManage() {
		rows, err = db.Query(
			"SELECT "+taskColumns+" FROM tasks WHERE status = $1 AND due_date < $2 ORDER BY due_date, id",
			string(models.StatusPending), now)
	} else {
		rows, err = db.Query(
			"SELECT "+taskColumns+" FROM tasks WHERE status = $1 AND due_date < $2 AND assigned_to = $3 ORDER BY due_date, id",
			string(models.StatusPending), now, s.UserID)
	}
	if err != nil {
		return nil, err
	}
	return collectTaskViews(rows, now)
}

// ListDueWithin returns pending tasks due between now and now+horizon,
// scoped like ListTasks.
func ListDueWithin(db *sql.DB, s models.Session, now time.Time, horizon time.Duration) ([]models.TaskView, error) {
	until := now.Add(horizon)
	var (
		rows *sql.Rows
		err  error
	)
	if s.CanManage() {
		rows, err = db.Query(
			"SELECT "+taskColumns+" FROM tasks WHERE status = $1 AND due_date >= $2 AND due_date <= $3 ORDER BY due_date, id",
			string(models.StatusPending), now, until)
	} else {
		rows, err = db.Query(
			"SELECT "+taskColumns+" FROM tasks WHERE status = $1 AND due_date >= $2 AND due_date <= $3 AND assigned_to = $4 ORDER BY due_date, id",
			string(models.StatusPending), now, until, s.UserID)
	}
	if err != nil {
		return nil, err
	}
	return collectTaskViews(rows, now)
}

// UpdateTaskInput carries a partial update; nil fields are left untouched.
// Status is deliberately absent: the only transition is CompleteTask.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	DueDate     *time.Time
	Priority    *models.Priority
	Category    *string
	AssignedTo  *int
}

// UpdateTask applies a partial update. Manage-only.
func UpdateTask(db *sql.DB, s models.Session, id int, in UpdateTaskInput) (models.Task, error) {
	var assignedTo int
	err := db.QueryRow("SELECT assigned_to FROM tasks WHERE id = $1", id).Scan(&assignedTo)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Task{}, apperrors.NotFound("task", id)
		}
		return models.Task{}, err
	}
	if !s.CanManage() {
		return models.Task{}, apperrors.Authorization("only managers may edit tasks")
	}

	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		return models.Task{}, apperrors.Validation("title must not be empty")
	}
	if in.Priority != nil && !models.ValidPriority(*in.Priority) {
		return models.Task{}, apperrors.Validation("invalid priority %q", *in.Priority)
	}
	if in.AssignedTo != nil {
		exists, err := userExists(db, *in.AssignedTo)
		if err != nil {
			return models.Task{}, err
		}
		if !exists {
			return models.Task{}, apperrors.Validation("assignee %d does not exist", *in.AssignedTo)
		}
	}

	var priority *string
	if in.Priority != nil {
		p := string(*in.Priority)
		priority = &p
	}

	// nil pointers reach Postgres as NULL, so COALESCE keeps the stored
	// value for every omitted field. One statement, one atomic write.
	row := db.QueryRow(
		`UPDATE tasks SET
			title = COALESCE($1, title),
			description = COALESCE($2, description),
			due_date = COALESCE($3, due_date),
			priority = COALESCE($4, priority),
			category = COALESCE($5, category),
			assigned_to = COALESCE($6, assigned_to),
			updated_at = CURRENT_TIMESTAMP
		 WHERE id = $7
		 RETURNING `+taskColumns,
		in.Title, in.Description, in.DueDate, priority, in.Category, in.AssignedTo, id,
	)
	return scanTask(row)
}

// CompleteTask performs the single lifecycle transition Pending->Completed.
// Allowed for the assignee, and for managers when allowManagerComplete is
// set. Completed is terminal; there is no reopen.
func CompleteTask(db *sql.DB, s models.Session, id int, allowManagerComplete bool) (models.Task, error) {
	var (
		assignedTo int
		status     string
	)
	err := db.QueryRow("SELECT assigned_to, status FROM tasks WHERE id = $1", id).Scan(&assignedTo, &status)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Task{}, apperrors.NotFound("task", id)
		}
		return models.Task{}, err
	}

	if !s.Owns(assignedTo) && !(allowManagerComplete && s.CanManage()) {
		return models.Task{}, apperrors.Authorization("only the assignee may complete task %d", id)
	}
	if models.Status(status) == models.StatusCompleted {
		return models.Task{}, apperrors.Validation("task %d is already completed", id)
	}

	row := db.QueryRow(
		`UPDATE tasks SET status = $1, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $2 AND status = $3
		 RETURNING `+taskColumns,
		string(models.StatusCompleted), id, string(models.StatusPending),
	)
	task, err := scanTask(row)
	if err != nil {
		// Raced with a concurrent completion
		if err == sql.ErrNoRows {
			return models.Task{}, apperrors.Validation("task %d is already completed", id)
		}
		return models.Task{}, err
	}
	return task, nil
}

// DeleteTask removes a task and, through the schema cascade, its comments.
// Manage-only. The delete runs in a transaction so the task and its
// comments go together or not at all.
func DeleteTask(db *sql.DB, s models.Session, id int) error {
	var exists bool
	if err := db.QueryRow("SELECT EXISTS (SELECT 1 FROM tasks WHERE id = $1)", id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return apperrors.NotFound("task", id)
	}
	if !s.CanManage() {
		return apperrors.Authorization("only managers may delete tasks")
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM comments WHERE task_id = $1", id); err != nil {
		tx.Rollback()
		return err
	}
	res, err := tx.Exec("DELETE FROM tasks WHERE id = $1", id)
	if err != nil {
		tx.Rollback()
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		tx.Rollback()
		return apperrors.NotFound("task", id)
	}
	return tx.Commit()
}
