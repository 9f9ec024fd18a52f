package repository

import (
	"database/sql"
	"strings"

	"taskboard/internal/apperrors"
	"taskboard/internal/models"
)

// AddComment appends a comment to a task the caller can see. Comments are
// immutable once written; the timestamp is server-assigned.
func AddComment(db *sql.DB, s models.Session, taskID int, body string) (models.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return models.Comment{}, apperrors.Validation("comment body must not be empty")
	}

	var assignedTo int
	err := db.QueryRow("SELECT assigned_to FROM tasks WHERE id = $1", taskID).Scan(&assignedTo)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Comment{}, apperrors.NotFound("task", taskID)
		}
		return models.Comment{}, err
	}
	if !s.CanManage() && !s.Owns(assignedTo) {
		return models.Comment{}, apperrors.Authorization("not allowed to comment on task %d", taskID)
	}

	var comment models.Comment
	err = db.QueryRow(
		`INSERT INTO comments (task_id, author_id, body) VALUES ($1, $2, $3)
		 RETURNING id, task_id, author_id, body, created_at`,
		taskID, s.UserID, body,
	).Scan(&comment.ID, &comment.TaskID, &comment.AuthorID, &comment.Body, &comment.CreatedAt)
	if err != nil {
		return models.Comment{}, err
	}
	return comment, nil
}

// ListComments returns a task's comments newest first, id as tiebreak for
// rows sharing a timestamp. No pagination.
func ListComments(db *sql.DB, s models.Session, taskID int) ([]models.Comment, error) {
	var assignedTo int
	err := db.QueryRow("SELECT assigned_to FROM tasks WHERE id = $1", taskID).Scan(&assignedTo)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NotFound("task", taskID)
		}
		return nil, err
	}
	if !s.CanManage() && !s.Owns(assignedTo) {
		return nil, apperrors.Authorization("not allowed to view comments on task %d", taskID)
	}

	rows, err := db.Query(
		`SELECT id, task_id, author_id, body, created_at
		 FROM comments WHERE task_id = $1
		 ORDER BY created_at DESC, id DESC`,
		taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []models.Comment{}
	for rows.Next() {
		var comment models.Comment
		if err := rows.Scan(&comment.ID, &comment.TaskID, &comment.AuthorID, &comment.Body, &comment.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, comment)
	}
	return comments, rows.Err()
}
