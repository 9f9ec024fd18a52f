package repository

import (
	"database/sql"
	"strings"

	"taskboard/internal/apperrors"
	"taskboard/internal/models"

	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
)

// CreateUser provisions an account with a bcrypt-hashed password.
func CreateUser(db *sql.DB, username, password string, role models.Role) (models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return models.User{}, apperrors.Validation("username must not be empty")
	}
	if len(password) < 6 {
		return models.User{}, apperrors.Validation("password must be at least 6 characters")
	}
	if _, err := models.ParseRole(string(role)); err != nil {
		return models.User{}, apperrors.Validation("invalid role %q", role)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}

	var user models.User
	err = db.QueryRow(
		`INSERT INTO users (username, password, role) VALUES ($1, $2, $3)
		 RETURNING id, username, role, created_at`,
		username, string(hashedPassword), string(role),
	).Scan(&user.ID, &user.Username, &user.Role, &user.CreatedAt)
	if err != nil {
		// 23505 = unique_violation
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return models.User{}, apperrors.Validation("username already exists")
		}
		return models.User{}, err
	}
	return user, nil
}

// Authenticate checks credentials and returns the matching session.
// Unknown username and wrong password both yield the same failure so the
// response cannot be used to enumerate accounts.
func Authenticate(db *sql.DB, username, password string) (models.Session, error) {
	var (
		id   int
		hash string
		role string
	)
	err := db.QueryRow(
		"SELECT id, password, role FROM users WHERE username = $1",
		username).Scan(&id, &hash, &role)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Session{}, apperrors.Validation("invalid credentials")
		}
		return models.Session{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return models.Session{}, apperrors.Validation("invalid credentials")
	}

	parsedRole, err := models.ParseRole(role)
	if err != nil {
		return models.Session{}, err
	}
	return models.Session{UserID: id, Role: parsedRole}, nil
}

// GetUser fetches a single user. Visible to managers and to the user
// themselves.
func GetUser(db *sql.DB, s models.Session, id int) (models.User, error) {
	if !s.CanManage() && s.UserID != id {
		return models.User{}, apperrors.Authorization("not allowed to view user %d", id)
	}
	var user models.User
	err := db.QueryRow(
		"SELECT id, username, role, created_at FROM users WHERE id = $1",
		id).Scan(&user.ID, &user.Username, &user.Role, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, apperrors.NotFound("user", id)
		}
		return models.User{}, err
	}
	return user, nil
}

// ListUsers returns every account; manage-only.
func ListUsers(db *sql.DB, s models.Session) ([]models.User, error) {
	if !s.CanManage() {
		return nil, apperrors.Authorization("only managers may list users")
	}
	rows, err := db.Query("SELECT id, username, role, created_at FROM users ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Username, &user.Role, &user.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// userExists is the assignee pre-check used by task writes.
func userExists(db *sql.DB, id int) (bool, error) {
	var exists bool
	err := db.QueryRow("SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)", id).Scan(&exists)
	return exists, err
}
