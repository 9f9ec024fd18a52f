package repository

import (
	"database/sql"
	"log"

	"taskboard/internal/models"

	"golang.org/x/crypto/bcrypt"
)

// CreateTableIfNotExists builds the schema. Comments cascade with their
// task; the old dashboards left orphans behind on delete.
func CreateTableIfNotExists(db *sql.DB) {
	query := `
CREATE TABLE IF NOT EXISTS users (
    id SERIAL PRIMARY KEY,
    username VARCHAR(255) NOT NULL UNIQUE,
    password VARCHAR(255) NOT NULL,
    role VARCHAR(32) NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS tasks (
    id SERIAL PRIMARY KEY,
    title VARCHAR(255) NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    due_date TIMESTAMP NOT NULL,
    status VARCHAR(32) NOT NULL,
    priority VARCHAR(32) NOT NULL,
    category VARCHAR(255) NOT NULL DEFAULT '',
    assigned_to INT NOT NULL REFERENCES users (id),
    created_by INT REFERENCES users (id),
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS comments (
    id SERIAL PRIMARY KEY,
    task_id INT NOT NULL REFERENCES tasks (id) ON DELETE CASCADE,
    author_id INT NOT NULL REFERENCES users (id),
    body TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
    `

	if _, err := db.Exec(query); err != nil {
		log.Fatalf("Error creating tables: %v", err)
	}
}

// CreateAdminUser seeds the bootstrap admin account. Safe to call on every
// start: an existing username is left alone.
func CreateAdminUser(db *sql.DB, username, password string) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Error hashing admin password: %v", err)
	}

	query := `INSERT INTO users (username, password, role) VALUES ($1, $2, $3)
		ON CONFLICT (username) DO NOTHING`
	if _, err := db.Exec(query, username, string(hashedPassword), string(models.RoleAdmin)); err != nil {
		log.Fatalf("Error inserting admin user: %v", err)
	}
}

func DeleteAllTable(db *sql.DB) {
	query := `
    DROP TABLE IF EXISTS comments;
    DROP TABLE IF EXISTS tasks;
    DROP TABLE IF EXISTS users;
    `

	if _, err := db.Exec(query); err != nil {
		log.Fatalf("Error deleting tables: %v", err)
	}
}
