package repository

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"taskboard/internal/models"

	_ "github.com/lib/pq"
	"github.com/ory/dockertest/v3"
	"github.com/stretchr/testify/require"
)

var testDB *sql.DB

// TestMain brings up a throwaway Postgres container for the whole package.
func TestMain(m *testing.M) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		log.Fatalf("Could not construct docker pool: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		log.Fatalf("Could not connect to docker: %v", err)
	}

	resource, err := pool.Run("postgres", "16-alpine", []string{
		"POSTGRES_USER=postgres",
		"POSTGRES_PASSWORD=secret",
		"POSTGRES_DB=taskboard_test",
	})
	if err != nil {
		log.Fatalf("Could not start postgres: %v", err)
	}
	// hard kill in case a test run never reaches Purge
	_ = resource.Expire(300)

	pool.MaxWait = 120 * time.Second
	if err := pool.Retry(func() error {
		var err error
		testDB, err = sql.Open("postgres", fmt.Sprintf(
			"host=localhost port=%s user=postgres password=secret dbname=taskboard_test sslmode=disable",
			resource.GetPort("5432/tcp")))
		if err != nil {
			return err
		}
		return testDB.Ping()
	}); err != nil {
		log.Fatalf("Could not connect to postgres: %v", err)
	}

	CreateTableIfNotExists(testDB)

	code := m.Run()

	if err := pool.Purge(resource); err != nil {
		log.Printf("Could not purge postgres: %v", err)
	}
	os.Exit(code)
}

var userSeq int64

// newTestUser inserts a user with the given role and returns it with its
// session.
func newTestUser(t *testing.T, role models.Role) (models.User, models.Session) {
	t.Helper()
	username := fmt.Sprintf("u%d_%d", atomic.AddInt64(&userSeq, 1), time.Now().UnixNano())
	user, err := CreateUser(testDB, username, "password123", role)
	require.NoError(t, err)
	return user, models.Session{UserID: user.ID, Role: user.Role}
}

// newTestTask inserts a task through CreateTask on behalf of a manager.
func newTestTask(t *testing.T, manager models.Session, assignedTo int, due time.Time) models.Task {
	t.Helper()
	task, err := CreateTask(testDB, manager, CreateTaskInput{
		Title:      "test task",
		DueDate:    due,
		Priority:   models.PriorityMedium,
		AssignedTo: assignedTo,
	})
	require.NoError(t, err)
	return task
}

func countRows(t *testing.T, table string) int {
	t.Helper()
	var n int
	require.NoError(t, testDB.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}
