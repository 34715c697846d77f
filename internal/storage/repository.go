package storage

import (
	"context"

	"github.com/terra-clan/intern-engine/internal/models"
)

// Repository defines the interface for engine persistence. Lookups return
// (nil, nil) when the record does not exist.
type Repository interface {
	// Users
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	UpdateUserProfile(ctx context.Context, u *models.User) error
	SetUserXP(ctx context.Context, userID string, totalXP int) error
	UpdateUserLastLogin(ctx context.Context, userID string) error

	// Tasks
	CreateTask(ctx context.Context, t *models.Task) error
	GetTask(ctx context.Context, id, userID string) (*models.Task, error)
	UpdateTaskStatus(ctx context.Context, id, userID string, status models.TaskStatus) error
	ListTasks(ctx context.Context, userID string, filters models.TaskFilters) ([]*models.Task, error)

	// CompleteTask persists all fields of the terminal transition
	// (submission, score, feedback, lists, status, completion timestamp)
	// and the owner's XP increment in a single transaction.
	CompleteTask(ctx context.Context, t *models.Task, xpEarned int) error

	// Health
	Ping(ctx context.Context) error
	Close() error
}
