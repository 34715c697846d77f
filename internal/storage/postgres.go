package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/terra-clan/intern-engine/internal/models"
)

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// PostgresConfig holds PostgreSQL connection configuration
type PostgresConfig struct {
	DSN          string
	MaxOpenConns int32
	MaxIdleConns int32
	MaxLifetime  time.Duration
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(ctx context.Context, cfg PostgresConfig) (*PostgresRepository, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		poolConfig.MaxConns = cfg.MaxOpenConns
	} else {
		poolConfig.MaxConns = 25 // default
	}

	if cfg.MaxIdleConns > 0 {
		poolConfig.MinConns = cfg.MaxIdleConns
	} else {
		poolConfig.MinConns = 5 // default
	}

	if cfg.MaxLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxLifetime
	} else {
		poolConfig.MaxConnLifetime = 30 * time.Minute
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

// Ping checks database connectivity
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the database connection pool
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// --- Users ---

// CreateUser inserts a new user record
func (r *PostgresRepository) CreateUser(ctx context.Context, u *models.User) error {
	query := `
		INSERT INTO users (id, email, hashed_password, name, role, internship_field, internship_level, total_xp, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.pool.Exec(ctx, query,
		u.ID,
		u.Email,
		u.HashedPassword,
		nullString(u.Name),
		u.Role,
		nullString(u.Field),
		nullString(u.Level),
		u.TotalXP,
		u.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByEmail retrieves a user by email address
func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getUser(ctx, "email", email)
}

// GetUserByID retrieves a user by ID
func (r *PostgresRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return r.getUser(ctx, "id", id)
}

func (r *PostgresRepository) getUser(ctx context.Context, field, value string) (*models.User, error) {
	query := fmt.Sprintf(`
		SELECT id, email, hashed_password, name, role, internship_field, internship_level, total_xp, created_at, last_login
		FROM users
		WHERE %s = $1
	`, field)

	var u models.User
	var name, internField, internLevel sql.NullString
	var lastLogin sql.NullTime

	err := r.pool.QueryRow(ctx, query, value).Scan(
		&u.ID,
		&u.Email,
		&u.HashedPassword,
		&name,
		&u.Role,
		&internField,
		&internLevel,
		&u.TotalXP,
		&u.CreatedAt,
		&lastLogin,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	u.Name = name.String
	u.Field = internField.String
	u.Level = internLevel.String

	if lastLogin.Valid {
		u.LastLogin = &lastLogin.Time
	}

	return &u, nil
}

// UpdateUserProfile updates the mutable profile fields
func (r *PostgresRepository) UpdateUserProfile(ctx context.Context, u *models.User) error {
	query := `
		UPDATE users
		SET name = $2, internship_field = $3, internship_level = $4
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		u.ID,
		nullString(u.Name),
		nullString(u.Field),
		nullString(u.Level),
	)

	if err != nil {
		return fmt.Errorf("failed to update user profile: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("user not found: %s", u.ID)
	}

	return nil
}

// SetUserXP overwrites the stored cumulative XP total
func (r *PostgresRepository) SetUserXP(ctx context.Context, userID string, totalXP int) error {
	query := `UPDATE users SET total_xp = $2 WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, userID, totalXP)
	if err != nil {
		return fmt.Errorf("failed to set user xp: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("user not found: %s", userID)
	}

	return nil
}

// UpdateUserLastLogin stamps the last_login column
func (r *PostgresRepository) UpdateUserLastLogin(ctx context.Context, userID string) error {
	query := `UPDATE users SET last_login = NOW() WHERE id = $1`

	_, err := r.pool.Exec(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}

	return nil
}

// --- Tasks ---

const taskColumns = `id, user_id, title, description, domain, difficulty, requirements, xp, status, due_days,
		submission, score, feedback, strengths, weaknesses, time_spent_minutes, created_at, updated_at, completed_at`

// CreateTask inserts a new task record
func (r *PostgresRepository) CreateTask(ctx context.Context, t *models.Task) error {
	requirementsJSON, err := json.Marshal(t.Requirements)
	if err != nil {
		return fmt.Errorf("failed to marshal requirements: %w", err)
	}

	query := `
		INSERT INTO tasks (id, user_id, title, description, domain, difficulty, requirements, xp, status, due_days, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err = r.pool.Exec(ctx, query,
		t.ID,
		t.UserID,
		t.Title,
		t.Description,
		t.Domain,
		t.Difficulty,
		requirementsJSON,
		t.XP,
		string(t.Status),
		t.DueDays,
		t.CreatedAt,
		t.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	return nil
}

// GetTask retrieves a task by ID scoped to its owner
func (r *PostgresRepository) GetTask(ctx context.Context, id, userID string) (*models.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE id = $1 AND user_id = $2
	`

	t, err := scanTask(r.pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	return t, nil
}

// UpdateTaskStatus changes the lifecycle state of a task
func (r *PostgresRepository) UpdateTaskStatus(ctx context.Context, id, userID string, status models.TaskStatus) error {
	query := `
		UPDATE tasks
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
	`

	result, err := r.pool.Exec(ctx, query, id, userID, string(status))
	if err != nil {
		return fmt.Errorf("failed to update task status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("task not found: %s", id)
	}

	return nil
}

// ListTasks returns the user's tasks matching filters, newest first
func (r *PostgresRepository) ListTasks(ctx context.Context, userID string, filters models.TaskFilters) ([]*models.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE user_id = $1
	`
	args := []interface{}{userID}
	argNum := 2

	if filters.Domain != "" {
		query += fmt.Sprintf(" AND domain = $%d", argNum)
		args = append(args, filters.Domain)
		argNum++
	}

	if filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, string(filters.Status))
		argNum++
	}

	if filters.ScoredOnly {
		query += " AND score IS NOT NULL"
	}

	query += " ORDER BY created_at DESC"

	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, filters.Limit)
		argNum++
	}

	if filters.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argNum)
		args = append(args, filters.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*models.Task

	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}

	return tasks, nil
}

// CompleteTask persists the terminal transition and the owner's XP
// increment in one transaction, so a task is never done without its XP
// being credited.
func (r *PostgresRepository) CompleteTask(ctx context.Context, t *models.Task, xpEarned int) error {
	strengthsJSON, err := json.Marshal(t.Strengths)
	if err != nil {
		return fmt.Errorf("failed to marshal strengths: %w", err)
	}

	weaknessesJSON, err := json.Marshal(t.Weaknesses)
	if err != nil {
		return fmt.Errorf("failed to marshal weaknesses: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE tasks
		SET submission = $3, score = $4, feedback = $5, strengths = $6, weaknesses = $7,
		    status = $8, time_spent_minutes = $9, completed_at = $10, updated_at = $10
		WHERE id = $1 AND user_id = $2
	`

	result, err := tx.Exec(ctx, query,
		t.ID,
		t.UserID,
		t.Submission,
		t.Score,
		nullString(t.Feedback),
		strengthsJSON,
		weaknessesJSON,
		string(t.Status),
		t.TimeSpentMin,
		t.CompletedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to complete task: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("task not found: %s", t.ID)
	}

	if xpEarned > 0 {
		_, err = tx.Exec(ctx, `UPDATE users SET total_xp = total_xp + $2 WHERE id = $1`, t.UserID, xpEarned)
		if err != nil {
			return fmt.Errorf("failed to credit xp: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit completion: %w", err)
	}

	return nil
}

// scanTask reads one task row. JSONB list columns that fail to
// unmarshal degrade to empty lists rather than failing the read.
func scanTask(row pgx.Row) (*models.Task, error) {
	var t models.Task
	var statusStr string
	var submission, feedback sql.NullString
	var score, timeSpent sql.NullInt64
	var completedAt sql.NullTime
	var requirementsJSON, strengthsJSON, weaknessesJSON []byte

	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.Title,
		&t.Description,
		&t.Domain,
		&t.Difficulty,
		&requirementsJSON,
		&t.XP,
		&statusStr,
		&t.DueDays,
		&submission,
		&score,
		&feedback,
		&strengthsJSON,
		&weaknessesJSON,
		&timeSpent,
		&t.CreatedAt,
		&t.UpdatedAt,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Status = models.TaskStatus(statusStr)
	t.Submission = submission.String
	t.Feedback = feedback.String

	if score.Valid {
		v := int(score.Int64)
		t.Score = &v
	}
	if timeSpent.Valid {
		v := int(timeSpent.Int64)
		t.TimeSpentMin = &v
	}
	if completedAt.Valid {
		t.CompletedAt = &completedAt.Time
	}

	t.Requirements = unmarshalList(requirementsJSON, "requirements", t.ID)
	t.Strengths = unmarshalList(strengthsJSON, "strengths", t.ID)
	t.Weaknesses = unmarshalList(weaknessesJSON, "weaknesses", t.ID)

	return &t, nil
}

func unmarshalList(data []byte, column, taskID string) []string {
	if len(data) == 0 {
		return []string{}
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		slog.Warn("corrupt list column, treating as empty",
			"column", column,
			"task_id", taskID,
			"error", err,
		)
		return []string{}
	}

	if list == nil {
		return []string{}
	}

	return list
}

// Helper functions for nullable values

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
