package completions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/teamboard/internal/common"
	"github.com/dmitrijs2005/teamboard/internal/dbx"
	"github.com/dmitrijs2005/teamboard/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Completion, error) {
	query :=
		`SELECT id, user_id, task_id, completed, updated_at FROM user_tasks
		 WHERE id = $1
		 `
	c := &models.Completion{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.UserID, &c.TaskID, &c.Completed, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

// Upsert writes c under its deterministic id. A missing task yields
// common.ErrorNotFound.
func (r *PostgresRepository) Upsert(ctx context.Context, c *models.Completion) (*models.Completion, error) {
	c.ID = models.CompletionID(c.UserID, c.TaskID)

	query :=
		`INSERT INTO user_tasks (id, user_id, task_id, completed)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE SET completed = EXCLUDED.completed, updated_at = now()
		 RETURNING updated_at
		 `
	err := r.db.QueryRowContext(ctx, query, c.ID, c.UserID, c.TaskID, c.Completed).Scan(&c.UpdatedAt)
	if err != nil {
		if dbx.IsForeignKeyViolation(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.Completion, error) {
	query :=
		`SELECT id, user_id, task_id, completed, updated_at FROM user_tasks
		 WHERE user_id = $1
		 `
	return r.list(ctx, query, userID)
}

func (r *PostgresRepository) ListByTask(ctx context.Context, taskID string) ([]*models.Completion, error) {
	query :=
		`SELECT id, user_id, task_id, completed, updated_at FROM user_tasks
		 WHERE task_id = $1
		 `
	return r.list(ctx, query, taskID)
}

func (r *PostgresRepository) list(ctx context.Context, query string, arg any) ([]*models.Completion, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Completion, 0)
	for rows.Next() {
		c := &models.Completion{}
		if err := rows.Scan(&c.ID, &c.UserID, &c.TaskID, &c.Completed, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM user_tasks WHERE id = $1`, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
