package emaillists

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/teamboard/internal/common"
	"github.com/dmitrijs2005/teamboard/internal/dbx"
	"github.com/dmitrijs2005/teamboard/internal/server/models"
)

// PostgresRepository serves one list. The table name comes from the
// models.EmailList constants, never from callers.
type PostgresRepository struct {
	db    dbx.DBTX
	table string
}

func NewPostgresRepository(db dbx.DBTX, list models.EmailList) *PostgresRepository {
	return &PostgresRepository{db: db, table: string(list)}
}

// List returns the entries newest first.
func (r *PostgresRepository) List(ctx context.Context) ([]*models.EmailEntry, error) {
	query := fmt.Sprintf(`SELECT id, email, created_at FROM %s ORDER BY created_at DESC`, r.table)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.EmailEntry, 0)
	for rows.Next() {
		e := &models.EmailEntry{}
		if err := rows.Scan(&e.ID, &e.Email, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Add(ctx context.Context, entry *models.EmailEntry) (*models.EmailEntry, error) {
	query := fmt.Sprintf(`INSERT INTO %s (id, email) VALUES ($1, $2) RETURNING created_at`, r.table)

	if err := r.db.QueryRowContext(ctx, query, entry.ID, entry.Email).Scan(&entry.CreatedAt); err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return entry, nil
}

func (r *PostgresRepository) Remove(ctx context.Context, email string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE email = $1`, r.table)

	res, err := r.db.ExecContext(ctx, query, email)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) Contains(ctx context.Context, email string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE email = $1)`, r.table)

	var found bool
	if err := r.db.QueryRowContext(ctx, query, email).Scan(&found); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return found, nil
}
