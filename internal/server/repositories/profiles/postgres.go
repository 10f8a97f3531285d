package profiles

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

const columns = `id, email, username, avatar_color, avatar_image, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanProfile(s scanner) (*models.Profile, error) {
	p := &models.Profile{}
	if err := s.Scan(&p.ID, &p.Email, &p.Username, &p.AvatarColor, &p.AvatarImage, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Profile, error) {
	query := `SELECT ` + columns + ` FROM users WHERE id = $1`

	p, err := scanProfile(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

// Save upserts the profile. Nil patch fields keep the stored value, or the
// column default for a new row.
func (r *PostgresRepository) Save(ctx context.Context, id string, patch models.ProfilePatch) (*models.Profile, error) {
	query :=
		`INSERT INTO users (id, email, username, avatar_color, avatar_image)
		 VALUES ($1, COALESCE($2, ''), COALESCE($3, ''), COALESCE($4, '` + common.DefaultAvatarColor + `'), COALESCE($5, ''))
		 ON CONFLICT (id) DO UPDATE SET
		   email = COALESCE($2, users.email),
		   username = COALESCE($3, users.username),
		   avatar_color = COALESCE($4, users.avatar_color),
		   avatar_image = COALESCE($5, users.avatar_image),
		   updated_at = now()
		 RETURNING ` + columns

	p, err := scanProfile(r.db.QueryRowContext(ctx, query,
		id, patch.Email, patch.Username, patch.AvatarColor, patch.AvatarImage))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

// List returns all profiles, newest first.
func (r *PostgresRepository) List(ctx context.Context) ([]*models.Profile, error) {
	query := `SELECT ` + columns + ` FROM users ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Profile, 0)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

// Delete removes the profile. Deleting a missing profile is not an error.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
