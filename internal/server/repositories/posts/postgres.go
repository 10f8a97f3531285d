package posts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/teamboard/internal/common"
	"github.com/dmitrijs2005/teamboard/internal/dbx"
	"github.com/dmitrijs2005/teamboard/internal/server/models"
	"github.com/jackc/pgx/v5/pgtype"
)

type PostgresRepository struct {
	db    dbx.DBTX
	types *pgtype.Map
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db, types: pgtype.NewMap()}
}

const columns = `id, user_id, username, avatar_color, avatar_image, content, created_at, likes, liked_by, is_reply, reply_to_id`

type scanner interface {
	Scan(dest ...any) error
}

func (r *PostgresRepository) scanPost(s scanner) (*models.Post, error) {
	p := &models.Post{}
	var replyTo sql.NullString
	err := s.Scan(&p.ID, &p.UserID, &p.Username, &p.AvatarColor, &p.AvatarImage, &p.Content,
		&p.CreatedAt, &p.Likes, r.types.SQLScanner(&p.LikedBy), &p.IsReply, &replyTo)
	if err != nil {
		return nil, err
	}
	p.ReplyToID = replyTo.String
	if p.LikedBy == nil {
		p.LikedBy = []string{}
	}
	return p, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Create inserts post with empty likes. A reply whose parent does not exist
// yields common.ErrorNotFound.
func (r *PostgresRepository) Create(ctx context.Context, post *models.Post) (*models.Post, error) {
	query :=
		`INSERT INTO posts (id, user_id, username, avatar_color, avatar_image, content, is_reply, reply_to_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		post.ID, post.UserID, post.Username, post.AvatarColor, post.AvatarImage, post.Content,
		post.IsReply, nullable(post.ReplyToID)).Scan(&post.CreatedAt)
	if err != nil {
		if dbx.IsForeignKeyViolation(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	post.Likes = 0
	post.LikedBy = []string{}
	return post, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Post, error) {
	query := `SELECT ` + columns + ` FROM posts WHERE id = $1`

	p, err := r.scanPost(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

// List returns top-level posts and author listings newest first, and the
// replies of one parent oldest first.
func (r *PostgresRepository) List(ctx context.Context, filter models.PostFilter) ([]*models.Post, error) {
	var (
		query string
		args  []any
	)

	switch {
	case filter.ReplyToID != "":
		query = `SELECT ` + columns + ` FROM posts WHERE reply_to_id = $1 ORDER BY created_at ASC`
		args = append(args, filter.ReplyToID)
	case filter.UserID != "":
		query = `SELECT ` + columns + ` FROM posts WHERE user_id = $1 ORDER BY created_at DESC`
		args = append(args, filter.UserID)
	case filter.TopLevel:
		query = `SELECT ` + columns + ` FROM posts WHERE NOT is_reply ORDER BY created_at DESC`
	default:
		query = `SELECT ` + columns + ` FROM posts ORDER BY created_at DESC`
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Post, 0)
	for rows.Next() {
		p, err := r.scanPost(rows)
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

// Like increments the counter and appends userID in a single statement, so
// concurrent likes never lose updates.
func (r *PostgresRepository) Like(ctx context.Context, id, userID string) (*models.Post, error) {
	query :=
		`UPDATE posts SET likes = likes + 1, liked_by = array_append(liked_by, $2)
		 WHERE id = $1 AND NOT ($2 = ANY(liked_by))
		 RETURNING ` + columns

	p, err := r.scanPost(r.db.QueryRowContext(ctx, query, id, userID))
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("db error: %w", err)
	}

	// nothing updated: either the post is gone or the like already exists
	if _, err := r.Get(ctx, id); err != nil {
		return nil, err
	}
	return nil, common.ErrAlreadyLiked
}

// UpdateSnapshot rewrites the author snapshot fields of one post.
func (r *PostgresRepository) UpdateSnapshot(ctx context.Context, id string, patch models.ProfilePatch) error {
	query :=
		`UPDATE posts SET
		   username = COALESCE($2, username),
		   avatar_color = COALESCE($3, avatar_color),
		   avatar_image = COALESCE($4, avatar_image)
		 WHERE id = $1
		 `
	res, err := r.db.ExecContext(ctx, query, id, patch.Username, patch.AvatarColor, patch.AvatarImage)
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

// Delete removes the post. Replies go with it through the foreign key.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
