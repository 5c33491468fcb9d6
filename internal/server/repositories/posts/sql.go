package posts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophboard/internal/common"
	"github.com/dmitrijs2005/gophboard/internal/dbx"
	"github.com/dmitrijs2005/gophboard/internal/server/models"
)

const selectColumns = `SELECT id, content, user_id, created_at, updated_at FROM posts`

type SQLRepository struct {
	db dbx.DBTX
}

func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) Create(ctx context.Context, post *models.Post) (*models.Post, error) {
	query :=
		`INSERT INTO posts (id, content, user_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, r.db.Rebind(query),
		post.ID, post.Content, post.UserID, post.CreatedAt, post.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return post, nil
}

func (r *SQLRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	post := &models.Post{}
	err := r.db.GetContext(ctx, post, r.db.Rebind(selectColumns+` WHERE id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return post, nil
}

// List returns every post, newest first.
func (r *SQLRepository) List(ctx context.Context) ([]*models.Post, error) {
	var result []*models.Post
	err := r.db.SelectContext(ctx, &result, selectColumns+` ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *SQLRepository) ListByUser(ctx context.Context, userID string) ([]*models.Post, error) {
	var result []*models.Post
	query := selectColumns + ` WHERE user_id = ? ORDER BY created_at DESC, id DESC`
	if err := r.db.SelectContext(ctx, &result, r.db.Rebind(query), userID); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *SQLRepository) Update(ctx context.Context, id, ownerID, content string, updatedAt time.Time) (bool, error) {
	query :=
		`UPDATE posts SET content = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`

	res, err := r.db.ExecContext(ctx, r.db.Rebind(query), content, updatedAt, id, ownerID)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return affected(res)
}

func (r *SQLRepository) Delete(ctx context.Context, id, ownerID string) (bool, error) {
	query := `DELETE FROM posts WHERE id = ? AND user_id = ?`

	res, err := r.db.ExecContext(ctx, r.db.Rebind(query), id, ownerID)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return affected(res)
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}
