package messages

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophboard/internal/common"
	"github.com/dmitrijs2005/gophboard/internal/dbx"
	"github.com/dmitrijs2005/gophboard/internal/server/models"
)

type SQLRepository struct {
	db dbx.DBTX
}

func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) Create(ctx context.Context, msg *models.Message) (*models.Message, error) {
	query :=
		`INSERT INTO messages (id, content, user_id, created_at)
		 VALUES (?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, r.db.Rebind(query), msg.ID, msg.Content, msg.UserID, msg.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return msg, nil
}

func (r *SQLRepository) GetByID(ctx context.Context, id string) (*models.Message, error) {
	query :=
		`SELECT id, content, user_id, created_at FROM messages
		 WHERE id = ?`

	msg := &models.Message{}
	if err := r.db.GetContext(ctx, msg, r.db.Rebind(query), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return msg, nil
}

func (r *SQLRepository) ListRecent(ctx context.Context, limit int) ([]*models.Message, error) {
	query :=
		`SELECT id, content, user_id, created_at FROM (
			SELECT id, content, user_id, created_at FROM messages
			ORDER BY created_at DESC, id DESC
			LIMIT ?
		 ) recent
		 ORDER BY created_at ASC, id ASC`

	var result []*models.Message
	if err := r.db.SelectContext(ctx, &result, r.db.Rebind(query), limit); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
