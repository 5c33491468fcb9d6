package messages

import (
	"context"

	"github.com/dmitrijs2005/gophboard/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, msg *models.Message) (*models.Message, error)
	GetByID(ctx context.Context, id string) (*models.Message, error)
	// ListRecent returns the newest limit messages in chronological order.
	ListRecent(ctx context.Context, limit int) ([]*models.Message, error)
}
