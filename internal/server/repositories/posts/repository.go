package posts

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophboard/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, post *models.Post) (*models.Post, error)
	GetByID(ctx context.Context, id string) (*models.Post, error)
	List(ctx context.Context) ([]*models.Post, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Post, error)
	// Update rewrites content of a post owned by ownerID and reports whether a
	// row matched.
	Update(ctx context.Context, id, ownerID, content string, updatedAt time.Time) (bool, error)
	Delete(ctx context.Context, id, ownerID string) (bool, error)
}
