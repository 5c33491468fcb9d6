package gql

import (
	"context"

	"github.com/dmitrijs2005/gophboard/internal/server/models"
	"github.com/dmitrijs2005/gophboard/internal/server/services"
)

// UserService is the subset of services.UserService the API needs.
type UserService interface {
	Register(ctx context.Context, username, password string) (*services.AuthPayload, error)
	Login(ctx context.Context, username, password string) (*services.AuthPayload, error)
	ResolveCaller(ctx context.Context, header string) *models.User
	ResolveToken(ctx context.Context, token string) *models.User
	Get(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
}

type PostService interface {
	List(ctx context.Context) ([]*models.Post, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Post, error)
	Get(ctx context.Context, id string) (*models.Post, error)
	Create(ctx context.Context, caller *models.User, content string) (*models.Post, error)
	Update(ctx context.Context, caller *models.User, id, content string) (*models.Post, error)
	Delete(ctx context.Context, caller *models.User, id string) (bool, error)
}

type MessageService interface {
	List(ctx context.Context, limit int) ([]*models.Message, error)
	Send(ctx context.Context, caller *models.User, content string) (*models.Message, error)
	Subscribe(ctx context.Context) <-chan *models.Message
}

var (
	_ UserService    = (*services.UserService)(nil)
	_ PostService    = (*services.PostService)(nil)
	_ MessageService = (*services.MessageService)(nil)
)
