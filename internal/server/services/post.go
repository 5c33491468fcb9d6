package services

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/gophboard/internal/common"
	"github.com/dmitrijs2005/gophboard/internal/dbx"
	"github.com/dmitrijs2005/gophboard/internal/server/auth"
	"github.com/dmitrijs2005/gophboard/internal/server/models"
	"github.com/dmitrijs2005/gophboard/internal/server/repositories/repomanager"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const (
	msgPostEmpty    = "Post content cannot be empty"
	msgPostNotFound = "Post not found"
)

var (
	actionCreatePost = auth.Action{Verb: "create", Resource: "post"}
	actionUpdatePost = auth.Action{Verb: "update", Resource: "post"}
	actionDeletePost = auth.Action{Verb: "delete", Resource: "post"}
)

// PostService serves reads to anyone and restricts writes to the owner.
// Writes are checked in order: caller, content, existence, ownership.
type PostService struct {
	options
	db          *sqlx.DB
	repomanager repomanager.RepositoryManager
}

func NewPostService(db *sqlx.DB, m repomanager.RepositoryManager, opts ...Option) *PostService {
	return &PostService{
		options:     buildOptions("posts", opts),
		db:          db,
		repomanager: m,
	}
}

// List returns all posts, newest first.
func (s *PostService) List(ctx context.Context) ([]*models.Post, error) {
	posts, err := s.repomanager.Posts(s.db).List(ctx)
	if err != nil {
		return nil, s.publicError(ctx, "list posts", err)
	}
	return posts, nil
}

func (s *PostService) ListByUser(ctx context.Context, userID string) ([]*models.Post, error) {
	posts, err := s.repomanager.Posts(s.db).ListByUser(ctx, userID)
	if err != nil {
		return nil, s.publicError(ctx, "list posts by user", err)
	}
	return posts, nil
}

// Get returns the post or nil when it does not exist.
func (s *PostService) Get(ctx context.Context, id string) (*models.Post, error) {
	post, err := s.repomanager.Posts(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		return nil, s.publicError(ctx, "get post", err)
	}
	return post, nil
}

func (s *PostService) Create(ctx context.Context, caller *models.User, content string) (*models.Post, error) {
	if err := auth.RequireCaller(caller, actionCreatePost); err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, common.Validation(msgPostEmpty)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, s.publicError(ctx, "generate id", err)
	}
	now := s.now()

	var created *models.Post
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Posts(tx)
		post := &models.Post{ID: id.String(), Content: content, UserID: caller.ID, CreatedAt: now, UpdatedAt: now}
		if _, err := repo.Create(ctx, post); err != nil {
			return err
		}
		created, err = repo.GetByID(ctx, post.ID)
		return err
	})
	if err != nil {
		return nil, s.publicError(ctx, "create post", err)
	}

	s.log.Debug(ctx, "post created", "post_id", created.ID, "user_id", caller.ID)
	return created, nil
}

func (s *PostService) Update(ctx context.Context, caller *models.User, id, content string) (*models.Post, error) {
	if err := auth.RequireCaller(caller, actionUpdatePost); err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, common.Validation(msgPostEmpty)
	}

	var updated *models.Post
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Posts(tx)
		if err := s.checkOwner(ctx, repo.GetByID, caller, id, actionUpdatePost); err != nil {
			return err
		}

		ok, err := repo.Update(ctx, id, caller.ID, content, s.now())
		if err != nil {
			return err
		}
		if !ok {
			return common.NotFound(msgPostNotFound)
		}

		updated, err = repo.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, s.publicError(ctx, "update post", err)
	}
	return updated, nil
}

// Delete removes the caller's post and reports true on success.
func (s *PostService) Delete(ctx context.Context, caller *models.User, id string) (bool, error) {
	if err := auth.RequireCaller(caller, actionDeletePost); err != nil {
		return false, err
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Posts(tx)
		if err := s.checkOwner(ctx, repo.GetByID, caller, id, actionDeletePost); err != nil {
			return err
		}

		ok, err := repo.Delete(ctx, id, caller.ID)
		if err != nil {
			return err
		}
		if !ok {
			return common.NotFound(msgPostNotFound)
		}
		return nil
	})
	if err != nil {
		return false, s.publicError(ctx, "delete post", err)
	}
	return true, nil
}

func (s *PostService) checkOwner(
	ctx context.Context,
	get func(context.Context, string) (*models.Post, error),
	caller *models.User, id string, action auth.Action,
) error {
	existing, err := get(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.NotFound(msgPostNotFound)
		}
		return err
	}
	return auth.RequireOwner(caller, existing.UserID, action)
}
