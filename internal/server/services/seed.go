package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophboard/internal/dbx"
	"github.com/dmitrijs2005/gophboard/internal/logging"
	"github.com/dmitrijs2005/gophboard/internal/server/auth"
	"github.com/dmitrijs2005/gophboard/internal/server/models"
	"github.com/dmitrijs2005/gophboard/internal/server/repositories/repomanager"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// DemoPassword is shared by every seeded account.
const DemoPassword = "password123"

type seedPost struct {
	author  int
	content string
}

var (
	demoUsers    = []string{"andy25", "sarah_dev", "mike_codes"}
	demoPosts    = []seedPost{{0, "Hello world! This is my first post."}, {0, "Learning GraphQL is fun!"}, {1, "Just deployed my first app 🚀"}, {2, "Coffee and code - perfect combo ☕"}}
	demoMessages = []seedPost{{0, "Hey everyone! Welcome to the chat!"}, {1, "Hi Andy! Great to be here."}, {2, "Hello folks! 👋"}}
)

// SeedDemoData fills an empty store with demo users, posts and messages. A
// store that already has users is left alone. It reports whether it seeded.
func SeedDemoData(ctx context.Context, db *sqlx.DB, m repomanager.RepositoryManager, hashCost int, log logging.Logger) (bool, error) {
	n, err := m.Users(db).Count(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	hash, err := auth.HashPassword(DemoPassword, hashCost)
	if err != nil {
		return false, err
	}

	// Spread timestamps so ordering is deterministic.
	ts := utcNow().Add(-time.Hour)
	next := func() time.Time {
		ts = ts.Add(time.Second)
		return ts
	}

	err = dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		ids := make([]string, len(demoUsers))
		for i, name := range demoUsers {
			ids[i] = uuid.Must(uuid.NewV7()).String()
			u := &models.User{ID: ids[i], UserName: name, PasswordHash: hash, CreatedAt: next()}
			if _, err := m.Users(tx).Create(ctx, u); err != nil {
				return fmt.Errorf("seed user %s: %w", name, err)
			}
		}

		for _, p := range demoPosts {
			at := next()
			post := &models.Post{ID: uuid.Must(uuid.NewV7()).String(), Content: p.content, UserID: ids[p.author], CreatedAt: at, UpdatedAt: at}
			if _, err := m.Posts(tx).Create(ctx, post); err != nil {
				return fmt.Errorf("seed post: %w", err)
			}
		}

		for _, msg := range demoMessages {
			message := &models.Message{ID: uuid.Must(uuid.NewV7()).String(), Content: msg.content, UserID: ids[msg.author], CreatedAt: next()}
			if _, err := m.Messages(tx).Create(ctx, message); err != nil {
				return fmt.Errorf("seed message: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	log.Info(ctx, "database seeded with demo data", "users", len(demoUsers), "posts", len(demoPosts), "messages", len(demoMessages))
	return true, nil
}
