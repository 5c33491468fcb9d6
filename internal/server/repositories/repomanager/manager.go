package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/gophboard/internal/dbx"
	"github.com/dmitrijs2005/gophboard/internal/server/repositories/messages"
	"github.com/dmitrijs2005/gophboard/internal/server/repositories/posts"
	"github.com/dmitrijs2005/gophboard/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Posts(db dbx.DBTX) posts.Repository
	Messages(db dbx.DBTX) messages.Repository
}
