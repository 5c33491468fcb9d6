package services

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophboard/internal/dbx"
	"github.com/dmitrijs2005/gophboard/internal/pubsub"
	"github.com/dmitrijs2005/gophboard/internal/server/config"
	"github.com/dmitrijs2005/gophboard/internal/server/models"
	messagesrepo "github.com/dmitrijs2005/gophboard/internal/server/repositories/messages"
	postsrepo "github.com/dmitrijs2005/gophboard/internal/server/repositories/posts"
	"github.com/dmitrijs2005/gophboard/internal/server/repositories/repomanager"
	usersrepo "github.com/dmitrijs2005/gophboard/internal/server/repositories/users"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var errBoom = errors.New("boom")

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = "k"
	cfg.PasswordHashCost = bcrypt.MinCost
	return cfg
}

// tickingClock returns strictly increasing timestamps one second apart.
func tickingClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

type env struct {
	db       *sqlx.DB
	rm       *repomanager.SQLRepositoryManager
	bus      *pubsub.Bus[*models.Message]
	users    *UserService
	posts    *PostService
	messages *MessageService
}

// newEnv wires every service over a migrated sqlite file in t.TempDir.
func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()

	dsn := "file:" + filepath.Join(t.TempDir(), "svc.db") + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_txlock=immediate"
	db, err := repomanager.Open(ctx, repomanager.DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rm, err := repomanager.NewSQLRepositoryManager(repomanager.DriverSQLite)
	require.NoError(t, err)
	require.NoError(t, rm.RunMigrations(ctx, db.DB))

	bus := pubsub.New[*models.Message](8)
	t.Cleanup(bus.Close)

	cfg := testConfig()
	clock := WithClock(tickingClock())
	return &env{
		db:       db,
		rm:       rm,
		bus:      bus,
		users:    NewUserService(db, rm, cfg, clock),
		posts:    NewPostService(db, rm, clock),
		messages: NewMessageService(db, rm, bus, cfg, clock),
	}
}

func (e *env) register(t *testing.T, name string) *models.User {
	t.Helper()
	p, err := e.users.Register(context.Background(), name, "secret123")
	require.NoError(t, err)
	return p.User
}

func newSQLMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

// --- fakes ---

type fakeUsersRepo struct {
	getErr    error
	createErr error
	listErr   error
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return u, nil
}
func (f *fakeUsersRepo) GetByID(context.Context, string) (*models.User, error) {
	return nil, f.getErr
}
func (f *fakeUsersRepo) GetByUsername(context.Context, string) (*models.User, error) {
	return nil, f.getErr
}
func (f *fakeUsersRepo) List(context.Context) ([]*models.User, error) { return nil, f.listErr }
func (f *fakeUsersRepo) Count(context.Context) (int, error)           { return 0, f.getErr }

type fakePostsRepo struct {
	postsrepo.Repository
	err error
}

func (f *fakePostsRepo) GetByID(context.Context, string) (*models.Post, error) { return nil, f.err }
func (f *fakePostsRepo) List(context.Context) ([]*models.Post, error)          { return nil, f.err }

type fakeMessagesRepo struct {
	messagesrepo.Repository
	createErr error
}

func (f *fakeMessagesRepo) Create(context.Context, *models.Message) (*models.Message, error) {
	return nil, f.createErr
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	p *fakePostsRepo
	m *fakeMessagesRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) usersrepo.Repository          { return m.u }
func (m *fakeRepoManager) Posts(dbx.DBTX) postsrepo.Repository          { return m.p }
func (m *fakeRepoManager) Messages(dbx.DBTX) messagesrepo.Repository    { return m.m }
