package services

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/gophboard/internal/common"
	"github.com/dmitrijs2005/gophboard/internal/dbx"
	"github.com/dmitrijs2005/gophboard/internal/pubsub"
	"github.com/dmitrijs2005/gophboard/internal/server/auth"
	"github.com/dmitrijs2005/gophboard/internal/server/config"
	"github.com/dmitrijs2005/gophboard/internal/server/models"
	"github.com/dmitrijs2005/gophboard/internal/server/repositories/repomanager"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// TopicMessageCreated carries every persisted chat message.
const TopicMessageCreated = "message-created"

const msgMessageEmpty = "Message cannot be empty"

var actionSendMessage = auth.Action{Verb: "send", Resource: "message", Object: "messages"}

// MessageService stores chat messages and fans them out to live
// subscribers once they are durable.
type MessageService struct {
	options
	db           *sqlx.DB
	repomanager  repomanager.RepositoryManager
	bus          *pubsub.Bus[*models.Message]
	defaultLimit int
	maxLimit     int
}

func NewMessageService(db *sqlx.DB, m repomanager.RepositoryManager, bus *pubsub.Bus[*models.Message], cfg *config.Config, opts ...Option) *MessageService {
	return &MessageService{
		options:      buildOptions("messages", opts),
		db:           db,
		repomanager:  m,
		bus:          bus,
		defaultLimit: cfg.MessagesDefaultLimit,
		maxLimit:     cfg.MessagesMaxLimit,
	}
}

// List returns the most recent messages, oldest first. A non-positive limit
// means the default; limits above the maximum are clamped.
func (s *MessageService) List(ctx context.Context, limit int) ([]*models.Message, error) {
	if limit <= 0 {
		limit = s.defaultLimit
	}
	if s.maxLimit > 0 && limit > s.maxLimit {
		limit = s.maxLimit
	}

	msgs, err := s.repomanager.Messages(s.db).ListRecent(ctx, limit)
	if err != nil {
		return nil, s.publicError(ctx, "list messages", err)
	}
	return msgs, nil
}

// Send persists a message and then publishes it. Nothing is published when
// any step fails.
func (s *MessageService) Send(ctx context.Context, caller *models.User, content string) (*models.Message, error) {
	if err := auth.RequireCaller(caller, actionSendMessage); err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, common.Validation(msgMessageEmpty)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, s.publicError(ctx, "generate id", err)
	}

	var created *models.Message
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Messages(tx)
		msg := &models.Message{ID: id.String(), Content: content, UserID: caller.ID, CreatedAt: s.now()}
		if _, err := repo.Create(ctx, msg); err != nil {
			return err
		}
		created, err = repo.GetByID(ctx, msg.ID)
		return err
	})
	if err != nil {
		return nil, s.publicError(ctx, "send message", err)
	}

	delivered, subscribers := s.bus.Publish(TopicMessageCreated, created)
	s.metrics.MessagePublished(subscribers, delivered)
	if delivered < subscribers {
		s.log.Warn(ctx, "message dropped for slow subscribers", "message_id", created.ID, "dropped", subscribers-delivered)
	}

	return created, nil
}

// Subscribe returns live messages until ctx is done or the bus closes.
// Messages sent before the call are never delivered.
func (s *MessageService) Subscribe(ctx context.Context) <-chan *models.Message {
	ch := s.bus.Subscribe(ctx, TopicMessageCreated)
	s.metrics.SubscriberAdded()
	context.AfterFunc(ctx, s.metrics.SubscriberRemoved)
	return ch
}
