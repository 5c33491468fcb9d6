package gql

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophboard/internal/common"
	"github.com/dmitrijs2005/gophboard/internal/server/models"
	"github.com/dmitrijs2005/gophboard/internal/server/services"
	graphql "github.com/graph-gophers/graphql-go"
)

// formatTime renders timestamps as RFC 3339 in UTC.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func (r *Resolver) user(u *models.User) *userResolver {
	if u == nil {
		return nil
	}
	return &userResolver{root: r, u: u.Public()}
}

func (r *Resolver) post(p *models.Post) *postResolver {
	if p == nil {
		return nil
	}
	return &postResolver{root: r, p: p}
}

func (r *Resolver) message(m *models.Message) *messageResolver {
	if m == nil {
		return nil
	}
	return &messageResolver{root: r, m: m}
}

func (r *Resolver) postList(posts []*models.Post, err error) ([]*postResolver, error) {
	if err != nil {
		return nil, err
	}
	out := make([]*postResolver, len(posts))
	for i, p := range posts {
		out[i] = r.post(p)
	}
	return out, nil
}

// author loads a referenced user. The foreign key makes a missing author a
// storage inconsistency, reported as an internal error.
func (r *Resolver) author(ctx context.Context, id string) (*userResolver, error) {
	u, err := r.users.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		r.log.Error(ctx, "author missing", "user_id", id)
		return nil, common.Internal(fmt.Errorf("author %s not found", id))
	}
	return r.user(u), nil
}

type userResolver struct {
	root *Resolver
	u    *models.User
}

func (u *userResolver) ID() graphql.ID    { return graphql.ID(u.u.ID) }
func (u *userResolver) Username() string  { return u.u.UserName }
func (u *userResolver) CreatedAt() string { return formatTime(u.u.CreatedAt) }

func (u *userResolver) Posts(ctx context.Context) ([]*postResolver, error) {
	return u.root.postList(u.root.posts.ListByUser(ctx, u.u.ID))
}

type postResolver struct {
	root *Resolver
	p    *models.Post
}

func (p *postResolver) ID() graphql.ID    { return graphql.ID(p.p.ID) }
func (p *postResolver) Content() string   { return p.p.Content }
func (p *postResolver) CreatedAt() string { return formatTime(p.p.CreatedAt) }
func (p *postResolver) UpdatedAt() string { return formatTime(p.p.UpdatedAt) }

func (p *postResolver) Author(ctx context.Context) (*userResolver, error) {
	return p.root.author(ctx, p.p.UserID)
}

type messageResolver struct {
	root *Resolver
	m    *models.Message
}

func (m *messageResolver) ID() graphql.ID    { return graphql.ID(m.m.ID) }
func (m *messageResolver) Content() string   { return m.m.Content }
func (m *messageResolver) CreatedAt() string { return formatTime(m.m.CreatedAt) }

func (m *messageResolver) Author(ctx context.Context) (*userResolver, error) {
	return m.root.author(ctx, m.m.UserID)
}

type authPayloadResolver struct {
	root    *Resolver
	payload *services.AuthPayload
}

func (a *authPayloadResolver) Token() string       { return a.payload.Token }
func (a *authPayloadResolver) User() *userResolver { return a.root.user(a.payload.User) }
