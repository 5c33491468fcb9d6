package gql

import (
	"context"

	"github.com/dmitrijs2005/gophboard/internal/logging"
	graphql "github.com/graph-gophers/graphql-go"
)

// Resolver is the root resolver for queries, mutations and subscriptions.
// Every write reads its caller from the context; see CallerFrom.
type Resolver struct {
	users    UserService
	posts    PostService
	messages MessageService
	log      logging.Logger
}

func NewResolver(us UserService, ps PostService, ms MessageService, l logging.Logger) *Resolver {
	return &Resolver{users: us, posts: ps, messages: ms, log: l.With("module", "graphql")}
}

// --- queries ---

func (r *Resolver) Me(ctx context.Context) *userResolver {
	return r.user(CallerFrom(ctx))
}

func (r *Resolver) Users(ctx context.Context) ([]*userResolver, error) {
	users, err := r.users.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*userResolver, len(users))
	for i, u := range users {
		out[i] = r.user(u)
	}
	return out, nil
}

func (r *Resolver) User(ctx context.Context, args struct{ ID graphql.ID }) (*userResolver, error) {
	u, err := r.users.Get(ctx, string(args.ID))
	if err != nil {
		return nil, err
	}
	return r.user(u), nil
}

func (r *Resolver) Posts(ctx context.Context) ([]*postResolver, error) {
	return r.postList(r.posts.List(ctx))
}

func (r *Resolver) Post(ctx context.Context, args struct{ ID graphql.ID }) (*postResolver, error) {
	p, err := r.posts.Get(ctx, string(args.ID))
	if err != nil {
		return nil, err
	}
	return r.post(p), nil
}

func (r *Resolver) PostsByUser(ctx context.Context, args struct{ UserID graphql.ID }) ([]*postResolver, error) {
	return r.postList(r.posts.ListByUser(ctx, string(args.UserID)))
}

// Messages relies on the schema default for an omitted limit; an explicit
// non-positive limit falls back to the service default.
func (r *Resolver) Messages(ctx context.Context, args struct{ Limit int32 }) ([]*messageResolver, error) {
	msgs, err := r.messages.List(ctx, int(args.Limit))
	if err != nil {
		return nil, err
	}
	out := make([]*messageResolver, len(msgs))
	for i, m := range msgs {
		out[i] = r.message(m)
	}
	return out, nil
}

// --- mutations ---

type credentialsArgs struct {
	Username string
	Password string
}

func (r *Resolver) Register(ctx context.Context, args credentialsArgs) (*authPayloadResolver, error) {
	p, err := r.users.Register(ctx, args.Username, args.Password)
	if err != nil {
		return nil, err
	}
	return &authPayloadResolver{root: r, payload: p}, nil
}

func (r *Resolver) Login(ctx context.Context, args credentialsArgs) (*authPayloadResolver, error) {
	p, err := r.users.Login(ctx, args.Username, args.Password)
	if err != nil {
		return nil, err
	}
	return &authPayloadResolver{root: r, payload: p}, nil
}

func (r *Resolver) CreatePost(ctx context.Context, args struct{ Content string }) (*postResolver, error) {
	p, err := r.posts.Create(ctx, CallerFrom(ctx), args.Content)
	if err != nil {
		return nil, err
	}
	return r.post(p), nil
}

func (r *Resolver) UpdatePost(ctx context.Context, args struct {
	ID      graphql.ID
	Content string
}) (*postResolver, error) {
	p, err := r.posts.Update(ctx, CallerFrom(ctx), string(args.ID), args.Content)
	if err != nil {
		return nil, err
	}
	return r.post(p), nil
}

func (r *Resolver) DeletePost(ctx context.Context, args struct{ ID graphql.ID }) (bool, error) {
	return r.posts.Delete(ctx, CallerFrom(ctx), string(args.ID))
}

func (r *Resolver) SendMessage(ctx context.Context, args struct{ Content string }) (*messageResolver, error) {
	m, err := r.messages.Send(ctx, CallerFrom(ctx), args.Content)
	if err != nil {
		return nil, err
	}
	return r.message(m), nil
}

// --- subscriptions ---

// MessageAdded streams messages sent after the subscription starts. The
// stream ends when the client stops it or the server shuts down.
func (r *Resolver) MessageAdded(ctx context.Context) <-chan *messageResolver {
	in := r.messages.Subscribe(ctx)
	out := make(chan *messageResolver)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-in:
				if !ok {
					return
				}
				select {
				case out <- r.message(m):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out
}
