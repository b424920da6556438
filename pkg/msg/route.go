package msg

import (
	"context"

	"github.com/pkg/errors"
)

type Handler interface {
	Handle(ctx context.Context, req *Request) (*Response, error)
	CanHandle(ctx context.Context, req *Request) (bool, error)
}

type HandlerFunc func(ctx context.Context, req *Request) (*Response, error)

type Middleware func(next HandlerFunc) HandlerFunc

var ErrNoHandler = errors.New("no matching handler found for the message")

// Router passes a request to the first handler that accepts it.
type Router struct {
	Handlers    []Handler
	Middlewares []Middleware
}

func (r *Router) Use(m Middleware) {
	r.Middlewares = append(r.Middlewares, m)
}

func (r *Router) Handle(ctx context.Context, req *Request) (*Response, error) {
	h := r.dispatch
	for i := len(r.Middlewares) - 1; i >= 0; i-- {
		h = r.Middlewares[i](h)
	}

	return h(ctx, req)
}

func (r *Router) CanHandle(context.Context, *Request) (bool, error) {
	return true, nil
}

func (r *Router) dispatch(ctx context.Context, req *Request) (*Response, error) {
	for _, h := range r.Handlers {
		canHandle, err := h.CanHandle(ctx, req)
		if err != nil {
			return nil, err
		}
		if canHandle {
			return h.Handle(ctx, req)
		}
	}

	return nil, ErrNoHandler
}
