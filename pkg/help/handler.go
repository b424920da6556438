package help

import (
	"context"
	"strings"

	"rembot/pkg/msg"
)

type Result struct {
	Text string
}

var helpCommands = []string{"help"}

type Provider interface {
	GetHelp(ctx context.Context, req *msg.Request) Result
}

// Handler answers /help with the intro followed by every provider's section.
type Handler struct {
	Intro     string
	Providers []Provider
}

func (h *Handler) CanHandle(_ context.Context, req *msg.Request) (bool, error) {
	return msg.MatchCommand(req.Message, helpCommands), nil
}

func (h *Handler) Handle(ctx context.Context, req *msg.Request) (*msg.Response, error) {
	sections := make([]string, 0, len(h.Providers)+1)
	if h.Intro != "" {
		sections = append(sections, h.Intro)
	}

	for _, prov := range h.Providers {
		helpResult := prov.GetHelp(ctx, req)
		if helpResult.Text == "" {
			continue
		}

		sections = append(sections, helpResult.Text)
	}

	return msg.NewResponse(strings.Join(sections, "\n\n"), msg.Success, nil), nil
}
