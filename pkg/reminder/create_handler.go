package reminder

import (
	"context"
	"io"
	"strings"

	"rembot/pkg/msg"

	logging "github.com/sirupsen/logrus"
)

type Transcriber interface {
	TranscribeVoice(ctx context.Context, fileID string, ogg io.ReadCloser) (string, error)
}

// CreateHandler takes any free text or voice note and turns it into a reminder.
type CreateHandler struct {
	Service     *Service
	Transcriber Transcriber
}

func (h *CreateHandler) CanHandle(_ context.Context, req *msg.Request) (bool, error) {
	if req.File.IsVoice() {
		return true, nil
	}

	return !msg.IsCommand(req.Message) && strings.TrimSpace(req.Message) != "", nil
}

func (h *CreateHandler) Handle(ctx context.Context, req *msg.Request) (*msg.Response, error) {
	log := logging.WithContext(ctx)

	text := req.Message
	if req.File.IsVoice() {
		if h.Transcriber == nil {
			_ = req.File.Reader.Close()
			return msg.NewResponse("Голосовые сообщения пока не поддерживаются.", msg.Error, nil), nil
		}

		log.Infof("got voice input")
		transcript, err := h.Transcriber.TranscribeVoice(ctx, req.File.FileID, req.File.Reader)
		if err != nil {
			log.Errorf("failed to transcribe voice: %v", err)
			return msg.NewResponse("Не удалось распознать голосовое сообщение.", msg.Error, nil), nil
		}
		text = transcript
	}

	if strings.TrimSpace(text) == "" {
		return msg.NewResponse(notUnderstoodText, msg.Error, nil), nil
	}

	return h.Service.HandleText(ctx, req.Sender.GetID(), req.ChatID, text)
}
