package llm

import (
	"bytes"
	"context"
	"io"

	"rembot/pkg/monitoring"

	"github.com/Vernacular-ai/godub/converter"
	"github.com/pkg/errors"
	logging "github.com/sirupsen/logrus"
)

// AudioConverter turns a Telegram voice note into a format the transcription
// endpoint accepts.
type AudioConverter func(ogg io.Reader) (io.Reader, error)

// ConvertOggToMp3 shells out to ffmpeg through godub.
func ConvertOggToMp3(ogg io.Reader) (io.Reader, error) {
	buf := new(bytes.Buffer)

	err := converter.NewConverter(buf).
		WithDstFormat("mp3").
		Convert(ogg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to convert voice to mp3")
	}

	return buf, nil
}

type VoiceTranscriber struct {
	client  *Client
	convert AudioConverter
	metrics *monitoring.Metrics
}

func NewVoiceTranscriber(client *Client, convert AudioConverter, metrics *monitoring.Metrics) *VoiceTranscriber {
	if convert == nil {
		convert = ConvertOggToMp3
	}

	return &VoiceTranscriber{client: client, convert: convert, metrics: metrics}
}

func (v *VoiceTranscriber) TranscribeVoice(ctx context.Context, fileID string, ogg io.ReadCloser) (text string, err error) {
	defer ogg.Close()
	defer func() {
		v.metrics.IncVoice(err)
	}()

	log := logging.WithContext(ctx)

	mp3, err := v.convert(ogg)
	if err != nil {
		return "", err
	}
	log.Debugf("converted voice %q to mp3", fileID)

	text, err = v.client.Transcribe(ctx, fileID+".mp3", mp3)
	if err != nil {
		return "", err
	}
	log.Infof("voice transcript: %q", text)

	return text, nil
}
