package llm

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"rembot/pkg/monitoring"
	"rembot/pkg/rest"

	"github.com/pkg/errors"
	logging "github.com/sirupsen/logrus"
)

const (
	completionsPath    = "/v1/chat/completions"
	transcriptionsPath = "/v1/audio/transcriptions"
)

var ErrEmptyAnswer = errors.New("empty answer from the language model")

var ErrNoAPIKey = errors.New("openai api key is not configured")

type Client struct {
	cfg        *Config
	httpClient *http.Client
	metrics    *monitoring.Metrics
}

func NewClient(cfg *Config, metrics *monitoring.Metrics) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		metrics:    metrics,
	}
}

// Complete returns the content of the first non-empty choice.
func (c *Client) Complete(ctx context.Context, messages []Message, opts CompleteOptions) (answer string, err error) {
	started := time.Now()
	defer func() {
		c.metrics.ObserveLLM(started, err)
	}()

	if c.cfg.APIKey == "" {
		return "", ErrNoAPIKey
	}

	requestData := &ChatCompletionRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		Temperature: c.cfg.Temperature,
	}
	if opts.JSON {
		requestData.ResponseFormat = JSONObject
	}

	chatResp := new(ChatCompletionResponse)
	reqsr := rest.NewRequester(c.cfg.BaseURL+completionsPath, chatResp)
	reqsr.WithBearer(c.cfg.APIKey)
	reqsr.WithPOST()
	reqsr.WithInput(requestData)
	reqsr.WithClient(c.httpClient)

	err = reqsr.Request(ctx)
	if err != nil {
		return "", err
	}

	logging.WithContext(ctx).Debugf(
		"completion usage: prompt=%d completion=%d",
		chatResp.Usage.PromptTokens,
		chatResp.Usage.CompletionTokens,
	)

	for _, choice := range chatResp.Choices {
		content := strings.TrimSpace(choice.Message.Content)
		if content != "" {
			return content, nil
		}
	}

	return "", ErrEmptyAnswer
}

// Transcribe sends an audio file to the speech-to-text endpoint.
func (c *Client) Transcribe(ctx context.Context, fileName string, audio io.Reader) (string, error) {
	if c.cfg.APIKey == "" {
		return "", ErrNoAPIKey
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	filePart, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return "", errors.Wrap(err, "failed to create form file")
	}

	_, err = io.Copy(filePart, audio)
	if err != nil {
		return "", errors.Wrap(err, "failed to copy audio into the form")
	}

	err = writer.WriteField("model", c.cfg.TranscribeModel)
	if err != nil {
		return "", errors.Wrap(err, "failed to write model field")
	}

	err = writer.Close()
	if err != nil {
		return "", errors.Wrap(err, "failed to close multipart writer")
	}

	textResp := new(AudioToTextResponse)
	reqsr := rest.NewRequester(c.cfg.BaseURL+transcriptionsPath, textResp)
	reqsr.WithBearer(c.cfg.APIKey)
	reqsr.WithPOST()
	reqsr.WithBody(body, writer.FormDataContentType())
	reqsr.WithClient(c.httpClient)

	err = reqsr.Request(ctx)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(textResp.Text), nil
}

// StripCodeFence removes an optional ```json ... ``` wrapper around a model answer.
func StripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		lang := strings.TrimSpace(s[:nl])
		if lang == "" || !strings.ContainsAny(lang, "{[") {
			s = s[nl+1:]
		}
	} else {
		s = strings.TrimPrefix(s, "json")
	}

	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")

	return strings.TrimSpace(s)
}
