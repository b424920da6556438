package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"rembot/pkg/rest"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(&Config{
		APIKey:          "sk-test",
		Model:           "gpt-4o-mini",
		BaseURL:         srv.URL,
		Temperature:     0.2,
		Timeout:         5 * time.Second,
		TranscribeModel: "whisper-1",
	}, nil)
}

func TestCompleteSendsJSONRequest(t *testing.T) {
	var got ChatCompletionRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, completionsPath, r.URL.Path)
		require.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  "}},{"message":{"role":"assistant","content":"{\"intent\":\"chat\"}"}}]}`))
	})

	answer, err := client.Complete(context.Background(), []Message{
		{Role: RoleSystem, Content: "sys"},
		{Role: RoleUser, Content: "hi"},
	}, CompleteOptions{JSON: true})
	require.NoError(t, err)
	require.Equal(t, `{"intent":"chat"}`, answer)

	require.Equal(t, "gpt-4o-mini", got.Model)
	require.InDelta(t, 0.2, got.Temperature, 0.0001)
	require.NotNil(t, got.ResponseFormat)
	require.Equal(t, "json_object", got.ResponseFormat.Type)
	require.Len(t, got.Messages, 2)
	require.Equal(t, RoleUser, got.Messages[1].Role)
}

func TestCompleteErrors(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"rate limited"}`))
	})

	_, err := client.Complete(context.Background(), nil, CompleteOptions{})
	require.Error(t, err)

	var statusErr *rest.StatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, http.StatusTooManyRequests, statusErr.Code)

	empty := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})
	_, err = empty.Complete(context.Background(), nil, CompleteOptions{})
	require.ErrorIs(t, err, ErrEmptyAnswer)

	noKey := NewClient(&Config{Timeout: time.Second}, nil)
	_, err = noKey.Complete(context.Background(), nil, CompleteOptions{})
	require.ErrorIs(t, err, ErrNoAPIKey)
}

func TestTranscribeSendsMultipart(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, transcriptionsPath, r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		require.Equal(t, "whisper-1", r.FormValue("model"))

		f, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		require.Equal(t, "voice-1.mp3", header.Filename)

		raw, err := io.ReadAll(f)
		require.NoError(t, err)
		require.Equal(t, "mp3-bytes", string(raw))

		_, _ = w.Write([]byte(`{"text":" завтра в 9 зарядка "}`))
	})

	transcriber := NewVoiceTranscriber(client, func(ogg io.Reader) (io.Reader, error) {
		raw, err := io.ReadAll(ogg)
		require.NoError(t, err)
		require.Equal(t, "ogg-bytes", string(raw))
		return strings.NewReader("mp3-bytes"), nil
	}, nil)

	text, err := transcriber.TranscribeVoice(context.Background(), "voice-1", io.NopCloser(strings.NewReader("ogg-bytes")))
	require.NoError(t, err)
	require.Equal(t, "завтра в 9 зарядка", text)
}

func TestStripCodeFence(t *testing.T) {
	cases := []struct{ input, expected string }{
		{input: `{"a":1}`, expected: `{"a":1}`},
		{input: "```json\n{\"a\":1}\n```", expected: `{"a":1}`},
		{input: "```\n{\"a\":1}\n```", expected: `{"a":1}`},
		{input: "```{\"a\":1}```", expected: `{"a":1}`},
		{input: "  ```JSON\n{\"a\":1}```  ", expected: `{"a":1}`},
		{input: "```{\"a\":1}\n```", expected: `{"a":1}`},
	}

	for _, c := range cases {
		require.Equal(t, c.expected, StripCodeFence(c.input), c.input)
	}
}
