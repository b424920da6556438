package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	logging "github.com/sirupsen/logrus"
)

const (
	defaultTimeout  = time.Minute
	maxLoggedBody   = 2048
	maxErrorBodyLen = 512
)

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("bad response code %d: %s", e.Code, e.Body)
}

type Requester struct {
	method      string
	url         string
	apiKey      string
	input       interface{}
	body        io.Reader
	contentType string
	output      interface{}
	client      *http.Client
}

func NewRequester(url string, target interface{}) *Requester {
	return &Requester{
		method: http.MethodGet,
		url:    url,
		output: target,
		client: &http.Client{Timeout: defaultTimeout},
	}
}

func (r *Requester) WithPOST() {
	r.method = http.MethodPost
}

// WithInput sends i as a JSON body.
func (r *Requester) WithInput(i interface{}) {
	r.input = i
}

// WithBody sends a prepared body, e.g. a multipart form.
func (r *Requester) WithBody(body io.Reader, contentType string) {
	r.body = body
	r.contentType = contentType
}

func (r *Requester) WithBearer(key string) {
	r.apiKey = key
}

func (r *Requester) WithClient(c *http.Client) {
	if c != nil {
		r.client = c
	}
}

func (r *Requester) addHeaders(httpReq *http.Request) {
	if r.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+r.apiKey)
	}

	contentType := r.contentType
	if contentType == "" {
		contentType = "application/json"
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")
}

func (r *Requester) buildBody() (io.Reader, []byte, error) {
	if r.body != nil {
		return r.body, nil, nil
	}

	if r.input == nil {
		return nil, nil, nil
	}

	requestBody, err := json.Marshal(r.input)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to create an http request body")
	}

	return bytes.NewReader(requestBody), requestBody, nil
}

func (r *Requester) Request(ctx context.Context) error {
	log := logging.WithContext(ctx)

	bodyReader, requestBody, err := r.buildBody()
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequestWithContext(ctx, r.method, r.url, bodyReader)
	if err != nil {
		return errors.Wrap(err, "failed to create an http request")
	}

	if len(requestBody) > 0 {
		log.Debugf("http request, url: %q, method: %s, body: %q", r.url, r.method, truncate(string(requestBody), maxLoggedBody))
	} else {
		log.Debugf("http request, url: %q, method: %s", r.url, r.method)
	}

	r.addHeaders(httpReq)

	return r.request(ctx, httpReq)
}

func (r *Requester) request(ctx context.Context, httpReq *http.Request) error {
	log := logging.WithContext(ctx)

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return errors.Wrapf(err, "failed to call %s", r.url)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read response body")
	}

	log.Debugf("response %d from %q: %q", resp.StatusCode, r.url, truncate(string(responseBody), maxLoggedBody))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.WithStack(&StatusError{
			Code: resp.StatusCode,
			Body: truncate(string(responseBody), maxErrorBodyLen),
		})
	}

	if r.output == nil {
		return nil
	}

	err = json.Unmarshal(responseBody, r.output)
	if err != nil {
		return errors.Wrapf(err, "failed to interpret response from %s", r.url)
	}

	return nil
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}

	return s[:limit] + "..."
}
