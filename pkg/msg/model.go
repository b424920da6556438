package msg

import (
	"io"
)

type Sender struct {
	ID        int64
	FirstName string
	LastName  string
	UserName  string
}

func (s *Sender) GetID() int64 {
	if s == nil {
		return 0
	}

	return s.ID
}

type Format uint

const (
	FormatText Format = iota
	FormatVoice
)

// File is an attachment already opened by the transport.
type File struct {
	FileID string
	Format Format
	Reader io.ReadCloser
}

func (f *File) IsVoice() bool {
	return f != nil && f.Format == FormatVoice && f.Reader != nil
}

// Callback is an inline button press.
type Callback struct {
	ID   string
	Data string
}

func (c *Callback) GetData() string {
	if c == nil {
		return ""
	}

	return c.Data
}

const (
	KindText     = "text"
	KindCommand  = "command"
	KindCallback = "callback"
	KindVoice    = "voice"
)

type Request struct {
	Platform string
	ID       string
	Sender   *Sender
	ChatID   int64
	Message  string
	Callback *Callback
	File     *File
	Meta     map[string]interface{}
}

func (r *Request) Kind() string {
	switch {
	case r.Callback != nil:
		return KindCallback
	case r.File.IsVoice():
		return KindVoice
	case IsCommand(r.Message):
		return KindCommand
	default:
		return KindText
	}
}

type Type uint

const (
	Undefined Type = iota
	Success
	Error
	Prompt
)

type ResponseMessage struct {
	Message string
	Type    Type
	Options *Options
}

type Response struct {
	Messages []ResponseMessage
}

// NewResponse builds a single message response.
func NewResponse(text string, t Type, opts *Options) *Response {
	return &Response{
		Messages: []ResponseMessage{{Message: text, Type: t, Options: opts}},
	}
}

func (r *Response) Add(text string, t Type, opts *Options) {
	r.Messages = append(r.Messages, ResponseMessage{Message: text, Type: t, Options: opts})
}
