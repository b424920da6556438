package msg

type OutputFormat uint

const (
	OutputFormatUndefined OutputFormat = iota
	OutputFormatMarkdown1
	OutputFormatMarkdown2
	OutputFormatHTML
)

type Button struct {
	Text string
	Data string
}

type Options struct {
	OutputFormat   OutputFormat
	InlineKeyboard [][]Button
	ReplyKeyboard  [][]string
	EditOriginal   bool
}

func (o *Options) WithFormat(f OutputFormat) *Options {
	o.OutputFormat = f
	return o
}

// WithInlineRow appends a row of inline buttons under the message.
func (o *Options) WithInlineRow(buttons ...Button) *Options {
	if len(buttons) == 0 {
		return o
	}
	o.InlineKeyboard = append(o.InlineKeyboard, buttons)
	return o
}

func (o *Options) WithReplyRow(labels ...string) *Options {
	if len(labels) == 0 {
		return o
	}
	o.ReplyKeyboard = append(o.ReplyKeyboard, labels)
	return o
}

// WithEditOriginal replaces the message the pressed button belongs to instead of
// sending a new one.
func (o *Options) WithEditOriginal() *Options {
	o.EditOriginal = true
	return o
}

func (o *Options) GetFormat() OutputFormat {
	if o == nil {
		return OutputFormatUndefined
	}

	return o.OutputFormat
}

func (o *Options) GetInlineKeyboard() [][]Button {
	if o == nil {
		return nil
	}

	return o.InlineKeyboard
}

func (o *Options) GetReplyKeyboard() [][]string {
	if o == nil {
		return nil
	}

	return o.ReplyKeyboard
}

func (o *Options) IsEditOriginal() bool {
	if o == nil {
		return false
	}

	return o.EditOriginal
}
