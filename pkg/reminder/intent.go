package reminder

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"rembot/pkg/timing"

	"github.com/pkg/errors"
)

const (
	IntentCreate  = "create_reminder"
	IntentClarify = "ask_clarification"
	IntentChat    = "chat"
)

var intentAliases = map[string]string{
	"":              IntentCreate,
	"create":        IntentCreate,
	"clarify":       IntentClarify,
	"clarification": IntentClarify,
}

// flexInt accepts 5, "5", null and weekday names such as "wed" or "среда".
type flexInt int

func (f *flexInt) UnmarshalJSON(raw []byte) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		*f = 0
		return nil
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		*f = flexInt(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return errors.Errorf("expected a number, got %s", raw)
	}

	s = strings.TrimSpace(s)
	if s == "" {
		*f = 0
		return nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		*f = flexInt(n)
		return nil
	}
	if d, ok := timing.ParseWeekday(s); ok {
		*f = flexInt(d)
		return nil
	}

	return errors.Errorf("expected a number, got %q", s)
}

type Option struct {
	ISODatetime string  `json:"iso_datetime"`
	Label       string  `json:"label"`
	DayOfWeek   flexInt `json:"day_of_week"`
	DayOfMonth  flexInt `json:"day_of_month"`
}

// Recurrence is the alternative shape some prompts produce:
// {"type":"weekly","weekday":"wed","time":"19:00"}.
type Recurrence struct {
	Type    string  `json:"type"`
	Weekday flexInt `json:"weekday"`
	Day     flexInt `json:"day"`
	Time    string  `json:"time"`
}

type Intent struct {
	Intent        string      `json:"intent"`
	Title         string      `json:"title"`
	Description   string      `json:"description"`
	Timezone      string      `json:"timezone"`
	FixedDatetime string      `json:"fixed_datetime"`
	Repeat        string      `json:"repeat"`
	DayOfWeek     flexInt     `json:"day_of_week"`
	DayOfMonth    flexInt     `json:"day_of_month"`
	Question      string      `json:"question"`
	Options       []Option    `json:"options"`
	Recurrence    *Recurrence `json:"recurrence"`
}

func decodeIntent(raw string) (*Intent, error) {
	in := new(Intent)
	err := json.Unmarshal([]byte(raw), in)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode intent")
	}

	return in, nil
}

// normalize fills defaults and folds the recurrence object into the flat fields.
func (in *Intent) normalize(now time.Time, offset string) {
	in.Intent = strings.ToLower(strings.TrimSpace(in.Intent))
	if canonical, ok := intentAliases[in.Intent]; ok {
		in.Intent = canonical
	}

	in.Title = strings.TrimSpace(in.Title)
	in.Timezone = strings.TrimSpace(in.Timezone)
	if in.Timezone != "" && !timing.ValidOffset(in.Timezone) {
		in.Timezone = ""
	}
	in.FixedDatetime = strings.TrimSpace(in.FixedDatetime)

	rec := in.Recurrence
	if rec != nil {
		if in.Repeat == "" || timing.ParseRepeat(in.Repeat) == timing.RepeatNone {
			in.Repeat = rec.Type
		}
		if in.DayOfWeek == 0 {
			in.DayOfWeek = rec.Weekday
		}
		if in.DayOfMonth == 0 {
			in.DayOfMonth = rec.Day
		}
		if in.FixedDatetime == "" && rec.Time != "" {
			tz := timing.NormalizeOffset(in.Timezone, offset)
			if next, err := timing.NextTimeOfDay(now, tz, rec.Time); err == nil {
				in.FixedDatetime = next.Format(timing.ISOLayout)
			}
		}
	}

	in.Repeat = string(timing.ParseRepeat(in.Repeat))
	if in.DayOfWeek < 0 || in.DayOfWeek > 7 {
		in.DayOfWeek = 0
	}
	if in.DayOfMonth < 0 || in.DayOfMonth > 31 {
		in.DayOfMonth = 0
	}
}
