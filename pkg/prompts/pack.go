package prompts

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"rembot/pkg/errs"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

var allowedRoles = map[string]bool{
	"system":    true,
	"user":      true,
	"assistant": true,
}

type Message struct {
	Role    string `yaml:"role"`
	Content string `yaml:"content"`
}

type ParseSection struct {
	System string `yaml:"system"`
}

// Pack is the prompt file the reminder parser is driven by.
type Pack struct {
	System  string       `yaml:"system"`
	Parse   ParseSection `yaml:"parse"`
	Fewshot []Message    `yaml:"fewshot"`
}

func (p *Pack) Validate() *errs.Multi {
	e := errs.NewMulti()

	if strings.TrimSpace(p.System) == "" && strings.TrimSpace(p.Parse.System) == "" {
		e.Err("prompt pack needs either system or parse.system")
	}

	return e
}

// Summary is the short description logged after every load.
func (p *Pack) Summary() string {
	system := p.Parse.System
	if system == "" {
		system = p.System
	}

	return fmt.Sprintf("system=%s... | fewshot=%d", head(system, 40), len(p.Fewshot))
}

func head(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}

	return string([]rune(s)[:n])
}

// Parse decodes a YAML prompt pack. Few-shot items without a known role or
// with empty content are dropped.
func Parse(raw []byte) (*Pack, error) {
	pack := new(Pack)
	err := yaml.Unmarshal(raw, pack)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode prompt pack")
	}

	fewshot := make([]Message, 0, len(pack.Fewshot))
	for i, m := range pack.Fewshot {
		m.Role = strings.ToLower(strings.TrimSpace(m.Role))
		if !allowedRoles[m.Role] || strings.TrimSpace(m.Content) == "" {
			logrus.Warnf("skipping few-shot message #%d with role %q", i, m.Role)
			continue
		}
		fewshot = append(fewshot, m)
	}
	pack.Fewshot = fewshot

	validationErr := pack.Validate()
	if validationErr.HasErrors() {
		return nil, validationErr
	}

	return pack, nil
}

func Load(path string) (*Pack, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read prompt pack %q", path)
	}

	pack, err := Parse(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid prompt pack %q", path)
	}

	logrus.Infof("Prompts loaded: %s", pack.Summary())

	return pack, nil
}
