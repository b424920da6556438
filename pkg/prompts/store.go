package prompts

import (
	"sync"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Path  string `envconfig:"PROMPTS_PATH" default:"prompts.yaml"`
	Watch bool   `envconfig:"PROMPTS_WATCH" default:"true"`
}

func LoadConfig() (cfg *Config, err error) {
	cfg = new(Config)
	err = envconfig.Process("prompts", cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load prompts config")
	}

	return cfg, nil
}

// Store serves the current prompt pack and swaps it on reload. A failed reload
// keeps the previous pack.
type Store struct {
	path    string
	mu      sync.RWMutex
	current *Pack
}

func NewStore(path string) (*Store, error) {
	pack, err := Load(path)
	if err != nil {
		return nil, err
	}

	return &Store{path: path, current: pack}, nil
}

// NewStaticStore wraps an already parsed pack, reload is a no-op without a path.
func NewStaticStore(pack *Pack) *Store {
	return &Store{current: pack}
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Current() *Pack {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.current
}

func (s *Store) Reload() (*Pack, error) {
	if s.path == "" {
		return s.Current(), nil
	}

	pack, err := Load(s.path)
	if err != nil {
		logrus.Errorf("keeping previous prompt pack: %v", err)
		return nil, err
	}

	s.mu.Lock()
	s.current = pack
	s.mu.Unlock()

	return pack, nil
}
