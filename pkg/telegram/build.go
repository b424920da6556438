package telegram

import "rembot/pkg/msg"

func BuildBot(h msg.Handler) (*Bot, error) {
	config, err := LoadConfig()
	if err != nil {
		return nil, err
	}

	return NewBot(config, h)
}
