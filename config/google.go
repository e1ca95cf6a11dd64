package config

import (
	"errors"
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

var ErrInvalidGoogleCreds = errors.New("invalid google application credentials")

type Google struct {
	ApplicationCredentials string `split_words:"true"`
}

func (g Google) Valid() error {
	if g.ApplicationCredentials == "" {
		return ErrInvalidGoogleCreds
	}
	return nil
}

func LoadGoogle() (Google, error) {
	var cfg Google
	if err := envconfig.Process("GOOGLE", &cfg); err != nil {
		return Google{}, fmt.Errorf("processing config: %w", err)
	}
	if err := cfg.Valid(); err != nil {
		return Google{}, err
	}
	return cfg, nil
}
