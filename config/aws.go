package config

import (
	"errors"
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

var ErrInvalidAWSCredentials = errors.New("invalid AWS credentials")

// AWSCredentials are static credentials picked up from AWS_ACCESS_KEY_ID,
// AWS_SECRET_ACCESS_KEY and AWS_SESSION_TOKEN.
type AWSCredentials struct {
	AccessKeyID     string `envconfig:"ACCESS_KEY_ID"`
	SecretAccessKey string `envconfig:"SECRET_ACCESS_KEY"`
	SessionToken    string `envconfig:"SESSION_TOKEN"`
}

func (c AWSCredentials) Valid() error {
	if c.AccessKeyID == "" {
		return fmt.Errorf("invalid access key id: %w", ErrInvalidAWSCredentials)
	}
	if c.SecretAccessKey == "" {
		return fmt.Errorf("invalid access secret key: %w", ErrInvalidAWSCredentials)
	}
	return nil
}

func LoadAWSCredentials() (AWSCredentials, error) {
	var creds AWSCredentials
	if err := envconfig.Process("AWS", &creds); err != nil {
		return AWSCredentials{}, fmt.Errorf("processing config: %w", err)
	}
	return creds, nil
}
