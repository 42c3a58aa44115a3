// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package credentials loads conversion-service credentials from the
// process environment. An env file (default ".env") is merged in first
// when present; values already set in the real environment win.
package credentials

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/pdiddy/mathnotes/pkg/types"
)

// Environment variable names for the two credential values.
const (
	EnvAppID  = "MATHPIX_APP_ID"
	EnvAppKey = "MATHPIX_APP_KEY"
)

// Load reads credentials from the environment, merging envFile first if
// it exists. godotenv.Load never overrides variables already present in
// the environment, which gives the real environment precedence. Missing
// credentials are reported together so the user fixes both at once.
func Load(envFile string) (types.Credentials, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return types.Credentials{}, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	creds := types.Credentials{
		AppID:  os.Getenv(EnvAppID),
		AppKey: os.Getenv(EnvAppKey),
	}

	var missing []string
	if creds.AppID == "" {
		missing = append(missing, EnvAppID)
	}
	if creds.AppKey == "" {
		missing = append(missing, EnvAppKey)
	}
	if len(missing) > 0 {
		return types.Credentials{}, fmt.Errorf("missing credentials: set %v in the environment or %s", missing, envFile)
	}

	return creds, nil
}
