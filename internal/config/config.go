// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package config loads settings from a dotenv file.
//
// Values from the process environment always win over values from the file,
// so a deployed service can override whatever the file says.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// DefaultFile is the dotenv file looked up in the working directory.
const DefaultFile = ".env"

// Getenv reads the dotenv file at path and returns a lookup function that
// consults environ first and falls back to the file. A missing file is not an
// error.
func Getenv(path string, environ func(string) string) (func(string) string, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return environ, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	return func(key string) string {
		if val := environ(key); val != "" {
			return val
		}
		return strings.TrimSpace(v.GetString(key))
	}, nil
}
