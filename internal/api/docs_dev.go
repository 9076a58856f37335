//go:build dev

package api

import "os"

func openAPILoad() ([]byte, error) { return os.ReadFile("internal/api/openapi.yaml") }
