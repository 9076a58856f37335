//go:build !dev

package api

import _ "embed"

//go:embed openapi.yaml
var openAPISpec []byte

func openAPILoad() ([]byte, error) { return openAPISpec, nil }
