//go:build tools

package tools

// Tracks tool dependencies so go mod tidy keeps them pinned.

import (
	_ "github.com/oapi-codegen/oapi-codegen/v2/cmd/oapi-codegen"
	_ "github.com/pressly/goose/v3/cmd/goose"
)
