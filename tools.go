//go:build tools
// +build tools

// Package tools declares tool dependencies for this module.
//
// These imports are not used at runtime. They exist solely to ensure that
// mockgen, invoked via `go generate`, is tracked as an explicit module dependency.
package chat_rooms

import (
	_ "go.uber.org/mock/mockgen"
)
