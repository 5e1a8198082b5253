// Package identity mints the unique identifiers generated artifacts
// carry and records the link one artifact embeds to reference another.
package identity

import (
	"strings"

	"github.com/google/uuid"

	"github.com/cristianhs/one-on-one/internal/errors"
)

// NewMacroID returns a fresh macro identifier in the uppercase
// hyphenated form the automation host stores.
func NewMacroID() string {
	return strings.ToUpper(uuid.NewString())
}

// NewImageID returns a fresh asset identifier in the compact uppercase
// form the action-package image layout uses.
func NewImageID() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
}

// Chain carries the macro identifier from the macro serializer to the
// action-package serializer. The macro id is minted exactly once, before
// either artifact is built; the action package never mints its own
// reference.
type Chain struct {
	MacroID string
}

// NewChain mints the chain's identifiers up front
func NewChain() *Chain {
	return &Chain{MacroID: NewMacroID()}
}

// Require returns the macro id, or a ConfigurationError when the chain
// was never primed. Serializers that embed the link call this first and
// fail fast rather than generate a mismatched reference.
func (c *Chain) Require() (string, error) {
	if c == nil || c.MacroID == "" {
		return "", errors.ConfigurationError("no macro identifier supplied for artifact linking")
	}
	return c.MacroID, nil
}
