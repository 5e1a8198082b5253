package identity

import (
	"regexp"
	"strings"
	"testing"

	"github.com/cristianhs/one-on-one/internal/errors"
)

var macroIDPattern = regexp.MustCompile(`^[0-9A-F]{8}-[0-9A-F]{4}-[0-9A-F]{4}-[0-9A-F]{4}-[0-9A-F]{12}$`)

func TestNewMacroIDFormat(t *testing.T) {
	id := NewMacroID()
	if !macroIDPattern.MatchString(id) {
		t.Errorf("macro id %q is not an uppercase hyphenated UUID", id)
	}
}

func TestNewImageIDFormat(t *testing.T) {
	id := NewImageID()
	if len(id) != 32 {
		t.Errorf("image id %q has length %d, want 32", id, len(id))
	}
	if strings.ContainsRune(id, '-') {
		t.Errorf("image id %q contains hyphens", id)
	}
	if id != strings.ToUpper(id) {
		t.Errorf("image id %q is not uppercase", id)
	}
}

func TestIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewMacroID()
		if seen[id] {
			t.Fatalf("duplicate macro id %q", id)
		}
		seen[id] = true
	}
}

func TestChainRequire(t *testing.T) {
	chain := NewChain()
	id, err := chain.Require()
	if err != nil {
		t.Fatalf("Require on primed chain failed: %v", err)
	}
	if id != chain.MacroID {
		t.Errorf("Require returned %q, want %q", id, chain.MacroID)
	}
}

func TestChainRequireUnprimed(t *testing.T) {
	for _, chain := range []*Chain{nil, {}} {
		_, err := chain.Require()
		if err == nil {
			t.Fatal("expected error from unprimed chain")
		}
		if !errors.IsCode(err, errors.ErrCodeConfiguration) {
			t.Errorf("wrong error code: %v", err)
		}
	}
}
