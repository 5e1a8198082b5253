package obsidian

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cristianhs/one-on-one/internal/errors"
)

func TestCreateNote(t *testing.T) {
	vault := t.TempDir()
	v := NewVault(vault, "people")

	if err := v.CreateNote("Jane Doe", []byte("jpeg-bytes")); err != nil {
		t.Fatalf("CreateNote failed: %v", err)
	}

	personDir := filepath.Join(vault, "people", "Jane Doe")
	photo, err := os.ReadFile(filepath.Join(personDir, "Jane Doe.jpg"))
	if err != nil {
		t.Fatalf("photo not copied: %v", err)
	}
	if string(photo) != "jpeg-bytes" {
		t.Error("photo content mismatch")
	}

	note, err := os.ReadFile(filepath.Join(personDir, "Jane Doe.md"))
	if err != nil {
		t.Fatalf("note not written: %v", err)
	}
	content := string(note)
	if !strings.HasPrefix(content, "# Jane Doe\n") {
		t.Errorf("note heading wrong: %q", content)
	}
	if !strings.Contains(content, "![[Jane Doe.jpg|200]]") {
		t.Errorf("note missing photo embed: %q", content)
	}
}

func TestCreateNoteWithoutPhoto(t *testing.T) {
	vault := t.TempDir()
	v := NewVault(vault, "people")

	if err := v.CreateNote("Jane Doe", nil); err != nil {
		t.Fatalf("CreateNote failed: %v", err)
	}

	personDir := filepath.Join(vault, "people", "Jane Doe")
	if _, err := os.Stat(filepath.Join(personDir, "Jane Doe.jpg")); !os.IsNotExist(err) {
		t.Error("photo file created without photo bytes")
	}
	if _, err := os.Stat(filepath.Join(personDir, "Jane Doe.md")); err != nil {
		t.Errorf("note missing: %v", err)
	}
}

func TestCreateNotePreservesExisting(t *testing.T) {
	vault := t.TempDir()
	v := NewVault(vault, "people")

	personDir := filepath.Join(vault, "people", "Jane Doe")
	if err := os.MkdirAll(personDir, 0755); err != nil {
		t.Fatal(err)
	}
	original := filepath.Join(personDir, "Jane Doe.md")
	if err := os.WriteFile(original, []byte("my meeting notes"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := v.CreateNote("Jane Doe", nil); err != nil {
		t.Fatalf("CreateNote failed: %v", err)
	}

	kept, err := os.ReadFile(original)
	if err != nil || string(kept) != "my meeting notes" {
		t.Errorf("existing note changed: %q, %v", kept, err)
	}
	if _, err := os.Stat(filepath.Join(personDir, "Jane Doe (1).md")); err != nil {
		t.Errorf("numbered note missing: %v", err)
	}
}

func TestCreateNoteConflictExhaustion(t *testing.T) {
	prev := noteSuffixAttempts
	noteSuffixAttempts = 2
	defer func() { noteSuffixAttempts = prev }()

	vault := t.TempDir()
	v := NewVault(vault, "people")

	personDir := filepath.Join(vault, "people", "Jane Doe")
	if err := os.MkdirAll(personDir, 0755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"Jane Doe.md", "Jane Doe (1).md", "Jane Doe (2).md"} {
		if err := os.WriteFile(filepath.Join(personDir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	err := v.CreateNote("Jane Doe", nil)
	if !errors.IsCode(err, errors.ErrCodeNameConflictExhausted) {
		t.Errorf("expected name conflict exhaustion, got %v", err)
	}
}

func TestUnconfiguredVaultSkips(t *testing.T) {
	var v *Vault = NewVault("", "people")
	if v != nil {
		t.Fatal("expected nil vault without a path")
	}
	if err := v.CreateNote("Jane Doe", nil); err != nil {
		t.Errorf("nil vault should skip cleanly: %v", err)
	}
}
