// Package obsidian writes the colleague's person note into a notes
// vault: a folder per person, a photo copy, and a markdown note
// embedding it.
package obsidian

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/cristianhs/one-on-one/internal/errors"
	"github.com/cristianhs/one-on-one/internal/workspace"
)

// noteSuffixAttempts bounds the conflict numbering. Notes are kept
// forever; the existing ones must never be overwritten.
var noteSuffixAttempts = 100

// Vault points at a notes vault on disk. A nil Vault skips cleanly,
// which is how an unconfigured vault behaves.
type Vault struct {
	vaultPath    string
	peopleFolder string
	logger       *log.Logger
}

// NewVault returns nil when no vault path is configured.
func NewVault(vaultPath, peopleFolder string) *Vault {
	if vaultPath == "" {
		return nil
	}
	if peopleFolder == "" {
		peopleFolder = "people"
	}
	return &Vault{
		vaultPath:    vaultPath,
		peopleFolder: peopleFolder,
		logger:       log.New(log.Writer(), "[obsidian] ", log.LstdFlags),
	}
}

// CreateNote writes the person folder, the photo copy and the note.
// The photo is optional. Existing notes are preserved with numbered
// filenames.
func (v *Vault) CreateNote(fullName string, photo []byte) error {
	if v == nil {
		return nil
	}

	name := workspace.SanitizeName(fullName)
	personDir := filepath.Join(v.vaultPath, v.peopleFolder, name)
	if err := os.MkdirAll(personDir, 0755); err != nil {
		return errors.StorageError("create person folder", err)
	}

	if len(photo) > 0 {
		photoPath := filepath.Join(personDir, name+".jpg")
		if err := os.WriteFile(photoPath, photo, 0644); err != nil {
			return errors.StorageError("copy photo to vault", err)
		}
	}

	noteName, err := v.uniqueNoteName(personDir, name)
	if err != nil {
		return err
	}

	content := fmt.Sprintf("# %s\n\n![[%s.jpg|200]]\n", fullName, name)
	if err := os.WriteFile(filepath.Join(personDir, noteName), []byte(content), 0644); err != nil {
		return errors.StorageError("write person note", err)
	}

	v.logger.Printf("created note %s", filepath.Join(v.peopleFolder, name, noteName))
	return nil
}

func (v *Vault) uniqueNoteName(personDir, name string) (string, error) {
	candidate := name + ".md"
	if _, err := os.Stat(filepath.Join(personDir, candidate)); os.IsNotExist(err) {
		return candidate, nil
	}

	for n := 1; n <= noteSuffixAttempts; n++ {
		candidate = fmt.Sprintf("%s (%d).md", name, n)
		if _, err := os.Stat(filepath.Join(personDir, candidate)); os.IsNotExist(err) {
			return candidate, nil
		}
	}
	return "", errors.NameConflictExhausted(name + ".md")
}
