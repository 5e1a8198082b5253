// Package workspace handles all file system placement of generated
// artifacts: the per-colleague output folder, final artifact names, and
// conflict resolution for anything whose presence policy forbids
// overwriting.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cristianhs/one-on-one/internal/errors"
	"github.com/cristianhs/one-on-one/internal/models"
)

// maxSuffixAttempts bounds the numbered-name search; beyond it the
// search surfaces NameConflictExhausted instead of scanning forever.
var maxSuffixAttempts = 1000

// Sink receives the file writes of a run. The dry-run sink drops them,
// which lets every serializer run its full transformation without a
// single byte reaching the output root.
type Sink interface {
	MkdirAll(path string) error
	WriteFile(path string, data []byte) error
}

type fsSink struct{}

func (fsSink) MkdirAll(path string) error {
	return os.MkdirAll(path, 0755)
}

func (fsSink) WriteFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0644)
}

type nullSink struct{}

func (nullSink) MkdirAll(string) error          { return nil }
func (nullSink) WriteFile(string, []byte) error { return nil }

// Manager allocates colleague folders under one output root and writes
// composed artifacts through its sink.
type Manager struct {
	base   string
	sink   Sink
	dryRun bool
}

// NewManager creates a workspace manager rooted at base. With dryRun
// set, nothing is ever written or created.
func NewManager(base string, dryRun bool) *Manager {
	m := &Manager{base: base, dryRun: dryRun}
	if dryRun {
		m.sink = nullSink{}
	} else {
		m.sink = fsSink{}
	}
	return m
}

// DryRun reports whether this workspace drops all writes
func (m *Manager) DryRun() bool {
	return m.dryRun
}

// ColleagueDir returns (creating unless dry-run) the sanitized
// per-colleague folder under the output root.
func (m *Manager) ColleagueDir(fullName string) (string, error) {
	dir := filepath.Join(m.base, SanitizeName(fullName))
	if err := m.sink.MkdirAll(dir); err != nil {
		return "", errors.StorageError("create colleague folder", err)
	}
	return dir, nil
}

// SanitizeName maps a display name to a file-system-safe form. Illegal
// runes are replaced with %XX escapes of their UTF-8 bytes rather than
// stripped, so two names differing only in an illegal rune never
// collapse to the same folder.
func SanitizeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if legalNameRune(r) {
			b.WriteRune(r)
		} else {
			for _, byt := range []byte(string(r)) {
				fmt.Fprintf(&b, "%%%02X", byt)
			}
		}
	}
	return strings.TrimSpace(b.String())
}

func legalNameRune(r rune) bool {
	if r < 0x20 || r == 0x7f {
		return false
	}
	switch r {
	case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
		return false
	}
	return true
}

// UniqueName finds the first free "base.ext", "base (1).ext",
// "base (2).ext", ... inside dir. The search is bounded; past the bound
// it reports NameConflictExhausted.
func (m *Manager) UniqueName(dir, base, ext string) (string, error) {
	candidate := base + ext
	for n := 0; n <= maxSuffixAttempts; n++ {
		if n > 0 {
			candidate = fmt.Sprintf("%s (%d)%s", base, n, ext)
		}
		if _, err := os.Stat(filepath.Join(dir, candidate)); os.IsNotExist(err) {
			return candidate, nil
		}
	}
	return "", errors.NameConflictExhausted(base + ext)
}

// WriteArtifact resolves the artifact's final name per its policy and
// writes its payload in one pass. Returns the artifact's root path.
func (m *Manager) WriteArtifact(dir string, a *models.Artifact) (string, error) {
	name := a.Name
	if a.Policy == models.OverwriteForbidden {
		ext := filepath.Ext(name)
		base := strings.TrimSuffix(name, ext)
		resolved, err := m.UniqueName(dir, base, ext)
		if err != nil {
			return "", err
		}
		name = resolved
	}

	root := filepath.Join(dir, name)

	rels := make([]string, 0, len(a.Files))
	for rel := range a.Files {
		rels = append(rels, rel)
	}
	sort.Strings(rels)

	for _, rel := range rels {
		target := root
		if rel != "" {
			target = filepath.Join(root, filepath.FromSlash(rel))
		}
		if err := m.sink.MkdirAll(filepath.Dir(target)); err != nil {
			return "", errors.StorageError("create artifact folder", err)
		}
		if err := m.sink.WriteFile(target, a.Files[rel]); err != nil {
			return "", errors.StorageError(fmt.Sprintf("write %s", name), err)
		}
	}
	return root, nil
}

// SavePhoto stores the unconverted source photo in the colleague
// folder for the vault collaborator to pick up.
func (m *Manager) SavePhoto(dir string, photo []byte) (string, error) {
	path := filepath.Join(dir, "profile_photo.jpg")
	if err := m.sink.WriteFile(path, photo); err != nil {
		return "", errors.StorageError("save profile photo", err)
	}
	return path, nil
}
