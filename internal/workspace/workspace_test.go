package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cristianhs/one-on-one/internal/errors"
	"github.com/cristianhs/one-on-one/internal/models"
)

func TestSanitizeNameKeepsDisplayForm(t *testing.T) {
	if got := SanitizeName("Jane Doe"); got != "Jane Doe" {
		t.Errorf("SanitizeName(Jane Doe) = %q", got)
	}
}

func TestSanitizeNameInjective(t *testing.T) {
	// Names differing only in an illegal rune must not collapse
	a := SanitizeName("Jane/Doe")
	b := SanitizeName("Jane:Doe")
	c := SanitizeName("Jane?Doe")
	if a == b || b == c || a == c {
		t.Errorf("sanitized names collapsed: %q %q %q", a, b, c)
	}
	for _, s := range []string{a, b, c} {
		if filepath.Base(s) != s {
			t.Errorf("sanitized name %q still contains a separator", s)
		}
	}
}

func TestColleagueDirCreated(t *testing.T) {
	m := NewManager(t.TempDir(), false)
	dir, err := m.ColleagueDir("Jane Doe")
	if err != nil {
		t.Fatalf("ColleagueDir failed: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Fatalf("colleague dir not created: %v", err)
	}
}

func TestUniqueNameNumbering(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir, false)

	// Empty folder: base name wins
	name, err := m.UniqueName(dir, "Jane Doe", ".md")
	if err != nil {
		t.Fatalf("UniqueName failed: %v", err)
	}
	if name != "Jane Doe.md" {
		t.Errorf("first name = %q, want Jane Doe.md", name)
	}

	if err := os.WriteFile(filepath.Join(dir, "Jane Doe.md"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	name, err = m.UniqueName(dir, "Jane Doe", ".md")
	if err != nil {
		t.Fatalf("UniqueName failed: %v", err)
	}
	if name != "Jane Doe (1).md" {
		t.Errorf("second name = %q, want Jane Doe (1).md", name)
	}

	if err := os.WriteFile(filepath.Join(dir, "Jane Doe (1).md"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	name, err = m.UniqueName(dir, "Jane Doe", ".md")
	if err != nil {
		t.Fatalf("UniqueName failed: %v", err)
	}
	if name != "Jane Doe (2).md" {
		t.Errorf("third name = %q, want Jane Doe (2).md", name)
	}
}

func TestUniqueNameExhausted(t *testing.T) {
	saved := maxSuffixAttempts
	maxSuffixAttempts = 2
	defer func() { maxSuffixAttempts = saved }()

	dir := t.TempDir()
	m := NewManager(dir, false)
	for _, f := range []string{"n.md", "n (1).md", "n (2).md"} {
		if err := os.WriteFile(filepath.Join(dir, f), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	_, err := m.UniqueName(dir, "n", ".md")
	if err == nil {
		t.Fatal("expected exhaustion error")
	}
	if !errors.IsCode(err, errors.ErrCodeNameConflictExhausted) {
		t.Errorf("wrong error code: %v", err)
	}
}

func TestWriteArtifactDirectoryPayload(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir, false)

	a := &models.Artifact{
		Kind: "perspective",
		Name: "Jane Doe.ofocus-perspective",
		Files: map[string][]byte{
			"Info-v3.plist": []byte("plist"),
			"icon.png":      []byte("png"),
		},
		Policy: models.OverwriteAllowed,
	}

	root, err := m.WriteArtifact(dir, a)
	if err != nil {
		t.Fatalf("WriteArtifact failed: %v", err)
	}

	for rel, want := range a.Files {
		data, err := os.ReadFile(filepath.Join(root, rel))
		if err != nil {
			t.Fatalf("payload file %s missing: %v", rel, err)
		}
		if string(data) != string(want) {
			t.Errorf("payload file %s corrupted", rel)
		}
	}
}

func TestWriteArtifactOverwriteAllowed(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir, false)

	a := models.SingleFile("macro", "m.kmmacros", []byte("first"), models.OverwriteAllowed)
	if _, err := m.WriteArtifact(dir, a); err != nil {
		t.Fatal(err)
	}

	a = models.SingleFile("macro", "m.kmmacros", []byte("second"), models.OverwriteAllowed)
	root, err := m.WriteArtifact(dir, a)
	if err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(root)
	if string(data) != "second" {
		t.Errorf("prior output not replaced: %q", data)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("overwrite-allowed artifact grew extra files: %d entries", len(entries))
	}
}

func TestWriteArtifactOverwriteForbidden(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir, false)

	a := models.SingleFile("note", "Jane Doe.md", []byte("one"), models.OverwriteForbidden)
	first, err := m.WriteArtifact(dir, a)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(first) != "Jane Doe.md" {
		t.Errorf("first write = %q", first)
	}

	a = models.SingleFile("note", "Jane Doe.md", []byte("two"), models.OverwriteForbidden)
	second, err := m.WriteArtifact(dir, a)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(second) != "Jane Doe (1).md" {
		t.Errorf("second write = %q, want Jane Doe (1).md", second)
	}

	data, _ := os.ReadFile(first)
	if string(data) != "one" {
		t.Error("forbidden-overwrite artifact was replaced")
	}
}

func TestDryRunWritesNothing(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir, true)

	colleagueDir, err := m.ColleagueDir("Jane Doe")
	if err != nil {
		t.Fatalf("ColleagueDir failed: %v", err)
	}

	a := models.SingleFile("macro", "m.kmmacros", []byte("data"), models.OverwriteAllowed)
	if _, err := m.WriteArtifact(colleagueDir, a); err != nil {
		t.Fatalf("WriteArtifact failed: %v", err)
	}
	if _, err := m.SavePhoto(colleagueDir, []byte("jpg")); err != nil {
		t.Fatalf("SavePhoto failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("dry run wrote %d entries to the output root", len(entries))
	}
}
