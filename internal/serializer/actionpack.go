package serializer

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cristianhs/one-on-one/internal/errors"
	"github.com/cristianhs/one-on-one/internal/icons"
	"github.com/cristianhs/one-on-one/internal/identity"
	"github.com/cristianhs/one-on-one/internal/models"
	"github.com/cristianhs/one-on-one/internal/template"
	"github.com/cristianhs/one-on-one/internal/workspace"
)

// BuildActionPackage produces the importable button package for a
// colleague: the template ZIP is extracted into a scratch directory,
// its manifests are rewritten, the button image is replaced, and the
// tree is repacked. The scratch directory is removed on every exit
// path.
//
// macroID is the automation reference the button fires; without it the
// serializer fails fast rather than emit a button wired to the
// template's placeholder.
func BuildActionPackage(templateZip []byte, fullName string, icon *icons.Rendition, macroID string) (*models.Artifact, error) {
	if macroID == "" {
		return nil, errors.ConfigurationError("no macro identifier supplied for action package")
	}

	scratch, err := os.MkdirTemp("", "one-on-one-action-")
	if err != nil {
		return nil, errors.StorageError("create scratch directory", err)
	}
	defer os.RemoveAll(scratch)

	if err := extractZip(templateZip, scratch); err != nil {
		return nil, err
	}

	profileDir, err := findProfileDir(scratch)
	if err != nil {
		return nil, err
	}

	if err := rewriteManifests(profileDir, fullName, macroID, icon); err != nil {
		return nil, err
	}

	packed, err := packZip(scratch)
	if err != nil {
		return nil, err
	}

	name := fmt.Sprintf("%s%s.streamDeckAction", macroNamePrefix, workspace.SanitizeName(fullName))
	return models.SingleFile("action", name, packed, models.OverwriteAllowed), nil
}

// rewriteManifests applies colleague substitution to every manifest in
// the profile tree and overwrites the automation reference of the
// first action found. The replacement icon is staged in that manifest's
// own Images/ directory, where its relative state reference resolves.
// The action's grid position is a template invariant and stays
// untouched.
func rewriteManifests(profileDir, fullName, macroID string, icon *icons.Rendition) error {
	linked := false

	err := filepath.Walk(profileDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || info.Name() != "manifest.json" {
			return nil
		}

		raw, err := os.ReadFile(path)
		if err != nil {
			return errors.StorageError("read manifest", err)
		}

		doc, err := template.DecodeJSON(raw)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeTemplateFormat, fmt.Sprintf("manifest %s is not valid JSON", info.Name()))
		}

		doc = template.Substitute(doc, template.PlaceholderMap{
			template.TokenColleagueName: fullName,
		})

		if !linked {
			if action := findLinkableAction(doc); action != nil {
				wireAction(action, macroID, stageIcon(filepath.Dir(path), icon))
				linked = true
			}
		}

		out, err := template.EncodeJSON(doc)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeTemplateFormat, "failed to re-encode manifest")
		}
		return os.WriteFile(path, out, 0644)
	})
	if err != nil {
		return err
	}

	if !linked {
		return errors.TemplateFormatError("Controllers[].Actions")
	}
	return nil
}

// findLinkableAction returns the first action with settings, or nil.
func findLinkableAction(doc *template.Node) *template.Node {
	controllers := doc.Get("Controllers")
	if controllers == nil || controllers.Kind != template.KindArray {
		return nil
	}

	for _, controller := range controllers.Array {
		actions := controller.Get("Actions")
		if actions == nil || actions.Kind != template.KindDict || len(actions.Dict) == 0 {
			continue
		}

		action := actions.Dict[0].Value
		if settings := action.Get("Settings"); settings != nil && settings.Kind == template.KindDict {
			return action
		}
	}
	return nil
}

// stageIcon writes the rendition into manifestDir/Images under a fresh
// asset id and returns the manifest-relative reference. Staging
// degrades gracefully: on any failure the template image stays and
// only visual identification is lost.
func stageIcon(manifestDir string, icon *icons.Rendition) string {
	if icon == nil {
		return ""
	}
	imageName := identity.NewImageID() + ".png"
	imagesDir := filepath.Join(manifestDir, "Images")
	if err := os.MkdirAll(imagesDir, 0755); err != nil {
		return ""
	}
	if err := os.WriteFile(filepath.Join(imagesDir, imageName), icon.Data, 0644); err != nil {
		return ""
	}
	return "Images/" + imageName
}

// wireAction overwrites the action's automation reference, and its
// state images when a replacement was staged.
func wireAction(action *template.Node, macroID, imageRef string) {
	action.Get("Settings").Set("uid", template.String(macroID))

	if imageRef == "" {
		return
	}
	if states := action.Get("States"); states != nil && states.Kind == template.KindArray {
		for _, state := range states.Array {
			if state.Kind == template.KindDict {
				state.Set("Image", template.String(imageRef))
			}
		}
	}
}

func findProfileDir(scratch string) (string, error) {
	entries, err := os.ReadDir(scratch)
	if err != nil {
		return "", errors.StorageError("scan scratch directory", err)
	}
	for _, e := range entries {
		if e.IsDir() && strings.HasSuffix(e.Name(), ".sdProfile") {
			return filepath.Join(scratch, e.Name()), nil
		}
	}
	return "", errors.TemplateFormatError(".sdProfile")
}

func extractZip(data []byte, dest string) error {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeTemplateFormat, "action template is not a valid ZIP package")
	}

	for _, f := range reader.File {
		target := filepath.Join(dest, filepath.FromSlash(f.Name))
		if !strings.HasPrefix(target, filepath.Clean(dest)+string(os.PathSeparator)) {
			return errors.TemplateFormatError(f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return errors.StorageError("extract template", err)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return errors.StorageError("extract template", err)
		}
		src, err := f.Open()
		if err != nil {
			return errors.StorageError("extract template", err)
		}
		content, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			return errors.StorageError("extract template", err)
		}
		if err := os.WriteFile(target, content, 0644); err != nil {
			return errors.StorageError("extract template", err)
		}
	}
	return nil
}

func packZip(root string) ([]byte, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		entry, err := w.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		_, err = entry.Write(data)
		return err
	})
	if err != nil {
		w.Close()
		return nil, errors.StorageError("repack action package", err)
	}

	if err := w.Close(); err != nil {
		return nil, errors.StorageError("repack action package", err)
	}
	return buf.Bytes(), nil
}
