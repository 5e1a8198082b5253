package serializer

import (
	"fmt"
	"time"

	"github.com/cristianhs/one-on-one/internal/errors"
	"github.com/cristianhs/one-on-one/internal/icons"
	"github.com/cristianhs/one-on-one/internal/models"
	"github.com/cristianhs/one-on-one/internal/template"
	"github.com/cristianhs/one-on-one/internal/workspace"
)

// macroNamePrefix is the fixed naming convention for generated macros
const macroNamePrefix = "One-to-One - "

// appleEpochOffset converts Unix seconds to the host's reference date
// (seconds since 2001-01-01 UTC)
const appleEpochOffset = 978307200

// BuildMacro produces the importable macro file for a colleague. The
// template file wraps the template macro in its enclosing group; the
// output wraps the single modified macro in that same group so the
// importer files it alongside the template.
//
// macroID is required: the template's own identifier must never survive
// into the output, or every generated colleague would collide on one
// identifier inside the automation host.
func BuildMacro(templatePlist []byte, fullName string, icon *icons.Rendition, macroID string) (*models.Artifact, error) {
	if macroID == "" {
		return nil, errors.ConfigurationError("no macro identifier supplied for macro artifact")
	}

	root, err := template.DecodePlist(templatePlist)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeTemplateFormat, "macro template is not a valid property list")
	}
	if root.Kind != template.KindArray || len(root.Array) == 0 {
		return nil, errors.TemplateFormatError("macro group array")
	}

	group, macro := findTemplateMacro(root)
	if macro == nil {
		return nil, errors.TemplateFormatError("Macros")
	}

	actions := macro.Get("Actions")
	if actions == nil || actions.Kind != template.KindArray {
		return nil, errors.TemplateFormatError("Actions")
	}

	// (a) placeholder substitution over the action parameters
	substituted := template.Substitute(actions, template.PlaceholderMap{
		template.TokenObsidianNoteName: fullName,
		template.TokenPerspectiveName:  fullName,
	})

	out := macro.Clone()
	out.Set("Actions", substituted)

	// (b) fixed naming convention
	out.Set("Name", template.String(macroNamePrefix+fullName))

	// (c) fresh identity: overwrite, never substitution
	out.Set("UID", template.String(macroID))
	out.Set("ModificationDate", template.Real(appleTime(time.Now())))

	// (d) icon embedding, keeping the template bytes when conversion failed
	if icon != nil {
		out.Set("CustomIconData", template.DataNode(icon.Data))
	}

	wrapped := group.Clone()
	wrapped.Set("Macros", &template.Node{Kind: template.KindArray, Array: []*template.Node{out}})

	data, err := template.EncodePlistXML(&template.Node{Kind: template.KindArray, Array: []*template.Node{wrapped}})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeTemplateFormat, "failed to serialize macro")
	}

	name := fmt.Sprintf("%s%s.kmmacros", macroNamePrefix, workspace.SanitizeName(fullName))
	return models.SingleFile("macro", name, data, models.OverwriteAllowed), nil
}

// findTemplateMacro locates the first group holding at least one macro
func findTemplateMacro(root *template.Node) (group, macro *template.Node) {
	for _, g := range root.Array {
		macros := g.Get("Macros")
		if macros == nil || macros.Kind != template.KindArray || len(macros.Array) == 0 {
			continue
		}
		if macros.Array[0].Kind != template.KindDict {
			continue
		}
		return g, macros.Array[0]
	}
	return nil, nil
}

func appleTime(t time.Time) float64 {
	return float64(t.Unix() - appleEpochOffset)
}
