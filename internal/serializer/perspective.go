// Package serializer turns the three template documents into
// colleague-specific importable artifacts.
package serializer

import (
	"github.com/cristianhs/one-on-one/internal/errors"
	"github.com/cristianhs/one-on-one/internal/icons"
	"github.com/cristianhs/one-on-one/internal/models"
	"github.com/cristianhs/one-on-one/internal/template"
	"github.com/cristianhs/one-on-one/internal/workspace"
)

// Perspective bundle layout
const (
	perspectiveDescriptorName = "Info-v3.plist"
	perspectiveIconName       = "icon.png"
)

// Filter-rule keys whose tag lists reference the filtered person
var tagRuleKeys = map[string]bool{
	"actionHasAllOfTags": true,
	"actionHasAnyOfTags": true,
}

// PerspectiveTemplate is the raw template bundle: descriptor plist plus
// the icon asset it ships with.
type PerspectiveTemplate struct {
	Descriptor []byte
	Icon       []byte
}

// BuildPerspective produces the perspective bundle for a colleague. The
// descriptor's name becomes the colleague name and its tag-filter rules
// are rewritten to reference tagID. Tag rewriting is a targeted field
// replacement, not token substitution: the template's tag references
// are opaque identifiers, never human-readable markers.
func BuildPerspective(tpl PerspectiveTemplate, fullName, tagID string, icon *icons.Rendition) (*models.Artifact, error) {
	if tagID == "" {
		return nil, errors.ConfigurationError("no tag identifier supplied for perspective filter")
	}

	doc, err := template.DecodePlist(tpl.Descriptor)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeTemplateFormat, "perspective descriptor is not a valid property list")
	}
	if doc.Kind != template.KindDict {
		return nil, errors.TemplateFormatError("perspective descriptor root")
	}

	rulesJSON := doc.Get("filterRules")
	if rulesJSON == nil || rulesJSON.Kind != template.KindString {
		return nil, errors.TemplateFormatError("filterRules")
	}
	rules, err := template.DecodeJSON([]byte(rulesJSON.Str))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeTemplateFormat, "filterRules is not valid JSON")
	}

	rewriteTagRules(rules, tagID)
	encodedRules, err := template.EncodeJSON(rules)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeTemplateFormat, "failed to re-encode filterRules")
	}

	doc.Set("name", template.String(fullName))
	doc.Set("filterRules", template.String(string(encodedRules)))

	descriptor, err := template.EncodePlistBinary(doc)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeTemplateFormat, "failed to serialize perspective descriptor")
	}

	iconData := tpl.Icon
	if icon != nil {
		iconData = icon.Data
	}

	files := map[string][]byte{perspectiveDescriptorName: descriptor}
	if len(iconData) > 0 {
		files[perspectiveIconName] = iconData
	}

	return &models.Artifact{
		Kind:   "perspective",
		Name:   workspace.SanitizeName(fullName) + ".ofocus-perspective",
		Files:  files,
		Policy: models.OverwriteAllowed,
	}, nil
}

// rewriteTagRules replaces every tag id listed under a tag-rule key
// with the colleague's tag id, at any nesting depth.
func rewriteTagRules(n *template.Node, tagID string) {
	switch n.Kind {
	case template.KindArray:
		for _, item := range n.Array {
			rewriteTagRules(item, tagID)
		}
	case template.KindDict:
		for i, m := range n.Dict {
			if tagRuleKeys[m.Key] && m.Value.Kind == template.KindArray {
				tags := make([]*template.Node, len(m.Value.Array))
				for j := range tags {
					tags[j] = template.String(tagID)
				}
				n.Dict[i].Value = &template.Node{Kind: template.KindArray, Array: tags}
				continue
			}
			rewriteTagRules(m.Value, tagID)
		}
	}
}
