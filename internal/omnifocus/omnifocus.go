// Package omnifocus manages the per-colleague task-manager tag through
// the osascript bridge. Only status and tag ids cross the boundary;
// all task data stays in the task manager.
package omnifocus

import (
	"context"
	"fmt"
	"log"
	"os/exec"
	"strings"
	"time"

	"github.com/cristianhs/one-on-one/internal/errors"
)

const (
	createTimeout = 15 * time.Second
	lookupTimeout = 10 * time.Second
)

// The scripts search three tag levels; deeper nesting is not used by
// the one-on-one tag layout.
const createTagScript = `
tell application "OmniFocus"
	tell default document
		set parentTag to missing value
		set tagID to %q

		repeat with aTag in tags
			if id of aTag as string is tagID then
				set parentTag to aTag
				exit repeat
			end if
		end repeat

		if parentTag is missing value then
			repeat with topTag in tags
				repeat with childTag in tags of topTag
					if id of childTag as string is tagID then
						set parentTag to childTag
						exit repeat
					end if
					repeat with grandTag in tags of childTag
						if id of grandTag as string is tagID then
							set parentTag to grandTag
							exit repeat
						end if
					end repeat
					if parentTag is not missing value then exit repeat
				end repeat
				if parentTag is not missing value then exit repeat
			end repeat
		end if

		if parentTag is missing value then
			return "Error: parent tag not found"
		end if

		set childExists to false
		repeat with childTag in tags of parentTag
			if (name of childTag) as string is %q then
				set childExists to true
				exit repeat
			end if
		end repeat

		if childExists then
			return "Tag already exists"
		else
			make new tag at parentTag with properties {name:%q}
			return "Created tag"
		end if
	end tell
end tell
`

const findTagScript = `
tell application "OmniFocus"
	tell default document
		repeat with level1Tag in tags
			if name of level1Tag is %q then
				return id of level1Tag as string
			end if
			repeat with level2Tag in tags of level1Tag
				if name of level2Tag is %q then
					return id of level2Tag as string
				end if
				repeat with level3Tag in tags of level2Tag
					if name of level3Tag is %q then
						return id of level3Tag as string
					end if
				end repeat
			end repeat
		end repeat
		return "NOT_FOUND"
	end tell
end tell
`

// Bridge drives the task manager over osascript.
type Bridge struct {
	parentTagID string
	logger      *log.Logger

	// run is swappable for tests.
	run func(ctx context.Context, script string) (string, error)
}

func NewBridge(parentTagID string) *Bridge {
	return &Bridge{
		parentTagID: parentTagID,
		logger:      log.New(log.Writer(), "[omnifocus] ", log.LstdFlags),
		run:         runOsascript,
	}
}

func runOsascript(ctx context.Context, script string) (string, error) {
	out, err := exec.CommandContext(ctx, "osascript", "-e", script).Output()
	return strings.TrimSpace(string(out)), err
}

// EnsureTag creates the colleague tag under the configured parent tag.
// Creation is idempotent: an existing tag of the same name is reported
// as success.
func (b *Bridge) EnsureTag(ctx context.Context, tagName string) error {
	if b.parentTagID == "" {
		return errors.ConfigurationError("no parent tag id configured")
	}

	ctx, cancel := context.WithTimeout(ctx, createTimeout)
	defer cancel()

	script := fmt.Sprintf(createTagScript, b.parentTagID, tagName, tagName)
	out, err := b.run(ctx, script)
	if err != nil {
		return errors.BridgeError("create tag", err)
	}
	if strings.HasPrefix(out, "Error:") {
		return errors.BridgeError("create tag", fmt.Errorf("%s", out))
	}

	b.logger.Printf("%s: %s", out, tagName)
	return nil
}

// FindTagID resolves the colleague tag to its id. When the child tag
// cannot be found the parent tag id is returned so the perspective
// still filters on something meaningful.
func (b *Bridge) FindTagID(ctx context.Context, tagName string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()

	script := fmt.Sprintf(findTagScript, tagName, tagName, tagName)
	out, err := b.run(ctx, script)
	if err != nil {
		return "", errors.BridgeError("look up tag id", err)
	}
	if out == "" || out == "NOT_FOUND" {
		b.logger.Printf("tag %q not found, falling back to parent tag id", tagName)
		return b.parentTagID, nil
	}
	return out, nil
}
