// Package service runs the onboarding pipeline for one colleague:
// workspace folder, profile photo, icon renditions, task-manager tag,
// the three importable artifacts, and the vault note.
package service

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/cristianhs/one-on-one/internal/config"
	"github.com/cristianhs/one-on-one/internal/errors"
	"github.com/cristianhs/one-on-one/internal/icons"
	"github.com/cristianhs/one-on-one/internal/identity"
	"github.com/cristianhs/one-on-one/internal/models"
	"github.com/cristianhs/one-on-one/internal/serializer"
	"github.com/cristianhs/one-on-one/internal/workspace"
)

// PhotoFetcher resolves a handle to profile photo bytes. A (nil, nil)
// return means "no photo available", which the pipeline degrades from.
type PhotoFetcher interface {
	FetchPhoto(ctx context.Context, handle string) ([]byte, error)
}

// TagManager maintains the per-colleague tag in the task manager.
type TagManager interface {
	EnsureTag(ctx context.Context, tagName string) error
	FindTagID(ctx context.Context, tagName string) (string, error)
}

// NoteWriter creates the colleague's note in the notes vault.
type NoteWriter interface {
	CreateNote(fullName string, photo []byte) error
}

// Service wires the collaborators into the pipeline. Photos, Tags and
// Notes may each be nil; the pipeline then runs on its fallbacks.
type Service struct {
	cfg    *config.Config
	ws     *workspace.Manager
	photos PhotoFetcher
	tags   TagManager
	notes  NoteWriter
	dryRun bool
	logger *log.Logger
}

func New(cfg *config.Config, ws *workspace.Manager, photos PhotoFetcher, tags TagManager, notes NoteWriter, dryRun bool) *Service {
	return &Service{
		cfg:    cfg,
		ws:     ws,
		photos: photos,
		tags:   tags,
		notes:  notes,
		dryRun: dryRun,
		logger: log.New(log.Writer(), "[pipeline] ", log.LstdFlags),
	}
}

// ArtifactResult records one artifact's outcome. Path is empty when
// the build failed or the run was dry.
type ArtifactResult struct {
	Kind string
	Name string
	Path string
	Err  error
}

// Report is the run summary the CLI renders. A run counts as failed
// only when every artifact failed.
type Report struct {
	Colleague string
	Handle    string
	Dir       string
	HasPhoto  bool
	DryRun    bool
	Artifacts []ArtifactResult
	Warnings  []error
	NoteErr   error
}

func (r *Report) AllFailed() bool {
	if len(r.Artifacts) == 0 {
		return true
	}
	for _, a := range r.Artifacts {
		if a.Err == nil {
			return false
		}
	}
	return true
}

// Run executes the pipeline for one colleague. Collaborator and
// per-artifact failures are collected into the report; only failures
// that leave nothing to report (workspace, identity) abort the run.
func (s *Service) Run(ctx context.Context, fullName, handle string) (*Report, error) {
	report := &Report{Colleague: fullName, Handle: handle, DryRun: s.dryRun}

	dir, err := s.ws.ColleagueDir(fullName)
	if err != nil {
		return nil, err
	}
	report.Dir = dir

	photo := s.fetchPhoto(ctx, handle, report)
	profile := &models.ColleagueProfile{FullName: fullName, Handle: handle, Photo: photo}
	report.HasPhoto = profile.HasPhoto()

	// The stored copy is normalized to JPEG at the configured quality;
	// renditions are built from the untouched source.
	var photoJPEG []byte
	if profile.HasPhoto() {
		photoJPEG = icons.EncodeJPEG(photo, s.cfg.Icons.JPEGQuality)
		if _, err := s.ws.SavePhoto(dir, photoJPEG); err != nil {
			report.Warnings = append(report.Warnings, err)
		}
	}

	iconSet := icons.Build(photo, s.cfg.Icons)
	report.Warnings = append(report.Warnings, iconSet.Warnings...)

	tagID := s.resolveTag(ctx, fullName, report)

	chain := identity.NewChain()
	macroID, err := chain.Require()
	if err != nil {
		return nil, err
	}

	// Each template is loaded inside its own build: an unreadable or
	// malformed template fails that artifact alone.
	builds := []struct {
		kind  string
		build func() (*models.Artifact, error)
	}{
		{"perspective", func() (*models.Artifact, error) {
			tpl, err := s.loadPerspectiveTemplate()
			if err != nil {
				return nil, err
			}
			return serializer.BuildPerspective(tpl, fullName, tagID, iconSet.Perspective)
		}},
		{"macro", func() (*models.Artifact, error) {
			tpl, err := readTemplate("macro", s.cfg.Templates.MacroFile)
			if err != nil {
				return nil, err
			}
			return serializer.BuildMacro(tpl, fullName, iconSet.Macro, macroID)
		}},
		{"action", func() (*models.Artifact, error) {
			tpl, err := readTemplate("action", s.cfg.Templates.ActionFile)
			if err != nil {
				return nil, err
			}
			return serializer.BuildActionPackage(tpl, fullName, iconSet.Action, macroID)
		}},
	}

	for _, b := range builds {
		result := ArtifactResult{Kind: b.kind}
		artifact, err := b.build()
		if err != nil {
			s.logger.Printf("%s failed: %v", b.kind, err)
			result.Err = err
		} else {
			result.Name = artifact.Name
			path, err := s.ws.WriteArtifact(dir, artifact)
			if err != nil {
				result.Err = err
			} else {
				result.Path = path
			}
		}
		report.Artifacts = append(report.Artifacts, result)
	}

	if s.notes != nil && !s.dryRun {
		if err := s.notes.CreateNote(fullName, photoJPEG); err != nil {
			report.NoteErr = err
		}
	}

	return report, nil
}

// fetchPhoto runs in dry mode too: the lookup is read-only and the
// artifacts must come out identical to a real run.
func (s *Service) fetchPhoto(ctx context.Context, handle string, report *Report) []byte {
	if s.photos == nil {
		return nil
	}
	photo, err := s.photos.FetchPhoto(ctx, handle)
	if err != nil {
		s.logger.Printf("photo fetch failed: %v", err)
		report.Warnings = append(report.Warnings, err)
		return nil
	}
	return photo
}

// resolveTag creates the colleague tag and resolves its id. Without a
// tag manager (or when creation fails) the configured parent tag id is
// the fallback; the perspective serializer rejects an empty id itself.
func (s *Service) resolveTag(ctx context.Context, fullName string, report *Report) string {
	if s.tags == nil {
		return s.cfg.OmniFocus.ParentTagID
	}

	if !s.dryRun {
		if err := s.tags.EnsureTag(ctx, fullName); err != nil {
			report.Warnings = append(report.Warnings, err)
			return s.cfg.OmniFocus.ParentTagID
		}
	}

	tagID, err := s.tags.FindTagID(ctx, fullName)
	if err != nil {
		report.Warnings = append(report.Warnings, err)
		return s.cfg.OmniFocus.ParentTagID
	}
	return tagID
}

func (s *Service) loadPerspectiveTemplate() (serializer.PerspectiveTemplate, error) {
	descriptor, err := readTemplate("perspective", filepath.Join(s.cfg.Templates.PerspectiveDir, "Info-v3.plist"))
	if err != nil {
		return serializer.PerspectiveTemplate{}, err
	}
	// The bundle icon is optional; a colleague rendition usually
	// replaces it anyway.
	bundleIcon, err := os.ReadFile(filepath.Join(s.cfg.Templates.PerspectiveDir, "icon.png"))
	if err != nil {
		bundleIcon = nil
	}
	return serializer.PerspectiveTemplate{Descriptor: descriptor, Icon: bundleIcon}, nil
}

func readTemplate(kind, path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfiguration,
			fmt.Sprintf("%s template unreadable at %s", kind, path))
	}
	return data, nil
}
