// Package icons converts one source photograph into the square raster
// renditions each downstream artifact embeds.
package icons

import (
	"bytes"
	"image"

	"github.com/disintegration/imaging"
	"golang.org/x/image/tiff"

	"github.com/cristianhs/one-on-one/internal/config"
	"github.com/cristianhs/one-on-one/internal/errors"
)

// Rendition is one size- and format-specific conversion of the source
// photo for one consuming artifact.
type Rendition struct {
	Target string
	Size   int
	Data   []byte
}

// Set holds the per-target renditions derived from one source photo.
// A nil rendition means conversion failed (or no photo was supplied)
// and the consuming serializer falls back to its template's icon.
type Set struct {
	// Unconverted source bytes, stored alongside the artifacts
	Original []byte

	Perspective *Rendition
	Macro       *Rendition
	Action      *Rendition

	// Conversion failures, one per dropped rendition
	Warnings []error
}

// Encoders are indirected so a single failing format drops only its own
// rendition; the split also keeps format policy out of the serializers.
var (
	encodePNG = func(img image.Image) ([]byte, error) {
		var buf bytes.Buffer
		if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	encodeTIFF = func(img image.Image) ([]byte, error) {
		var buf bytes.Buffer
		if err := tiff.Encode(&buf, img, &tiff.Options{Compression: tiff.Deflate}); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
)

// Build produces the full rendition set for one photo. Every rendition
// is attempted independently: a failure is recorded as a warning and
// the others still build. A nil/empty photo yields an empty set.
func Build(photo []byte, cfg config.IconsConfig) *Set {
	set := &Set{}
	if len(photo) == 0 {
		return set
	}
	set.Original = photo

	src, err := imaging.Decode(bytes.NewReader(photo))
	if err != nil {
		set.Warnings = append(set.Warnings, errors.ConversionError("source", err))
		return set
	}

	targets := []struct {
		name   string
		size   int
		encode func(image.Image) ([]byte, error)
		out    **Rendition
	}{
		{"perspective", cfg.PerspectiveSize, encodePNG, &set.Perspective},
		{"macro", cfg.MacroSize, encodeTIFF, &set.Macro},
		{"action", cfg.ActionSize, encodePNG, &set.Action},
	}

	for _, t := range targets {
		r, err := buildRendition(src, t.name, t.size, t.encode)
		if err != nil {
			set.Warnings = append(set.Warnings, err)
			continue
		}
		*t.out = r
	}
	return set
}

// buildRendition center-crops the longer dimension to square, scales to
// the target size, and encodes. Cropping rather than padding: the
// consuming applications mask icons, and padded borders show through.
func buildRendition(src image.Image, target string, size int, encode func(image.Image) ([]byte, error)) (*Rendition, error) {
	squared := imaging.Fill(src, size, size, imaging.Center, imaging.Lanczos)

	data, err := encode(squared)
	if err != nil {
		return nil, errors.ConversionError(target, err)
	}
	return &Rendition{Target: target, Size: size, Data: data}, nil
}

// EncodeJPEG re-encodes the photo as JPEG at the given quality so the
// stored copy matches its .jpg name whatever format the directory
// served. Input that cannot be re-encoded is returned unchanged.
func EncodeJPEG(photo []byte, quality int) []byte {
	src, err := imaging.Decode(bytes.NewReader(photo))
	if err != nil {
		return photo
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, src, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return photo
	}
	return buf.Bytes()
}
