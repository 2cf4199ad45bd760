// Package wado is the archive core: it materializes the static DICOMweb
// artifact tree from parsed objects and answers retrieval queries straight
// from that tree. Paths are pure derivations of the study/series/instance
// identifiers, writes are idempotent, and derived-artifact failures degrade
// to fallbacks rather than poisoning primary metadata.
package wado

import (
	"errors"
	"fmt"
)

// Resource names the artifact kinds surfaced in retrieval errors.
type Resource string

const (
	// ResourceStudy is a study directory or its index.
	ResourceStudy Resource = "study"
	// ResourceSeries is a series directory or its index.
	ResourceSeries Resource = "series"
	// ResourceInstance is an instance directory.
	ResourceInstance Resource = "instance"
	// ResourceMetadata is a metadata document.
	ResourceMetadata Resource = "metadata"
	// ResourcePixelData is the raw pixel artifact.
	ResourcePixelData Resource = "pixel data"
	// ResourceFrame is a single frame artifact.
	ResourceFrame Resource = "frame"
	// ResourceRendered is the rendered preview artifact.
	ResourceRendered Resource = "rendered image"
	// ResourceThumbnail is a thumbnail artifact at any scope.
	ResourceThumbnail Resource = "thumbnail"
)

// NotFoundError reports an absent artifact by kind and tree path.
type NotFoundError struct {
	Resource Resource
	Path     string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.Path)
}

// InvalidInputError reports a parsed object the archive cannot ingest.
type InvalidInputError struct {
	Reason string
}

func (e InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s", e.Reason)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}

// IsInvalidInput reports whether err is an InvalidInputError.
func IsInvalidInput(err error) bool {
	var ii InvalidInputError
	return errors.As(err, &ii)
}
