package wado

import (
	"fmt"
	"path"
)

// The canonical tree layout. Every artifact key is a pure derivation of the
// hierarchy identifiers; nothing outside this file constructs keys by hand.
const (
	studiesRoot       = "studies"
	notificationsRoot = "notifications"
	indexName         = "index.json.gz"
	metadataName      = "metadata.json.gz"
	thumbnailName     = "thumbnail.jpg"
	pixelDataName     = "pixel_data.raw"
	renderedName      = "rendered/0.png"
)

// StudiesIndexKey is the top-level study list, seeded empty at archive
// creation.
func StudiesIndexKey() string { return path.Join(studiesRoot, indexName) }

// StudyRoot is the directory of one study.
func StudyRoot(study string) string { return path.Join(studiesRoot, study) }

// StudyIndexKey is the merged study index document.
func StudyIndexKey(study string) string { return path.Join(StudyRoot(study), indexName) }

// seriesDir holds all series directories of a study.
func seriesDir(study string) string { return path.Join(StudyRoot(study), "series") }

// SeriesRoot is the directory of one series.
func SeriesRoot(study, series string) string {
	return path.Join(seriesDir(study), series)
}

// SeriesIndexKey is the overwritten series index document.
func SeriesIndexKey(study, series string) string {
	return path.Join(SeriesRoot(study, series), indexName)
}

// SeriesMetadataKey is the overwritten series metadata document.
func SeriesMetadataKey(study, series string) string {
	return path.Join(SeriesRoot(study, series), metadataName)
}

// instancesDir holds all instance directories of a series.
func instancesDir(study, series string) string {
	return path.Join(SeriesRoot(study, series), "instances")
}

// InstanceRoot is the directory of one instance.
func InstanceRoot(study, series, instance string) string {
	return path.Join(instancesDir(study, series), instance)
}

// InstanceMetadataKey is the instance metadata document.
func InstanceMetadataKey(study, series, instance string) string {
	return path.Join(InstanceRoot(study, series, instance), metadataName)
}

// PixelDataKey is the raw pixel artifact of one instance.
func PixelDataKey(study, series, instance string) string {
	return path.Join(InstanceRoot(study, series, instance), pixelDataName)
}

// FrameKey is the gzipped frame artifact; frame numbers are 1-based.
func FrameKey(study, series, instance string, frame int) string {
	return path.Join(InstanceRoot(study, series, instance), "frames", fmt.Sprintf("%d.gz", frame))
}

// RenderedKey is the full-size rendered preview of one instance.
func RenderedKey(study, series, instance string) string {
	return path.Join(InstanceRoot(study, series, instance), renderedName)
}

// BulkDataKey is a bulk byte attribute, stored at study scope and
// disambiguated by instance and attribute name.
func BulkDataKey(study, instance, attribute string) string {
	return path.Join(StudyRoot(study), "bulkdata", fmt.Sprintf("%s_%s.bin", instance, attribute))
}

// ThumbnailKey resolves the thumbnail artifact for the deepest scope with a
// non-empty identifier: instance, then series, then study.
func ThumbnailKey(study, series, instance string) string {
	switch {
	case instance != "" && series != "":
		return path.Join(InstanceRoot(study, series, instance), thumbnailName)
	case series != "":
		return path.Join(SeriesRoot(study, series), thumbnailName)
	default:
		return path.Join(StudyRoot(study), thumbnailName)
	}
}

// NotificationKey is the pending-notification marker for one instance.
func NotificationKey(study, series, instance string) string {
	return path.Join(notificationsRoot, fmt.Sprintf("%s_%s_%s.json", study, series, instance))
}
