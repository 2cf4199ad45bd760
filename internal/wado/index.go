package wado

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"dicomstatic/pkg/dicomweb"
)

// mergeStudyIndex performs the read-modify-write merge of the study index:
// the document is seeded with the study UID on first contact, then merged
// fields replace prior values tag by tag. Merged fields carry no vr, the
// seed does. The caller must hold the study lock.
func (a *Archive) mergeStudyIndex(ctx context.Context, study string, fields dicomweb.Metadata) error {
	key := StudyIndexKey(study)
	index := dicomweb.Metadata{}
	data, err := readArtifact(ctx, a.store, key)
	switch {
	case err == nil:
		if err := decodeGzipJSON(data, &index); err != nil {
			return fmt.Errorf("decode study index %s: %w", key, err)
		}
	case errors.Is(err, fs.ErrNotExist):
		// First instance of this study.
	default:
		return fmt.Errorf("read study index %s: %w", key, err)
	}
	if _, ok := index[dicomweb.TagStudyInstanceUID]; !ok {
		index[dicomweb.TagStudyInstanceUID] = dicomweb.Attribute{VR: "UI", Value: []any{study}}
	}
	for tag, attr := range fields {
		index[tag] = attr
	}
	if err := a.writeGzipJSON(ctx, key, index); err != nil {
		return fmt.Errorf("write study index %s: %w", key, err)
	}
	return nil
}

// writeSeriesIndex overwrites the series index document. Values come from
// the object rather than extracted metadata so the series number keeps its
// source text form, defaulting to "1" when absent.
func (a *Archive) writeSeriesIndex(ctx context.Context, study, series string, obj dicomweb.Object) error {
	doc := dicomweb.Metadata{
		dicomweb.TagSeriesNumber:      {Value: []any{obj.GetString("SeriesNumber", "1")}},
		dicomweb.TagSeriesDescription: {Value: []any{obj.GetString("SeriesDescription", "")}},
		dicomweb.TagSeriesInstanceUID: {Value: []any{series}},
		dicomweb.TagModality:          {Value: []any{obj.GetString("Modality", "")}},
	}
	key := SeriesIndexKey(study, series)
	if err := a.writeGzipJSON(ctx, key, doc); err != nil {
		return fmt.Errorf("write series index %s: %w", key, err)
	}
	return nil
}

// writeSeriesMetadata overwrites the series metadata snapshot with the
// extracted metadata of the instance being ingested.
func (a *Archive) writeSeriesMetadata(ctx context.Context, study, series string, meta dicomweb.Metadata) error {
	key := SeriesMetadataKey(study, series)
	if err := a.writeGzipJSON(ctx, key, meta); err != nil {
		return fmt.Errorf("write series metadata %s: %w", key, err)
	}
	return nil
}
