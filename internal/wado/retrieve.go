package wado

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"go.uber.org/zap"

	"dicomstatic/internal/blob"
	"dicomstatic/pkg/dicomweb"
)

// Retriever serves read access over a populated artifact tree. It holds no
// state beyond the store handle and is safe for concurrent use.
type Retriever struct {
	store   blob.Store
	logger  *zap.Logger
	metrics MetricsRecorder
}

// NewRetriever constructs a retriever over store.
func NewRetriever(store blob.Store, opts ...Option) *Retriever {
	s := applyOptions(opts)
	return &Retriever{store: store, logger: s.logger, metrics: s.metrics}
}

func (r *Retriever) finish(ctx context.Context, op string, start time.Time, err error) {
	r.metrics.Observe(ctx, op, err == nil, time.Since(start))
}

// listDirs returns the sorted child directory names under dir. A missing
// parent yields an empty list, never an error.
func (r *Retriever) listDirs(ctx context.Context, dir string) ([]string, error) {
	entries, err := r.store.List(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Dir {
			names = append(names, e.Name)
		}
	}
	return names, nil
}

// ListStudies enumerates study UIDs present in the tree, in lexical order.
func (r *Retriever) ListStudies(ctx context.Context) (uids []string, err error) {
	start := time.Now()
	defer func() { r.finish(ctx, "list_studies", start, err) }()
	return r.listDirs(ctx, studiesRoot)
}

// ListSeries enumerates series UIDs of one study, in lexical order. An
// unknown study yields an empty list.
func (r *Retriever) ListSeries(ctx context.Context, study string) (uids []string, err error) {
	start := time.Now()
	defer func() { r.finish(ctx, "list_series", start, err) }()
	return r.listDirs(ctx, seriesDir(study))
}

// ListInstances enumerates instance UIDs of one series, in lexical order. An
// unknown study or series yields an empty list.
func (r *Retriever) ListInstances(ctx context.Context, study, series string) (uids []string, err error) {
	start := time.Now()
	defer func() { r.finish(ctx, "list_instances", start, err) }()
	return r.listDirs(ctx, instancesDir(study, series))
}

// readGzipJSONDoc reads and decodes one gzipped JSON artifact, mapping
// absence to a typed NotFoundError.
func (r *Retriever) readGzipJSONDoc(ctx context.Context, key string, resource Resource, v any) error {
	data, err := readArtifact(ctx, r.store, key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return NotFoundError{Resource: resource, Path: key}
		}
		return fmt.Errorf("read %s: %w", key, err)
	}
	if err := decodeGzipJSON(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// GetStudyIndex returns the merged index document of one study.
func (r *Retriever) GetStudyIndex(ctx context.Context, study string) (doc dicomweb.Metadata, err error) {
	start := time.Now()
	defer func() { r.finish(ctx, "get_study_index", start, err) }()
	if err = r.readGzipJSONDoc(ctx, StudyIndexKey(study), ResourceStudy, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// GetSeriesIndex returns the index document of one series.
func (r *Retriever) GetSeriesIndex(ctx context.Context, study, series string) (doc dicomweb.Metadata, err error) {
	start := time.Now()
	defer func() { r.finish(ctx, "get_series_index", start, err) }()
	if err = r.readGzipJSONDoc(ctx, SeriesIndexKey(study, series), ResourceSeries, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// getMetadata reads one instance metadata document and overlays the
// authoritative hierarchy UIDs, so the addressed position always wins over
// whatever the stored document carries.
func (r *Retriever) getMetadata(ctx context.Context, study, series, instance string) (dicomweb.Metadata, error) {
	var doc dicomweb.Metadata
	key := InstanceMetadataKey(study, series, instance)
	if err := r.readGzipJSONDoc(ctx, key, ResourceMetadata, &doc); err != nil {
		return nil, err
	}
	doc[dicomweb.TagStudyInstanceUID] = dicomweb.Attribute{VR: "UI", Value: []any{study}}
	doc[dicomweb.TagSeriesInstanceUID] = dicomweb.Attribute{VR: "UI", Value: []any{series}}
	doc[dicomweb.TagSOPInstanceUID] = dicomweb.Attribute{VR: "UI", Value: []any{instance}}
	return doc, nil
}

// GetMetadata returns the metadata document of one instance with the
// hierarchy UIDs overlaid from the address.
func (r *Retriever) GetMetadata(ctx context.Context, study, series, instance string) (doc dicomweb.Metadata, err error) {
	start := time.Now()
	defer func() { r.finish(ctx, "get_metadata", start, err) }()
	return r.getMetadata(ctx, study, series, instance)
}

// GetSeriesMetadata returns the metadata of the lexically first instance of
// a series. A series with no instances is reported as a missing series.
func (r *Retriever) GetSeriesMetadata(ctx context.Context, study, series string) (doc dicomweb.Metadata, err error) {
	start := time.Now()
	defer func() { r.finish(ctx, "get_series_metadata", start, err) }()
	instances, err := r.listDirs(ctx, instancesDir(study, series))
	if err != nil {
		return nil, err
	}
	if len(instances) == 0 {
		return nil, NotFoundError{Resource: ResourceSeries, Path: SeriesRoot(study, series)}
	}
	return r.getMetadata(ctx, study, series, instances[0])
}

// GetStudyMetadata returns the metadata of the lexically first instance of
// the lexically first series of a study.
func (r *Retriever) GetStudyMetadata(ctx context.Context, study string) (doc dicomweb.Metadata, err error) {
	start := time.Now()
	defer func() { r.finish(ctx, "get_study_metadata", start, err) }()
	series, err := r.listDirs(ctx, seriesDir(study))
	if err != nil {
		return nil, err
	}
	if len(series) == 0 {
		return nil, NotFoundError{Resource: ResourceStudy, Path: StudyRoot(study)}
	}
	instances, err := r.listDirs(ctx, instancesDir(study, series[0]))
	if err != nil {
		return nil, err
	}
	if len(instances) == 0 {
		return nil, NotFoundError{Resource: ResourceStudy, Path: StudyRoot(study)}
	}
	return r.getMetadata(ctx, study, series[0], instances[0])
}

// readBinary reads one binary artifact, mapping absence to a typed
// NotFoundError.
func (r *Retriever) readBinary(ctx context.Context, key string, resource Resource) ([]byte, error) {
	data, err := readArtifact(ctx, r.store, key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, NotFoundError{Resource: resource, Path: key}
		}
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

// GetPixelData returns the raw pixel bytes of one instance exactly as
// ingested.
func (r *Retriever) GetPixelData(ctx context.Context, study, series, instance string) (data []byte, err error) {
	start := time.Now()
	defer func() { r.finish(ctx, "get_pixel_data", start, err) }()
	return r.readBinary(ctx, PixelDataKey(study, series, instance), ResourcePixelData)
}

// GetFrame returns one stored frame rendered as unsigned 16-bit
// little-endian samples. Frame numbers are 1-based; a number with no stored
// artifact is a missing frame.
func (r *Retriever) GetFrame(ctx context.Context, study, series, instance string, frame int) (data []byte, err error) {
	start := time.Now()
	defer func() { r.finish(ctx, "get_frame", start, err) }()
	if frame < 1 {
		return nil, NotFoundError{Resource: ResourceFrame, Path: FrameKey(study, series, instance, frame)}
	}
	raw, err := r.readBinary(ctx, FrameKey(study, series, instance, frame), ResourceFrame)
	if err != nil {
		return nil, err
	}
	array, err := decodeFrame(raw)
	if err != nil {
		return nil, fmt.Errorf("frame %d of %s: %w", frame, instance, err)
	}
	return frameToUint16LE(array), nil
}

// GetRendered returns the full-size PNG preview of one instance.
func (r *Retriever) GetRendered(ctx context.Context, study, series, instance string) (data []byte, err error) {
	start := time.Now()
	defer func() { r.finish(ctx, "get_rendered", start, err) }()
	return r.readBinary(ctx, RenderedKey(study, series, instance), ResourceRendered)
}

// Thumbnail returns the JPEG thumbnail at the deepest scope addressed:
// instance when all three identifiers are set, series when the instance is
// empty, study when only the study is set.
func (r *Retriever) Thumbnail(ctx context.Context, study, series, instance string) (data []byte, err error) {
	start := time.Now()
	defer func() { r.finish(ctx, "get_thumbnail", start, err) }()
	return r.readBinary(ctx, ThumbnailKey(study, series, instance), ResourceThumbnail)
}
