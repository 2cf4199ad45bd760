package wado

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"dicomstatic/internal/blob"
	"dicomstatic/pkg/dicomweb"
)

type settings struct {
	logger  *zap.Logger
	metrics MetricsRecorder
}

// Option configures an Archive or Retriever.
type Option func(*settings)

// WithLogger injects a logger; the default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics injects a metrics recorder; the default discards everything.
func WithMetrics(m MetricsRecorder) Option {
	return func(s *settings) {
		if m != nil {
			s.metrics = m
		}
	}
}

func applyOptions(opts []Option) settings {
	s := settings{logger: zap.NewNop(), metrics: NopMetrics{}}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Archive materializes the static artifact tree from parsed objects. All
// writes go through the configured store; re-ingesting an object overwrites
// the same keys, making ingest idempotent.
type Archive struct {
	store   blob.Store
	locks   *studyLocks
	logger  *zap.Logger
	metrics MetricsRecorder
}

// NewArchive constructs an archive over store and seeds the top-level study
// list when it does not exist yet.
func NewArchive(ctx context.Context, store blob.Store, opts ...Option) (*Archive, error) {
	s := applyOptions(opts)
	a := &Archive{store: store, locks: newStudyLocks(), logger: s.logger, metrics: s.metrics}
	if err := a.ensureStudiesIndex(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Archive) ensureStudiesIndex(ctx context.Context) error {
	ok, err := a.store.Exists(ctx, StudiesIndexKey())
	if err != nil {
		return fmt.Errorf("probe studies index: %w", err)
	}
	if ok {
		return nil
	}
	data, err := encodeGzipJSON([]any{})
	if err != nil {
		return err
	}
	if err := a.store.Write(ctx, StudiesIndexKey(), data); err != nil {
		return fmt.Errorf("seed studies index: %w", err)
	}
	return nil
}

// Ingest persists one parsed object into the tree: instance metadata, pixel
// data with derived previews and the frame artifact, bulk attributes, the
// pending notification, and the study/series index documents. Objects
// without all three UIDs fail with InvalidInputError and write nothing.
// Derived-artifact failures degrade to fallbacks; primary-artifact storage
// failures surface wrapped.
func (a *Archive) Ingest(ctx context.Context, obj dicomweb.Object) (id dicomweb.Identity, err error) {
	start := time.Now()
	defer func() {
		a.metrics.Observe(ctx, "ingest", err == nil, time.Since(start))
	}()

	study := obj.GetString(dicomweb.AttrStudyInstanceUID, "")
	series := obj.GetString(dicomweb.AttrSeriesInstanceUID, "")
	instance := obj.GetString(dicomweb.AttrSOPInstanceUID, "")
	if study == "" || series == "" || instance == "" {
		return dicomweb.Identity{}, InvalidInputError{Reason: "object must carry study, series, and instance UIDs"}
	}
	id = dicomweb.Identity{StudyUID: study, SeriesUID: series, InstanceUID: instance}

	meta := ExtractMetadata(obj)
	if err = a.writeGzipJSON(ctx, InstanceMetadataKey(study, series, instance), meta); err != nil {
		return dicomweb.Identity{}, fmt.Errorf("write instance metadata: %w", err)
	}

	if pixel, ok := obj.PixelData(); ok {
		if err = a.store.Write(ctx, PixelDataKey(study, series, instance), pixel); err != nil {
			return dicomweb.Identity{}, fmt.Errorf("write pixel data: %w", err)
		}
		a.writeDerivedArtifacts(ctx, id, obj)
	}

	a.writeBulkAttributes(ctx, id, obj)

	if err = a.writeNotification(ctx, id); err != nil {
		return dicomweb.Identity{}, err
	}

	lock := a.locks.get(study)
	lock.Lock()
	defer lock.Unlock()
	fields := dicomweb.Metadata{
		dicomweb.TagStudyDate:        {Value: []any{obj.GetString("StudyDate", "")}},
		dicomweb.TagStudyDescription: {Value: []any{obj.GetString("StudyDescription", "")}},
	}
	if err = a.mergeStudyIndex(ctx, study, fields); err != nil {
		return dicomweb.Identity{}, err
	}
	if err = a.writeSeriesIndex(ctx, study, series, obj); err != nil {
		return dicomweb.Identity{}, err
	}
	if err = a.writeSeriesMetadata(ctx, study, series, meta); err != nil {
		return dicomweb.Identity{}, err
	}

	a.logger.Info("instance ingested",
		zap.String("study", study),
		zap.String("series", series),
		zap.String("instance", instance))
	return id, nil
}

// writeDerivedArtifacts persists the three thumbnails, the frame container,
// and the rendered preview. Failures here never fail the ingest: an
// unmaterializable pixel volume degrades every derived artifact to the
// mid-gray fallback, and individual write errors are logged and skipped.
func (a *Archive) writeDerivedArtifacts(ctx context.Context, id dicomweb.Identity, obj dicomweb.Object) {
	array, err := obj.PixelArray()
	if err != nil {
		a.logger.Warn("pixel array unavailable, degrading previews",
			zap.String("instance", id.InstanceUID), zap.Error(err))
		array = nil
	}

	thumb := RenderThumbnail(array)
	for _, key := range []string{
		ThumbnailKey(id.StudyUID, id.SeriesUID, id.InstanceUID),
		ThumbnailKey(id.StudyUID, id.SeriesUID, ""),
		ThumbnailKey(id.StudyUID, "", ""),
	} {
		if werr := a.store.Write(ctx, key, thumb); werr != nil {
			a.logger.Warn("thumbnail write skipped", zap.String("key", key), zap.Error(werr))
		}
	}

	frameArray := array
	frameBytes, ferr := encodeFrame(frameArray)
	if ferr != nil {
		frameArray = fallbackArray()
		frameBytes, ferr = encodeFrame(frameArray)
	}
	if ferr != nil {
		a.logger.Warn("frame artifact skipped", zap.String("instance", id.InstanceUID), zap.Error(ferr))
	} else if werr := a.store.Write(ctx, FrameKey(id.StudyUID, id.SeriesUID, id.InstanceUID, 1), frameBytes); werr != nil {
		a.logger.Warn("frame write skipped", zap.String("instance", id.InstanceUID), zap.Error(werr))
	}

	rendered := RenderPreview(array)
	if werr := a.store.Write(ctx, RenderedKey(id.StudyUID, id.SeriesUID, id.InstanceUID), rendered); werr != nil {
		a.logger.Warn("rendered preview skipped", zap.String("instance", id.InstanceUID), zap.Error(werr))
	}
}

// writeBulkAttributes persists every non-empty byte attribute whose keyword
// carries the bulk-data suffix, except the pixel-data attribute itself.
// Unwritable attributes are skipped.
func (a *Archive) writeBulkAttributes(ctx context.Context, id dicomweb.Identity, obj dicomweb.Object) {
	for name, data := range obj.ByteAttributes() {
		if name == dicomweb.AttrPixelData || !strings.HasSuffix(name, dicomweb.BulkDataSuffix) || len(data) == 0 {
			continue
		}
		key := BulkDataKey(id.StudyUID, id.InstanceUID, name)
		if err := a.store.Write(ctx, key, data); err != nil {
			a.logger.Warn("bulk attribute skipped", zap.String("key", key), zap.Error(err))
		}
	}
}

type notificationDoc struct {
	Status string `json:"status"`
}

// writeNotification records the pending-notification marker, the only plain
// (non-gzipped) JSON artifact in the tree.
func (a *Archive) writeNotification(ctx context.Context, id dicomweb.Identity) error {
	doc, err := json.Marshal(notificationDoc{Status: "pending"})
	if err != nil {
		return err
	}
	key := NotificationKey(id.StudyUID, id.SeriesUID, id.InstanceUID)
	if err := a.store.Write(ctx, key, doc); err != nil {
		return fmt.Errorf("write notification %s: %w", key, err)
	}
	return nil
}

func (a *Archive) writeGzipJSON(ctx context.Context, key string, v any) error {
	data, err := encodeGzipJSON(v)
	if err != nil {
		return err
	}
	return a.store.Write(ctx, key, data)
}

// fallbackArray is the stored-frame counterpart of the fallback preview
// plane: a 64×64 mid-gray volume.
func fallbackArray() *dicomweb.PixelArray {
	data := make([]int32, 64*64)
	for i := range data {
		data[i] = 128
	}
	return &dicomweb.PixelArray{Dims: []int{64, 64}, Data: data}
}

// readArtifact reads a whole artifact through the store.
func readArtifact(ctx context.Context, store blob.Store, key string) ([]byte, error) {
	rc, err := store.Open(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
