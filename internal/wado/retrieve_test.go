package wado

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"testing"

	"dicomstatic/internal/blob"
	"dicomstatic/pkg/dicomweb"
)

// populatedStore ingests a small two-study tree and returns the store.
func populatedStore(t *testing.T) blob.Store {
	t.Helper()
	a, store := newTestArchive(t)
	ctx := context.Background()

	objects := []*dicomweb.MapObject{
		testObject(),
		testObject().SetString("SOPInstanceUID", "7.8.10"),
		testObject().SetString("SeriesInstanceUID", "4.5.7").SetString("SOPInstanceUID", "7.9.1"),
		testObject().SetString("StudyInstanceUID", "1.2.4").SetString("SeriesInstanceUID", "4.6.1").SetString("SOPInstanceUID", "7.10.1"),
	}
	for _, obj := range objects {
		if _, err := a.Ingest(ctx, obj); err != nil {
			t.Fatalf("Ingest: %v", err)
		}
	}
	return store
}

func TestListHierarchy(t *testing.T) {
	r := NewRetriever(populatedStore(t))
	ctx := context.Background()

	studies, err := r.ListStudies(ctx)
	if err != nil {
		t.Fatalf("ListStudies: %v", err)
	}
	if !reflect.DeepEqual(studies, []string{"1.2.3", "1.2.4"}) {
		t.Errorf("studies = %v, want [1.2.3 1.2.4]", studies)
	}

	series, err := r.ListSeries(ctx, "1.2.3")
	if err != nil {
		t.Fatalf("ListSeries: %v", err)
	}
	if !reflect.DeepEqual(series, []string{"4.5.6", "4.5.7"}) {
		t.Errorf("series = %v, want [4.5.6 4.5.7]", series)
	}

	instances, err := r.ListInstances(ctx, "1.2.3", "4.5.6")
	if err != nil {
		t.Fatalf("ListInstances: %v", err)
	}
	// Ordering is lexical, so 7.8.10 sorts before 7.8.9.
	if !reflect.DeepEqual(instances, []string{"7.8.10", "7.8.9"}) {
		t.Errorf("instances = %v, want [7.8.10 7.8.9]", instances)
	}
}

func TestListUnknownParentsAreEmpty(t *testing.T) {
	r := NewRetriever(blob.NewMemory())
	ctx := context.Background()

	studies, err := r.ListStudies(ctx)
	if err != nil {
		t.Fatalf("ListStudies: %v", err)
	}
	if len(studies) != 0 {
		t.Errorf("studies = %v, want none", studies)
	}
	series, err := r.ListSeries(ctx, "no.such.study")
	if err != nil {
		t.Fatalf("ListSeries: %v", err)
	}
	if len(series) != 0 {
		t.Errorf("series = %v, want none", series)
	}
	instances, err := r.ListInstances(ctx, "no.such.study", "no.such.series")
	if err != nil {
		t.Fatalf("ListInstances: %v", err)
	}
	if len(instances) != 0 {
		t.Errorf("instances = %v, want none", instances)
	}
}

func TestGetStudyAndSeriesIndex(t *testing.T) {
	r := NewRetriever(populatedStore(t))
	ctx := context.Background()

	study, err := r.GetStudyIndex(ctx, "1.2.3")
	if err != nil {
		t.Fatalf("GetStudyIndex: %v", err)
	}
	if got := study.StringValue(dicomweb.TagStudyInstanceUID); got != "1.2.3" {
		t.Errorf("study index UID = %q, want %q", got, "1.2.3")
	}

	series, err := r.GetSeriesIndex(ctx, "1.2.3", "4.5.6")
	if err != nil {
		t.Fatalf("GetSeriesIndex: %v", err)
	}
	if got := series.StringValue(dicomweb.TagSeriesInstanceUID); got != "4.5.6" {
		t.Errorf("series index UID = %q, want %q", got, "4.5.6")
	}

	if _, err := r.GetStudyIndex(ctx, "no.such.study"); !IsNotFound(err) {
		t.Errorf("missing study index error = %v, want NotFoundError", err)
	}
	if _, err := r.GetSeriesIndex(ctx, "1.2.3", "no.such.series"); !IsNotFound(err) {
		t.Errorf("missing series index error = %v, want NotFoundError", err)
	}
}

func TestGetMetadataOverlaysAddress(t *testing.T) {
	store := populatedStore(t)
	r := NewRetriever(store)
	ctx := context.Background()

	meta, err := r.GetMetadata(ctx, "1.2.3", "4.5.6", "7.8.9")
	if err != nil {
		t.Fatalf("GetMetadata: %v", err)
	}
	for tag, want := range map[string]string{
		dicomweb.TagStudyInstanceUID:  "1.2.3",
		dicomweb.TagSeriesInstanceUID: "4.5.6",
		dicomweb.TagSOPInstanceUID:    "7.8.9",
	} {
		attr, ok := meta[tag]
		if !ok {
			t.Fatalf("overlay tag %s absent", tag)
		}
		if attr.VR != "UI" {
			t.Errorf("overlay tag %s vr = %q, want UI", tag, attr.VR)
		}
		if got := meta.StringValue(tag); got != want {
			t.Errorf("overlay tag %s = %q, want %q", tag, got, want)
		}
	}

	// The addressed position wins over whatever the document claims.
	stale := dicomweb.Metadata{
		dicomweb.TagStudyInstanceUID: {VR: "UI", Value: []any{"9.9.9"}},
		dicomweb.TagModality:         {VR: "CS", Value: []any{"MR"}},
	}
	data, err := encodeGzipJSON(stale)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := store.Write(ctx, InstanceMetadataKey("1.2.3", "4.5.6", "7.8.9"), data); err != nil {
		t.Fatalf("Write: %v", err)
	}
	meta, err = r.GetMetadata(ctx, "1.2.3", "4.5.6", "7.8.9")
	if err != nil {
		t.Fatalf("GetMetadata: %v", err)
	}
	if got := meta.StringValue(dicomweb.TagStudyInstanceUID); got != "1.2.3" {
		t.Errorf("stored UID leaked through overlay: %q", got)
	}
	if got := meta.StringValue(dicomweb.TagModality); got != "MR" {
		t.Errorf("document attribute lost in overlay: %q", got)
	}
}

func TestGetMetadataMissingAttributesStayPresent(t *testing.T) {
	a, store := newTestArchive(t)
	ctx := context.Background()

	obj := dicomweb.NewMapObject().
		SetString("StudyInstanceUID", "1.2.3").
		SetString("SeriesInstanceUID", "4.5.6").
		SetString("SOPInstanceUID", "7.8.9")
	if _, err := a.Ingest(ctx, obj); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	meta, err := NewRetriever(store).GetMetadata(ctx, "1.2.3", "4.5.6", "7.8.9")
	if err != nil {
		t.Fatalf("GetMetadata: %v", err)
	}
	attr, ok := meta[dicomweb.TagStudyDescription]
	if !ok {
		t.Fatal("StudyDescription absent, want empty-valued attribute")
	}
	if got, ok := attr.Value[0].(string); !ok || got != "" {
		t.Errorf("StudyDescription = %v, want empty string", attr.Value[0])
	}
}

func TestGetSeriesMetadataUsesLexicallyFirstInstance(t *testing.T) {
	r := NewRetriever(populatedStore(t))
	ctx := context.Background()

	meta, err := r.GetSeriesMetadata(ctx, "1.2.3", "4.5.6")
	if err != nil {
		t.Fatalf("GetSeriesMetadata: %v", err)
	}
	// Instances sort lexically: 7.8.10 before 7.8.9.
	if got := meta.StringValue(dicomweb.TagSOPInstanceUID); got != "7.8.10" {
		t.Errorf("series metadata instance = %q, want %q", got, "7.8.10")
	}

	_, err = r.GetSeriesMetadata(ctx, "1.2.3", "no.such.series")
	var nf NotFoundError
	if !errors.As(err, &nf) || nf.Resource != ResourceSeries {
		t.Errorf("missing series error = %v, want series NotFoundError", err)
	}
}

func TestGetStudyMetadataUsesFirstSeriesFirstInstance(t *testing.T) {
	r := NewRetriever(populatedStore(t))
	ctx := context.Background()

	meta, err := r.GetStudyMetadata(ctx, "1.2.3")
	if err != nil {
		t.Fatalf("GetStudyMetadata: %v", err)
	}
	if got := meta.StringValue(dicomweb.TagSeriesInstanceUID); got != "4.5.6" {
		t.Errorf("study metadata series = %q, want %q", got, "4.5.6")
	}
	if got := meta.StringValue(dicomweb.TagSOPInstanceUID); got != "7.8.10" {
		t.Errorf("study metadata instance = %q, want %q", got, "7.8.10")
	}

	_, err = r.GetStudyMetadata(ctx, "no.such.study")
	var nf NotFoundError
	if !errors.As(err, &nf) || nf.Resource != ResourceStudy {
		t.Errorf("missing study error = %v, want study NotFoundError", err)
	}
}

func TestGetPixelData(t *testing.T) {
	r := NewRetriever(populatedStore(t))
	ctx := context.Background()

	data, err := r.GetPixelData(ctx, "1.2.3", "4.5.6", "7.8.9")
	if err != nil {
		t.Fatalf("GetPixelData: %v", err)
	}
	if !bytes.Equal(data, []byte{0, 0, 1, 0, 2, 0, 3, 0}) {
		t.Error("pixel data mutated in transit")
	}

	_, err = r.GetPixelData(ctx, "1.2.3", "4.5.6", "no.such.instance")
	var nf NotFoundError
	if !errors.As(err, &nf) || nf.Resource != ResourcePixelData {
		t.Errorf("missing pixel data error = %v, want pixel data NotFoundError", err)
	}
}

func TestGetFrame(t *testing.T) {
	store := populatedStore(t)
	r := NewRetriever(store)
	ctx := context.Background()

	// The ingested volume is 2×2, so the rendered frame is 2*2*2 bytes.
	data, err := r.GetFrame(ctx, "1.2.3", "4.5.6", "7.8.9", 1)
	if err != nil {
		t.Fatalf("GetFrame: %v", err)
	}
	want := []byte{0, 0, 1, 0, 2, 0, 3, 0}
	if !bytes.Equal(data, want) {
		t.Errorf("frame bytes = %v, want %v", data, want)
	}

	for _, frame := range []int{0, -1, 2} {
		if _, err := r.GetFrame(ctx, "1.2.3", "4.5.6", "7.8.9", frame); !IsNotFound(err) {
			t.Errorf("frame %d error = %v, want NotFoundError", frame, err)
		}
	}

	// A corrupt stored artifact surfaces as an error, not a silent frame.
	if err := store.Write(ctx, FrameKey("1.2.3", "4.5.6", "7.8.9", 1), []byte("garbage")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := r.GetFrame(ctx, "1.2.3", "4.5.6", "7.8.9", 1); err == nil || IsNotFound(err) {
		t.Errorf("corrupt frame error = %v, want decode failure", err)
	}
}

func TestGetRendered(t *testing.T) {
	r := NewRetriever(populatedStore(t))
	ctx := context.Background()

	data, err := r.GetRendered(ctx, "1.2.3", "4.5.6", "7.8.9")
	if err != nil {
		t.Fatalf("GetRendered: %v", err)
	}
	if len(data) < 8 || !bytes.Equal(data[:8], []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}) {
		t.Error("rendered artifact is not a PNG")
	}

	_, err = r.GetRendered(ctx, "1.2.3", "4.5.6", "no.such.instance")
	var nf NotFoundError
	if !errors.As(err, &nf) || nf.Resource != ResourceRendered {
		t.Errorf("missing rendered error = %v, want rendered NotFoundError", err)
	}
}

func TestThumbnailScopes(t *testing.T) {
	r := NewRetriever(populatedStore(t))
	ctx := context.Background()

	for _, tc := range []struct {
		name                    string
		study, series, instance string
	}{
		{"instance", "1.2.3", "4.5.6", "7.8.9"},
		{"series", "1.2.3", "4.5.6", ""},
		{"study", "1.2.3", "", ""},
	} {
		t.Run(tc.name, func(t *testing.T) {
			data, err := r.Thumbnail(ctx, tc.study, tc.series, tc.instance)
			if err != nil {
				t.Fatalf("Thumbnail: %v", err)
			}
			if len(data) < 2 || data[0] != 0xff || data[1] != 0xd8 {
				t.Error("thumbnail is not a JPEG")
			}
		})
	}

	_, err := r.Thumbnail(ctx, "no.such.study", "", "")
	var nf NotFoundError
	if !errors.As(err, &nf) || nf.Resource != ResourceThumbnail {
		t.Errorf("missing thumbnail error = %v, want thumbnail NotFoundError", err)
	}
}
