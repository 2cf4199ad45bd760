package wado

import (
	"testing"

	"dicomstatic/pkg/dicomweb"
)

func TestExtractMetadataCapturesTable(t *testing.T) {
	obj := dicomweb.NewMapObject().
		SetString("StudyDate", "20240102").
		SetString("StudyDescription", "CHEST CT").
		SetString("StudyInstanceUID", "1.2.3").
		SetString("SeriesInstanceUID", "4.5.6").
		SetString("SOPInstanceUID", "7.8.9").
		SetString("PatientName", "DOE^JANE").
		SetString("Modality", "CT").
		SetInt("SeriesNumber", 3).
		SetInt("InstanceNumber", 14).
		SetInt("Rows", 512).
		SetInt("Columns", 256).
		SetInt("BitsAllocated", 16)

	meta := ExtractMetadata(obj)

	if len(meta) != len(extractionTable) {
		t.Fatalf("metadata holds %d attributes, want %d", len(meta), len(extractionTable))
	}
	for _, spec := range extractionTable {
		attr, ok := meta[spec.tag]
		if !ok {
			t.Fatalf("tag %s (%s) absent from metadata", spec.tag, spec.keyword)
		}
		if attr.VR != spec.vr {
			t.Errorf("tag %s vr = %q, want %q", spec.tag, attr.VR, spec.vr)
		}
		if len(attr.Value) != 1 {
			t.Fatalf("tag %s carries %d values, want 1", spec.tag, len(attr.Value))
		}
	}

	if got := meta.StringValue(dicomweb.TagStudyDescription); got != "CHEST CT" {
		t.Errorf("StudyDescription = %q, want %q", got, "CHEST CT")
	}
	if got := meta.StringValue(dicomweb.TagPatientName); got != "DOE^JANE" {
		t.Errorf("PatientName = %q, want %q", got, "DOE^JANE")
	}
	if got := meta.IntValue(dicomweb.TagRows); got != 512 {
		t.Errorf("Rows = %d, want 512", got)
	}
	if got := meta.IntValue(dicomweb.TagSeriesNumber); got != 3 {
		t.Errorf("SeriesNumber = %d, want 3", got)
	}
}

func TestExtractMetadataDefaults(t *testing.T) {
	meta := ExtractMetadata(dicomweb.NewMapObject())

	for _, spec := range extractionTable {
		attr, ok := meta[spec.tag]
		if !ok {
			t.Fatalf("tag %s absent from metadata of empty object", spec.tag)
		}
		switch spec.kind {
		case attrInt:
			if v, ok := attr.Value[0].(int); !ok || v != 0 {
				t.Errorf("tag %s = %v, want integer 0", spec.tag, attr.Value[0])
			}
		default:
			if v, ok := attr.Value[0].(string); !ok || v != "" {
				t.Errorf("tag %s = %v, want empty string", spec.tag, attr.Value[0])
			}
		}
	}
}

func TestExtractMetadataCrossTypedAttributes(t *testing.T) {
	// Numeric text parses into integer attributes; integers render as text.
	obj := dicomweb.NewMapObject().
		SetString("Rows", " 128 ").
		SetInt("StudyID", 42)
	meta := ExtractMetadata(obj)

	if got := meta.IntValue(dicomweb.TagRows); got != 128 {
		t.Errorf("Rows from text = %d, want 128", got)
	}
	if got := meta.StringValue(dicomweb.TagStudyID); got != "42" {
		t.Errorf("StudyID from int = %q, want %q", got, "42")
	}
}
