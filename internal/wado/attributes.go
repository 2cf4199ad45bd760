package wado

import "dicomstatic/pkg/dicomweb"

type attrKind int

const (
	attrString attrKind = iota
	attrInt
)

type attrSpec struct {
	tag     string
	vr      string
	keyword string
	kind    attrKind
}

// extractionTable is the fixed, versioned attribute set captured for every
// ingested instance. Missing string attributes read as "", missing integers
// as 0; the keys below are always present in produced metadata.
var extractionTable = []attrSpec{
	{dicomweb.TagStudyDate, "DA", "StudyDate", attrString},
	{dicomweb.TagStudyTime, "TM", "StudyTime", attrString},
	{dicomweb.TagStudyDescription, "LO", "StudyDescription", attrString},
	{dicomweb.TagStudyInstanceUID, "UI", "StudyInstanceUID", attrString},
	{dicomweb.TagPatientName, "PN", "PatientName", attrString},
	{dicomweb.TagPatientID, "LO", "PatientID", attrString},
	{dicomweb.TagSeriesNumber, "IS", "SeriesNumber", attrInt},
	{dicomweb.TagSeriesDescription, "LO", "SeriesDescription", attrString},
	{dicomweb.TagSeriesInstanceUID, "UI", "SeriesInstanceUID", attrString},
	{dicomweb.TagInstanceNumber, "IS", "InstanceNumber", attrInt},
	{dicomweb.TagSOPClassUID, "UI", "SOPClassUID", attrString},
	{dicomweb.TagSOPInstanceUID, "UI", "SOPInstanceUID", attrString},
	{dicomweb.TagRows, "US", "Rows", attrInt},
	{dicomweb.TagColumns, "US", "Columns", attrInt},
	{dicomweb.TagPhotometricInterpretation, "CS", "PhotometricInterpretation", attrString},
	{dicomweb.TagBitsAllocated, "US", "BitsAllocated", attrInt},
	{dicomweb.TagBitsStored, "US", "BitsStored", attrInt},
	{dicomweb.TagHighBit, "US", "HighBit", attrInt},
	{dicomweb.TagPixelRepresentation, "US", "PixelRepresentation", attrInt},
	{dicomweb.TagModality, "CS", "Modality", attrString},
	{dicomweb.TagStudyID, "SH", "StudyID", attrString},
	{dicomweb.TagAccessionNumber, "SH", "AccessionNumber", attrString},
	{dicomweb.TagPatientSex, "CS", "PatientSex", attrString},
	{dicomweb.TagPatientBirthDate, "DA", "PatientBirthDate", attrString},
	{dicomweb.TagIssuerOfPatientID, "LO", "IssuerOfPatientID", attrString},
}

// ExtractMetadata renders the fixed attribute table from a parsed object.
// The result always contains every table key.
func ExtractMetadata(obj dicomweb.Object) dicomweb.Metadata {
	meta := make(dicomweb.Metadata, len(extractionTable))
	for _, spec := range extractionTable {
		switch spec.kind {
		case attrInt:
			meta[spec.tag] = dicomweb.Attribute{VR: spec.vr, Value: []any{obj.GetInt(spec.keyword, 0)}}
		default:
			meta[spec.tag] = dicomweb.Attribute{VR: spec.vr, Value: []any{obj.GetString(spec.keyword, "")}}
		}
	}
	return meta
}
