// Package dicomweb defines the wire-level contracts of the static DICOMweb
// archive: tag-keyed metadata attributes in the DICOMweb JSON model, the
// parsed-object accessor contract consumed by ingest, and the identifier and
// summary types shared by the storage and retrieval surfaces.
package dicomweb

// Canonical group+element tags (8 hex digits) covered by the fixed metadata
// extraction table. Metadata documents produced by the archive always carry
// every one of these keys.
const (
	// TagStudyDate is the study date (DA).
	TagStudyDate = "00080020"
	// TagStudyTime is the study time (TM).
	TagStudyTime = "00080030"
	// TagAccessionNumber is the accession number (SH).
	TagAccessionNumber = "00080050"
	// TagModality is the modality code (CS).
	TagModality = "00080060"
	// TagSOPClassUID identifies the SOP class (UI).
	TagSOPClassUID = "00080016"
	// TagSOPInstanceUID identifies the instance (UI).
	TagSOPInstanceUID = "00080018"
	// TagStudyDescription is the study description (LO).
	TagStudyDescription = "00081030"
	// TagSeriesDescription is the series description (LO).
	TagSeriesDescription = "0008103E"
	// TagPatientName is the patient name (PN).
	TagPatientName = "00100010"
	// TagPatientID is the patient identifier (LO).
	TagPatientID = "00100020"
	// TagIssuerOfPatientID qualifies the patient identifier (LO).
	TagIssuerOfPatientID = "00100021"
	// TagPatientBirthDate is the patient birth date (DA).
	TagPatientBirthDate = "00100030"
	// TagPatientSex is the patient sex code (CS).
	TagPatientSex = "00100040"
	// TagStudyInstanceUID identifies the study (UI).
	TagStudyInstanceUID = "0020000D"
	// TagSeriesInstanceUID identifies the series (UI).
	TagSeriesInstanceUID = "0020000E"
	// TagStudyID is the short study identifier (SH).
	TagStudyID = "00200010"
	// TagSeriesNumber is the series number (IS).
	TagSeriesNumber = "00200011"
	// TagInstanceNumber is the instance number (IS).
	TagInstanceNumber = "00200013"
	// TagPhotometricInterpretation names the pixel color model (CS).
	TagPhotometricInterpretation = "00280004"
	// TagRows is the pixel matrix row count (US).
	TagRows = "00280010"
	// TagColumns is the pixel matrix column count (US).
	TagColumns = "00280011"
	// TagBitsAllocated is the allocated bits per sample (US).
	TagBitsAllocated = "00280100"
	// TagBitsStored is the stored bits per sample (US).
	TagBitsStored = "00280101"
	// TagHighBit is the high bit position (US).
	TagHighBit = "00280102"
	// TagPixelRepresentation is the sample sign flag (US).
	TagPixelRepresentation = "00280103"
)

// Attribute keywords referenced across package boundaries. Parser adapters
// key MapObject attributes by DICOM keyword; these name the ones the archive
// itself inspects.
const (
	AttrStudyInstanceUID  = "StudyInstanceUID"
	AttrSeriesInstanceUID = "SeriesInstanceUID"
	AttrSOPInstanceUID    = "SOPInstanceUID"
	AttrPixelData         = "PixelData"
)

// BulkDataSuffix marks byte-valued attributes persisted as standalone bulk
// artifacts. The pixel-data attribute is exempt: it has its own artifact.
const BulkDataSuffix = "Data"

// Attribute is a single DICOM attribute in the DICOMweb JSON model: an
// optional value representation plus a list of values (strings or integers).
// Index documents omit vr on merged fields; metadata documents always carry
// it.
type Attribute struct {
	VR    string `json:"vr,omitempty"`
	Value []any  `json:"Value"`
}

// Metadata maps canonical tags to attributes. It is the document shape of
// instance metadata, series metadata, and the study/series index files.
type Metadata map[string]Attribute

// StringValue returns the first value of tag rendered as a string, or ""
// when the tag is absent, empty, or not a string.
func (m Metadata) StringValue(tag string) string {
	attr, ok := m[tag]
	if !ok || len(attr.Value) == 0 {
		return ""
	}
	s, _ := attr.Value[0].(string)
	return s
}

// IntValue returns the first value of tag as an int, or 0 when the tag is
// absent, empty, or not numeric. JSON round-trips decode numbers as float64;
// both in-process ints and decoded floats are accepted.
func (m Metadata) IntValue(tag string) int {
	attr, ok := m[tag]
	if !ok || len(attr.Value) == 0 {
		return 0
	}
	switch v := attr.Value[0].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// Identity names one stored instance by its full UID path.
type Identity struct {
	StudyUID    string `json:"study_uid"`
	SeriesUID   string `json:"series_uid"`
	InstanceUID string `json:"instance_uid"`
}

// StudySummary is one row of the study listing surface. Date and description
// come from the merged study index.
type StudySummary struct {
	UID         string `json:"uid"`
	Date        string `json:"date"`
	Description string `json:"description"`
}

// SeriesSummary is one row of the series listing surface. Number is carried
// as text because the series index stores it that way.
type SeriesSummary struct {
	UID         string `json:"uid"`
	Number      string `json:"number"`
	Description string `json:"description"`
}

// InstanceSummary is one row of the instance listing surface.
type InstanceSummary struct {
	UID    string `json:"uid"`
	Number int    `json:"number"`
}
