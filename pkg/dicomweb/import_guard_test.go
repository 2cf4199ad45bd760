package dicomweb

import (
	"testing"

	"dicomstatic/testutil"
)

// The wire contracts are imported by external consumers of the artifact
// tree, so they must not reach back into internal packages or the parser.
func TestWireContractsAreStandalone(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.InternalImportForbidden,
		"pkg/dicomweb must not depend on internal packages")
	testutil.AssertNoDirectImports(t, ".", testutil.DicomParserImportForbidden,
		"pkg/dicomweb must not depend on the DICOM parser")
}
