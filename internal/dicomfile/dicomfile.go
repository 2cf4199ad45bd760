// Package dicomfile adapts DICOM part-10 datasets into the parsed-object
// contract consumed by the archive. It is the only package that touches the
// DICOM parser.
package dicomfile

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	"dicomstatic/pkg/dicomweb"
)

// Parse reads one DICOM object from r, which must deliver exactly size
// bytes.
func Parse(r io.Reader, size int64) (*dicomweb.MapObject, error) {
	ds, err := dicom.Parse(r, size, nil)
	if err != nil {
		return nil, fmt.Errorf("dicomfile: parse: %w", err)
	}
	return fromDataset(ds), nil
}

// ParseBytes reads one DICOM object from an in-memory payload.
func ParseBytes(data []byte) (*dicomweb.MapObject, error) {
	return Parse(bytes.NewReader(data), int64(len(data)))
}

// ParseFile reads one DICOM object from a part-10 file on disk.
func ParseFile(path string) (*dicomweb.MapObject, error) {
	ds, err := dicom.ParseFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("dicomfile: parse %s: %w", path, err)
	}
	return fromDataset(ds), nil
}

// fromDataset maps dataset elements onto the object by keyword. Private and
// retired tags without a dictionary entry are skipped; sequences and floats
// carry nothing the archive extracts.
func fromDataset(ds dicom.Dataset) *dicomweb.MapObject {
	obj := dicomweb.NewMapObject()
	for _, el := range ds.Elements {
		if el == nil || el.Value == nil {
			continue
		}
		if el.Value.ValueType() == dicom.PixelData {
			applyPixelData(obj, el)
			continue
		}
		info, err := tag.Find(el.Tag)
		if err != nil || info.Name == "" {
			continue
		}
		switch el.Value.ValueType() {
		case dicom.Strings:
			if ss, ok := el.Value.GetValue().([]string); ok && len(ss) > 0 {
				obj.SetString(info.Name, strings.Join(ss, `\`))
			}
		case dicom.Ints:
			if ii, ok := el.Value.GetValue().([]int); ok && len(ii) > 0 {
				obj.SetInt(info.Name, ii[0])
			}
		case dicom.Bytes:
			if bb, ok := el.Value.GetValue().([]byte); ok && len(bb) > 0 {
				obj.SetByteAttribute(info.Name, bb)
			}
		}
	}
	return obj
}

func applyPixelData(obj *dicomweb.MapObject, el *dicom.Element) {
	info, ok := el.Value.GetValue().(dicom.PixelDataInfo)
	if !ok {
		return
	}
	if info.IsEncapsulated {
		var raw []byte
		for i := range info.Frames {
			fr := info.Frames[i]
			raw = append(raw, fr.EncapsulatedData.Data...)
		}
		obj.SetPixelData(raw)
		obj.SetPixelArrayError(ErrEncapsulatedPixelData)
		return
	}
	grids := make([]nativeGrid, 0, len(info.Frames))
	for i := range info.Frames {
		nd := info.Frames[i].NativeData
		channels := 0
		if len(nd.Data) > 0 {
			channels = len(nd.Data[0])
		}
		grids = append(grids, nativeGrid{
			rows:     nd.Rows,
			cols:     nd.Cols,
			channels: channels,
			bits:     nd.BitsPerSample,
			pixels:   nd.Data,
		})
	}
	raw, err := gridBytes(grids)
	if err != nil {
		obj.SetPixelArrayError(err)
		return
	}
	obj.SetPixelData(raw)
	array, err := gridArray(grids)
	if err != nil {
		obj.SetPixelArrayError(err)
		return
	}
	obj.SetPixelArray(array)
}
