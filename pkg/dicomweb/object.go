package dicomweb

import (
	"errors"
	"strconv"
	"strings"
)

// ErrNoPixelArray is returned by PixelArray when an object carries no decoded
// pixel volume.
var ErrNoPixelArray = errors.New("dicomweb: no pixel array")

// Object is the parsed-object contract consumed by ingest. Every optional
// attribute is reached through an explicit accessor with a caller-supplied
// default; implementations never panic on absent attributes.
type Object interface {
	// GetString returns the named attribute rendered as text, or def when
	// the attribute is absent.
	GetString(name, def string) string
	// GetInt returns the named attribute as an integer, or def when the
	// attribute is absent or not parseable as one.
	GetInt(name string, def int) int
	// PixelData returns the raw pixel bytes and whether any are present.
	PixelData() ([]byte, bool)
	// PixelArray returns the decoded multi-dimensional pixel volume. An
	// error means the pixel data could not be materialized as samples
	// (unsupported encoding, truncated payload); callers degrade to
	// fallback previews.
	PixelArray() (*PixelArray, error)
	// ByteAttributes returns every byte-valued attribute by keyword,
	// including the pixel-data attribute when present.
	ByteAttributes() map[string][]byte
}

// MapObject is the canonical map-backed Object implementation, populated by
// parser adapters and used directly as a test builder. The zero value is not
// usable; construct with NewMapObject. Setters return the receiver for
// chaining.
type MapObject struct {
	strings map[string]string
	ints    map[string]int
	bytes   map[string][]byte
	pixel   []byte
	hasPix  bool
	array   *PixelArray
	arrayEr error
}

// NewMapObject returns an empty parsed object.
func NewMapObject() *MapObject {
	return &MapObject{
		strings: make(map[string]string),
		ints:    make(map[string]int),
		bytes:   make(map[string][]byte),
	}
}

// SetString records a text attribute.
func (o *MapObject) SetString(name, value string) *MapObject {
	o.strings[name] = value
	return o
}

// SetInt records an integer attribute.
func (o *MapObject) SetInt(name string, value int) *MapObject {
	o.ints[name] = value
	return o
}

// SetByteAttribute records a byte-valued attribute.
func (o *MapObject) SetByteAttribute(name string, data []byte) *MapObject {
	o.bytes[name] = data
	return o
}

// SetPixelData records the raw pixel payload and mirrors it under the
// pixel-data keyword so ByteAttributes sees it.
func (o *MapObject) SetPixelData(data []byte) *MapObject {
	o.pixel = data
	o.hasPix = true
	o.bytes[AttrPixelData] = data
	return o
}

// SetPixelArray records the decoded pixel volume.
func (o *MapObject) SetPixelArray(a *PixelArray) *MapObject {
	o.array = a
	o.arrayEr = nil
	return o
}

// SetPixelArrayError marks the pixel volume as unmaterializable.
func (o *MapObject) SetPixelArrayError(err error) *MapObject {
	o.array = nil
	o.arrayEr = err
	return o
}

// GetString implements Object. Integer attributes render through it as
// decimal text, matching how string-typed accessors behave on numeric
// value representations.
func (o *MapObject) GetString(name, def string) string {
	if v, ok := o.strings[name]; ok {
		return v
	}
	if v, ok := o.ints[name]; ok {
		return strconv.Itoa(v)
	}
	return def
}

// GetInt implements Object. Text attributes holding decimal digits parse
// through it.
func (o *MapObject) GetInt(name string, def int) int {
	if v, ok := o.ints[name]; ok {
		return v
	}
	if s, ok := o.strings[name]; ok {
		if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return v
		}
	}
	return def
}

// PixelData implements Object.
func (o *MapObject) PixelData() ([]byte, bool) {
	return o.pixel, o.hasPix
}

// PixelArray implements Object.
func (o *MapObject) PixelArray() (*PixelArray, error) {
	if o.arrayEr != nil {
		return nil, o.arrayEr
	}
	if o.array != nil {
		return o.array, nil
	}
	return nil, ErrNoPixelArray
}

// ByteAttributes implements Object.
func (o *MapObject) ByteAttributes() map[string][]byte {
	return o.bytes
}

