package image

import (
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

// Metadata is the format-aware view over the EXIF fields embedded in the
// original byte stream. It is materialized once at decode time so analyzers
// never touch the raw TIFF structures.
type Metadata struct {
	exif   *exif.Exif
	fields map[string]string
}

// NewMetadata builds a metadata view from already-extracted fields.
func NewMetadata(fields map[string]string) *Metadata {
	return &Metadata{fields: fields}
}

type fieldCollector struct {
	fields map[string]string
}

func (c *fieldCollector) Walk(name exif.FieldName, tag *tiff.Tag) error {
	if tag == nil {
		return nil
	}
	if val, err := tag.StringVal(); err == nil {
		c.fields[string(name)] = val
	} else {
		c.fields[string(name)] = tag.String()
	}
	return nil
}

// Fields returns every materialized field keyed by EXIF tag name.
func (m *Metadata) Fields() map[string]string {
	if m == nil {
		return nil
	}
	if m.fields == nil && m.exif != nil {
		collector := &fieldCollector{fields: make(map[string]string)}
		// Walk only fails on a corrupt IFD; whatever was collected up to
		// that point is still usable evidence.
		_ = m.exif.Walk(collector)
		m.fields = collector.fields
	}
	return m.fields
}

// Empty reports whether the view carries no fields at all.
func (m *Metadata) Empty() bool {
	return m == nil || len(m.Fields()) == 0
}

// SoftwareFields returns the values of fields that record the software
// which produced or processed the image (Software, ProcessingSoftware).
func (m *Metadata) SoftwareFields() []string {
	if m == nil {
		return nil
	}
	var out []string
	for name, value := range m.Fields() {
		if strings.Contains(strings.ToLower(name), "software") && value != "" {
			out = append(out, value)
		}
	}
	return out
}
