package planfile

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// Parse decodes a YAML (or JSON) plan document.
func Parse(data []byte) (*Document, error) {
	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "decode plan")
	}
	return &doc, nil
}

// ParseCUE evaluates a CUE plan document. The document must be concrete;
// its value is exported to JSON and decoded like a YAML plan, so both
// formats share one schema.
func ParseCUE(filename string, data []byte) (*Document, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}
	js, err := v.MarshalJSON()
	if err != nil {
		return nil, formatCUEError(err)
	}
	return Parse(js)
}

// LoadFile reads a plan document, choosing the format by extension:
// .cue is CUE, anything else is YAML.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read plan")
	}
	if strings.EqualFold(filepath.Ext(path), ".cue") {
		return ParseCUE(path, data)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	return doc, nil
}
