package queryir

import (
	"slices"
	"strconv"

	"github.com/cockroachdb/errors"

	"github.com/roach88/provsql/internal/collections"
	"github.com/roach88/provsql/internal/ir"
)

// AttrNames returns the attribute names of id's schema, in order.
func (p *Plan) AttrNames(id OpID) []string {
	return attrNames(p.Op(id).base().schema)
}

// AttrByPosition returns attribute pos of id's schema.
func (p *Plan) AttrByPosition(id OpID, pos int) (ir.AttributeDef, error) {
	schema := p.Op(id).base().schema
	if pos < 0 || pos >= len(schema) {
		return ir.AttributeDef{}, errors.Newf("%s has no attribute at position %d", p.ops[id], pos)
	}
	return schema[pos], nil
}

// AttrByName returns the position and definition of the first attribute of
// id named name.
func (p *Plan) AttrByName(id OpID, name string) (int, ir.AttributeDef, bool) {
	for i, a := range p.Op(id).base().schema {
		if a.Name == name {
			return i, a, true
		}
	}
	return -1, ir.AttributeDef{}, false
}

// AttrRef builds a reference to attribute pos of input fromItem of id's
// consumer, named and typed after id's schema.
func (p *Plan) AttrRef(id OpID, fromItem, pos int) (*ir.AttributeReference, error) {
	def, err := p.AttrByPosition(id, pos)
	if err != nil {
		return nil, err
	}
	return ir.NewFullAttrRef(def.Name, fromItem, pos, 0, def.DataType), nil
}

// ConcatSchemas returns the schemas of ids back to back, the shape of a
// join's output before MakeAttrNamesUnique.
func (p *Plan) ConcatSchemas(ids ...OpID) []ir.AttributeDef {
	var out []ir.AttributeDef
	for _, id := range ids {
		out = append(out, p.Op(id).base().schema...)
	}
	return out
}

// MakeAttrNamesUnique renames attributes of id whose name already appeared
// earlier in the schema by appending _1, _2, ... until the name is free.
// It returns the names that were changed, old name to new name, in schema
// order.
func (p *Plan) MakeAttrNamesUnique(id OpID) [][2]string {
	b := p.Op(id).base()
	b.schema = slices.Clone(b.schema)
	var renamed [][2]string
	unique := UniqueNames(attrNames(b.schema))
	for i := range b.schema {
		if b.schema[i].Name != unique[i] {
			renamed = append(renamed, [2]string{b.schema[i].Name, unique[i]})
			b.schema[i].Name = unique[i]
		}
	}
	return renamed
}

// UniqueNames disambiguates repeated names by suffixing _1, _2, ...; the
// first occurrence keeps its name.
func UniqueNames(names []string) []string {
	taken := collections.NewSortedSet(names...)
	seen := collections.NewSortedSet[string]()
	out := make([]string, len(names))
	for i, n := range names {
		if !seen.Contains(n) {
			seen.Add(n)
			out[i] = n
			continue
		}
		for k := 1; ; k++ {
			cand := n + "_" + strconv.Itoa(k)
			if !taken.Contains(cand) {
				out[i] = cand
				taken.Add(cand)
				seen.Add(cand)
				break
			}
		}
	}
	return out
}

func attrNames(schema []ir.AttributeDef) []string {
	names := make([]string, len(schema))
	for i, a := range schema {
		names[i] = a.Name
	}
	return names
}
