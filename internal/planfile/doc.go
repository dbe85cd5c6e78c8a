// Package planfile loads operator DAGs from YAML or CUE documents.
//
// A plan document lists operators in dependency order. Each operator names
// its inputs by id, so shared subtrees are written once and referenced from
// several parents:
//
//	tables:
//	  - name: R
//	    columns: [{name: A, type: INT}, {name: B, type: INT}]
//	operators:
//	  - {id: r, kind: table_access, table: R}
//	  - {id: sel, kind: selection, inputs: [r], cond: {op: "=", args: [A, 5]}}
//	  - {id: top, kind: projection, inputs: [sel], exprs: [B]}
//	roots: [top]
//
// # Expressions
//
// A bare string is an attribute reference resolved by name against the
// operator's inputs; a bare number or boolean is a constant. Anything else
// is a mapping with exactly one of attr, const, null, op, func, case,
// is_null or list.
//
// # Schemas
//
// Schemas are optional. Table access reads columns from the document's
// tables, then from the catalog. Other operators derive their schema from
// their inputs or expressions; join schemas get unique attribute names.
// An explicit schema must have the derived width.
package planfile
