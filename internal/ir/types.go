package ir

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

// DataType is the logical type of an attribute or constant.
type DataType int

const (
	DTInt DataType = iota
	DTLong
	DTFloat
	DTString
	DTBool
)

// String returns the canonical upper-case type name.
func (d DataType) String() string {
	switch d {
	case DTInt:
		return "INT"
	case DTLong:
		return "LONG"
	case DTFloat:
		return "FLOAT"
	case DTString:
		return "STRING"
	case DTBool:
		return "BOOL"
	}
	return fmt.Sprintf("DataType(%d)", int(d))
}

// ParseDataType converts a type name ("int", "STRING", ...) to a DataType.
func ParseDataType(s string) (DataType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "INT", "INTEGER":
		return DTInt, nil
	case "LONG", "BIGINT":
		return DTLong, nil
	case "FLOAT", "DOUBLE":
		return DTFloat, nil
	case "STRING", "TEXT", "VARCHAR":
		return DTString, nil
	case "BOOL", "BOOLEAN":
		return DTBool, nil
	}
	return 0, errors.Newf("unknown data type %q", s)
}

// UnmarshalText lets YAML and JSON documents spell types by name.
func (d *DataType) UnmarshalText(text []byte) error {
	dt, err := ParseDataType(string(text))
	if err != nil {
		return err
	}
	*d = dt
	return nil
}

func (d DataType) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// AttributeDef is one column of an operator schema.
type AttributeDef struct {
	Name     string   `json:"name" yaml:"name"`
	DataType DataType `json:"type" yaml:"type"`
}

// String renders the definition as name:TYPE.
func (a AttributeDef) String() string {
	return a.Name + ":" + a.DataType.String()
}

// SortOrder is the direction of an ORDER BY item.
type SortOrder int

const (
	SortAsc SortOrder = iota
	SortDesc
)

func (o SortOrder) String() string {
	if o == SortDesc {
		return "DESC"
	}
	return "ASC"
}

// NullsOrder places NULLs before or after non-null values.
type NullsOrder int

const (
	NullsLast NullsOrder = iota
	NullsFirst
)

func (n NullsOrder) String() string {
	if n == NullsFirst {
		return "NULLS FIRST"
	}
	return "NULLS LAST"
}
