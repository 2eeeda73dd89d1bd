package schema

import (
	"regexp"
	"strings"
)

// Kind classifies a column's value domain independently of the source type
// name spelling. It decides how the engine renders values, never how the DDL
// spells the type.
type Kind int

const (
	KindUnknown Kind = iota
	KindInteger
	KindFloat
	KindDecimal
	KindBoolean
	KindString
	KindBinary
	KindDateTime
	KindDate
	KindTime
	KindJSON
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindDecimal:
		return "decimal"
	case KindBoolean:
		return "boolean"
	case KindString:
		return "string"
	case KindBinary:
		return "binary"
	case KindDateTime:
		return "datetime"
	case KindDate:
		return "date"
	case KindTime:
		return "time"
	case KindJSON:
		return "json"
	default:
		return "unknown"
	}
}

var typeDescriptorRe = regexp.MustCompile(`^(\w+)(?:\(([^)]*)\))?`)

// ParseDataType splits a raw descriptor like "DECIMAL(10,2) unsigned" into its
// base type name and parameter list.
func ParseDataType(columnType string) (string, []string) {
	matches := typeDescriptorRe.FindStringSubmatch(strings.TrimSpace(columnType))
	if len(matches) < 2 {
		return columnType, nil
	}

	baseType := matches[1]
	var params []string
	if len(matches) >= 3 && matches[2] != "" {
		params = strings.Split(matches[2], ",")
		for i := range params {
			params[i] = strings.TrimSpace(params[i])
		}
	}
	return baseType, params
}

// ResolveKind maps a raw column descriptor to its Kind. Matching is
// case-insensitive and ignores the unsigned/zerofill modifiers: they narrow
// the value range but values are passed through as text, so the classification
// stays the same.
func ResolveKind(columnType string) Kind {
	baseType, params := ParseDataType(columnType)

	switch strings.ToLower(baseType) {
	case "tinyint":
		// tinyint(1) is the MySQL spelling of bool
		if len(params) == 1 && params[0] == "1" {
			return KindBoolean
		}
		return KindInteger
	case "smallint", "mediumint", "int", "integer", "bigint", "year":
		return KindInteger
	case "bit", "bool", "boolean":
		return KindBoolean
	case "float", "double", "real":
		return KindFloat
	case "decimal", "numeric":
		return KindDecimal
	case "char", "varchar", "tinytext", "text", "mediumtext", "longtext", "enum", "set":
		return KindString
	case "binary", "varbinary", "tinyblob", "blob", "mediumblob", "longblob":
		return KindBinary
	case "datetime", "timestamp":
		return KindDateTime
	case "date":
		return KindDate
	case "time":
		return KindTime
	case "json":
		return KindJSON
	default:
		return KindUnknown
	}
}
