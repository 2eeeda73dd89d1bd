package engine

import (
	"fmt"
	"strconv"
	"time"

	"dbdump/internal/dialect"
	"dbdump/internal/schema"
)

// ValueKind is the closed variant a fetched column value collapses into.
// The driver hands back dynamically typed payloads; folding them into four
// cases here keeps type inspection out of the rendering rules.
type ValueKind int

const (
	ValueNull ValueKind = iota
	ValueText
	ValueBytes
	ValueNumber
)

type Value struct {
	Kind  ValueKind
	Text  string
	Bytes []byte
}

// valueOf folds one driver scan result into a Value. The MySQL text protocol
// delivers almost everything as []byte; the other cases cover drivers and
// mocks that hand back native Go types.
func valueOf(raw any) Value {
	switch v := raw.(type) {
	case nil:
		return Value{Kind: ValueNull}
	case []byte:
		return Value{Kind: ValueBytes, Bytes: v}
	case string:
		return Value{Kind: ValueText, Text: v}
	case int64:
		return Value{Kind: ValueNumber, Text: strconv.FormatInt(v, 10)}
	case uint64:
		return Value{Kind: ValueNumber, Text: strconv.FormatUint(v, 10)}
	case float64:
		return Value{Kind: ValueNumber, Text: strconv.FormatFloat(v, 'g', -1, 64)}
	case bool:
		if v {
			return Value{Kind: ValueNumber, Text: "1"}
		}
		return Value{Kind: ValueNumber, Text: "0"}
	case time.Time:
		return Value{Kind: ValueText, Text: v.Format("2006-01-02 15:04:05")}
	default:
		return Value{Kind: ValueText, Text: fmt.Sprint(v)}
	}
}

// Serializer renders fetched rows into SQL literal fragments, one per column
// in ordinal order. It holds the run's unknown-type policy and counts the
// NULL substitutions it performs so the summary can report them.
type Serializer struct {
	d    dialect.Dialect
	opts Options

	NullSubstitutions int
}

func NewSerializer(d dialect.Dialect, opts Options) *Serializer {
	return &Serializer{d: d, opts: opts}
}

// Serialize converts one row into literal fragments. values and cols must
// have the same length and ordering; the introspector guarantees that model
// order matches SELECT order.
func (s *Serializer) Serialize(values []any, cols []*schema.Column) ([]string, error) {
	if len(values) != len(cols) {
		return nil, fmt.Errorf("%w: row has %d values for %d columns", ErrInvalidSchemaModel, len(values), len(cols))
	}

	fragments := make([]string, len(values))
	for i, raw := range values {
		fragment, err := s.renderValue(valueOf(raw), cols[i])
		if err != nil {
			return nil, err
		}
		fragments[i] = fragment
	}
	return fragments, nil
}

func (s *Serializer) renderValue(v Value, col *schema.Column) (string, error) {
	if v.Kind == ValueNull {
		return "NULL", nil
	}

	switch col.Kind {
	case schema.KindInteger, schema.KindFloat, schema.KindDecimal:
		// Numeric values pass through as source text; re-parsing would risk
		// precision loss on DECIMAL.
		return v.payload(), nil
	case schema.KindBoolean:
		return renderBoolean(v), nil
	case schema.KindString, schema.KindJSON:
		return "'" + s.d.EscapeString(v.payload()) + "'", nil
	case schema.KindBinary:
		if v.Kind == ValueBytes {
			return s.d.HexLiteral(v.Bytes), nil
		}
		return s.d.HexLiteral([]byte(v.Text)), nil
	case schema.KindDateTime, schema.KindDate, schema.KindTime:
		// Quoted as received, no timezone reinterpretation.
		return "'" + s.d.EscapeString(v.payload()) + "'", nil
	default:
		if s.opts.SkipUnknownTypes {
			s.NullSubstitutions++
			return "NULL", nil
		}
		return "", fmt.Errorf("%w: column %s of type %s", ErrUnsupportedDataType, col.Name, col.ColumnType)
	}
}

func (v Value) payload() string {
	if v.Kind == ValueBytes {
		return string(v.Bytes)
	}
	return v.Text
}

// renderBoolean normalizes the two wire shapes of a MySQL boolean: tinyint(1)
// arrives as ASCII digits, bit(1) as a raw byte.
func renderBoolean(v Value) string {
	if v.Kind == ValueBytes && len(v.Bytes) == 1 && v.Bytes[0] <= 1 {
		if v.Bytes[0] == 1 {
			return "1"
		}
		return "0"
	}
	return v.payload()
}
