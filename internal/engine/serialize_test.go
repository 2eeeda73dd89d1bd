package engine

import (
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v6"

	"dbdump/internal/dialect"
	"dbdump/internal/schema"
)

func col(name, columnType string) *schema.Column {
	return &schema.Column{Name: name, ColumnType: columnType, Kind: schema.ResolveKind(columnType)}
}

func newSerializer(opts Options) *Serializer {
	return NewSerializer(dialect.GetDialect("mysql"), opts)
}

func TestSerializeNullFidelity(t *testing.T) {
	s := newSerializer(Options{})
	cols := []*schema.Column{col("id", "int(11)"), col("bio", "json"), col("raw", "blob")}

	fragments, err := s.Serialize([]any{nil, nil, nil}, cols)
	if err != nil {
		t.Fatal(err)
	}
	for i, f := range fragments {
		if f != "NULL" {
			t.Errorf("column %d: NULL value rendered as %q", i, f)
		}
	}
}

func TestSerializeStringEscaping(t *testing.T) {
	s := newSerializer(Options{})
	cols := []*schema.Column{col("name", "varchar(50)")}

	fragments, err := s.Serialize([]any{[]byte("O'Brien\nline2")}, cols)
	if err != nil {
		t.Fatal(err)
	}
	if fragments[0] != `'O\'Brien\nline2'` {
		t.Errorf("got %q", fragments[0])
	}
}

func TestSerializeNumericPassthrough(t *testing.T) {
	s := newSerializer(Options{})
	cols := []*schema.Column{
		col("id", "int(11)"),
		col("price", "decimal(20,10)"),
		col("ratio", "double"),
	}

	// Decimal arrives as text; it must never be re-parsed or re-formatted.
	fragments, err := s.Serialize([]any{[]byte("42"), []byte("12345678.9999999999"), []byte("0.5")}, cols)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"42", "12345678.9999999999", "0.5"}
	for i := range want {
		if fragments[i] != want[i] {
			t.Errorf("column %d: got %q, want %q", i, fragments[i], want[i])
		}
	}
}

func TestSerializeDateTimeQuoted(t *testing.T) {
	s := newSerializer(Options{})
	cols := []*schema.Column{col("created_at", "datetime"), col("birthday", "date"), col("at", "time")}

	fragments, err := s.Serialize([]any{[]byte("2024-01-02 15:04:05"), []byte("1999-12-31"), []byte("23:59:59")}, cols)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"'2024-01-02 15:04:05'", "'1999-12-31'", "'23:59:59'"}
	for i := range want {
		if fragments[i] != want[i] {
			t.Errorf("column %d: got %q, want %q", i, fragments[i], want[i])
		}
	}
}

func TestSerializeBinaryHex(t *testing.T) {
	s := newSerializer(Options{})
	cols := []*schema.Column{col("data", "varbinary(16)")}

	fragments, err := s.Serialize([]any{[]byte{0x01, 0xff}}, cols)
	if err != nil {
		t.Fatal(err)
	}
	if fragments[0] != "0x01ff" {
		t.Errorf("got %q", fragments[0])
	}

	fragments, err = s.Serialize([]any{[]byte{}}, cols)
	if err != nil {
		t.Fatal(err)
	}
	if fragments[0] != "''" {
		t.Errorf("empty binary: got %q", fragments[0])
	}
}

func TestSerializeBoolean(t *testing.T) {
	s := newSerializer(Options{})
	cols := []*schema.Column{col("active", "tinyint(1)"), col("flag", "bit(1)")}

	// tinyint(1) arrives as ASCII text, bit(1) as a raw byte.
	fragments, err := s.Serialize([]any{[]byte("1"), []byte{0x00}}, cols)
	if err != nil {
		t.Fatal(err)
	}
	if fragments[0] != "1" || fragments[1] != "0" {
		t.Errorf("got %v", fragments)
	}
}

func TestSerializeUnknownTypeStrict(t *testing.T) {
	s := newSerializer(Options{})
	cols := []*schema.Column{col("location", "geometry")}

	_, err := s.Serialize([]any{[]byte{0x00, 0x01}}, cols)
	if err == nil {
		t.Fatal("expected error for unknown type")
	}
	if !strings.Contains(err.Error(), "geometry") {
		t.Errorf("error should name the offending type: %v", err)
	}
}

func TestSerializeUnknownTypeSkip(t *testing.T) {
	s := newSerializer(Options{SkipUnknownTypes: true})
	cols := []*schema.Column{col("location", "geometry"), col("name", "varchar(10)")}

	fragments, err := s.Serialize([]any{[]byte{0x00}, []byte("x")}, cols)
	if err != nil {
		t.Fatal(err)
	}
	if fragments[0] != "NULL" {
		t.Errorf("unknown type should substitute NULL, got %q", fragments[0])
	}
	if fragments[1] != "'x'" {
		t.Errorf("other columns unaffected, got %q", fragments[1])
	}
	if s.NullSubstitutions != 1 {
		t.Errorf("substitution not recorded: %d", s.NullSubstitutions)
	}
}

func TestSerializeRandomStringsStayQuoted(t *testing.T) {
	gofakeit.Seed(11)
	s := newSerializer(Options{})
	cols := []*schema.Column{col("quote", "text")}

	for i := 0; i < 200; i++ {
		input := gofakeit.HackerPhrase() + "'" + gofakeit.Name()
		fragments, err := s.Serialize([]any{[]byte(input)}, cols)
		if err != nil {
			t.Fatal(err)
		}
		f := fragments[0]
		if !strings.HasPrefix(f, "'") || !strings.HasSuffix(f, "'") {
			t.Fatalf("fragment not quoted: %q", f)
		}
		// No bare single quote may survive inside the literal body.
		body := f[1 : len(f)-1]
		for j := 0; j < len(body); j++ {
			if body[j] == '\'' && (j == 0 || body[j-1] != '\\') {
				t.Fatalf("unescaped quote in %q", f)
			}
		}
	}
}
