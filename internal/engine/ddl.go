package engine

import (
	"fmt"
	"strings"

	"dbdump/internal/dialect"
	"dbdump/internal/schema"
)

// defaultKeywords are column defaults that must not be quoted.
var defaultKeywords = map[string]bool{
	"NULL":              true,
	"CURRENT_TIMESTAMP": true,
	"CURRENT_DATE":      true,
	"CURRENT_TIME":      true,
}

// RenderSchema renders the introspected model into DDL statements: the
// optional CREATE SCHEMA, the USE statement, and one CREATE TABLE per table
// in model order. Statements come back without terminating delimiters; the
// writer owns those.
func RenderSchema(s *schema.Schema, d dialect.Dialect, opts Options) ([]string, error) {
	target := opts.EffectiveSchema()

	var stmts []string
	if !opts.NoCreateSchema {
		stmts = append(stmts, d.CreateSchemaStmt(target))
	}
	stmts = append(stmts, d.UseStmt(target))

	for _, t := range s.Tables {
		stmt, err := RenderCreateTable(t, d, opts)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

// RenderCreateTable builds a CREATE TABLE from the model. Column types use
// the raw source descriptor verbatim to preserve length, precision and
// charset; only a column classified Unknown under skip-unknown gets the
// generic nullable fallback with a marker comment.
func RenderCreateTable(t *schema.Table, d dialect.Dialect, opts Options) (string, error) {
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("%w: table %s has no columns", ErrInvalidSchemaModel, t.Name)
	}

	var lines []string
	for _, c := range t.Columns {
		lines = append(lines, renderColumn(c, d, opts))
	}

	if len(t.PrimaryKey) > 0 {
		lines = append(lines, "  PRIMARY KEY ("+joinQuoted(t.PrimaryKey, d)+")")
	}
	for _, uk := range t.UniqueKeys {
		lines = append(lines, "  UNIQUE KEY "+d.QuoteIdent(uk.Name)+" ("+joinQuoted(uk.Columns, d)+")")
	}
	for _, fk := range t.ForeignKeys {
		lines = append(lines, fmt.Sprintf("  FOREIGN KEY (%s) REFERENCES %s (%s)",
			d.QuoteIdent(fk.Column), d.QuoteIdent(fk.RefTable), d.QuoteIdent(fk.RefColumn)))
	}

	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	b.WriteString(d.QuoteIdent(t.Name))
	b.WriteString(" (\n")
	for i, line := range lines {
		b.WriteString(line)
		if i < len(lines)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString(")")
	return b.String(), nil
}

func renderColumn(c *schema.Column, d dialect.Dialect, opts Options) string {
	var b strings.Builder
	b.WriteString("  ")
	b.WriteString(d.QuoteIdent(c.Name))
	b.WriteString(" ")

	if c.Kind == schema.KindUnknown && opts.SkipUnknownTypes {
		// Generic nullable stand-in; the original descriptor survives in the
		// marker comment for manual repair.
		b.WriteString("text NULL /* unknown source type ")
		b.WriteString(c.ColumnType)
		b.WriteString(", substituted */")
		return b.String()
	}

	b.WriteString(c.ColumnType)
	if !c.IsNullable {
		b.WriteString(" NOT NULL")
	}
	if c.Default != nil {
		b.WriteString(" DEFAULT ")
		b.WriteString(renderDefault(*c.Default, c.Kind, d))
	}
	if c.IsAutoInc {
		b.WriteString(" AUTO_INCREMENT")
	}
	return b.String()
}

func renderDefault(def string, kind schema.Kind, d dialect.Dialect) string {
	if defaultKeywords[strings.ToUpper(def)] || strings.HasPrefix(strings.ToUpper(def), "CURRENT_TIMESTAMP(") {
		return def
	}
	switch kind {
	case schema.KindInteger, schema.KindFloat, schema.KindDecimal, schema.KindBoolean:
		return def
	default:
		return "'" + d.EscapeString(def) + "'"
	}
}

func joinQuoted(names []string, d dialect.Dialect) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = d.QuoteIdent(n)
	}
	return strings.Join(quoted, ",")
}
