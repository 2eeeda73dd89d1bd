package schema

// Schema is the introspected model of one database. It is built once per run
// and read-only afterwards; Tables holds the emission order for both the DDL
// and the data phase.
type Schema struct {
	Name       string
	Tables     []*Table
	Views      []string
	Procedures []string
	Functions  []string
	Triggers   []string
}

type Table struct {
	Name         string
	Columns      []*Column
	PrimaryKey   []string
	UniqueKeys   []*UniqueKey
	ForeignKeys  []*ForeignKey
	Dependencies []string
}

// Column keeps the raw source descriptor (ColumnType, e.g. "varchar(50)" or
// "decimal(10,2) unsigned") next to the resolved semantic Kind. DDL rendering
// uses the raw descriptor verbatim; value rendering uses the Kind. Ordinal is
// the physical column position, so model order always matches SELECT * order.
type Column struct {
	Name       string
	DataType   string
	ColumnType string
	Kind       Kind
	IsNullable bool
	Default    *string
	IsAutoInc  bool
	Ordinal    int
}

type UniqueKey struct {
	Name    string
	Columns []string
}

type ForeignKey struct {
	Column    string
	RefTable  string
	RefColumn string
}

func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}
