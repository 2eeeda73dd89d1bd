package dialect

// Dialect abstracts the SQL flavor of the source server: catalog queries,
// identifier quoting, and literal rendering rules. Only the MySQL/MariaDB
// wire dialect is implemented; the interface keeps the engine free of
// driver-specific spellings.
type Dialect interface {
	// Catalog queries (read-only, bind one schema-name parameter each).
	SchemaExistsQuery() string
	TablesQuery() string
	ColumnsQuery() string
	KeyColumnsQuery() string
	ForeignKeysQuery() string
	ViewsQuery() string
	RoutinesQuery(routineType string) string
	TriggersQuery() string

	// DDL extraction for objects whose bodies are opaque to the model.
	ShowCreateQuery(objectKind, schema, name string) string

	// Data extraction.
	SelectAllQuery(schema, table string, columns []string) string

	// Statement fragments.
	CreateSchemaStmt(schema string) string
	UseStmt(schema string) string
	DisableFKChecksStmt() string
	EnableFKChecksStmt() string

	// Literal rendering.
	QuoteIdent(name string) string
	EscapeString(value string) string
	HexLiteral(data []byte) string
}
