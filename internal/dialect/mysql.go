package dialect

import (
	"encoding/hex"
	"fmt"
	"strings"
)

type MysqlDialect struct{}

func (d *MysqlDialect) SchemaExistsQuery() string {
	return `SELECT SCHEMA_NAME FROM information_schema.SCHEMATA WHERE SCHEMA_NAME = ?`
}

func (d *MysqlDialect) TablesQuery() string {
	return `SELECT TABLE_NAME FROM information_schema.TABLES WHERE TABLE_SCHEMA = ? AND TABLE_TYPE = 'BASE TABLE' ORDER BY TABLE_NAME`
}

func (d *MysqlDialect) ColumnsQuery() string {
	return `SELECT TABLE_NAME, COLUMN_NAME, DATA_TYPE, COLUMN_TYPE, IS_NULLABLE, COLUMN_DEFAULT, EXTRA, ORDINAL_POSITION FROM information_schema.COLUMNS WHERE TABLE_SCHEMA = ? ORDER BY TABLE_NAME, ORDINAL_POSITION`
}

func (d *MysqlDialect) KeyColumnsQuery() string {
	return `SELECT TABLE_NAME, INDEX_NAME, COLUMN_NAME, SEQ_IN_INDEX FROM information_schema.STATISTICS WHERE TABLE_SCHEMA = ? AND NON_UNIQUE = 0 ORDER BY TABLE_NAME, INDEX_NAME, SEQ_IN_INDEX`
}

func (d *MysqlDialect) ForeignKeysQuery() string {
	return `SELECT TABLE_NAME, COLUMN_NAME, REFERENCED_TABLE_NAME, REFERENCED_COLUMN_NAME FROM information_schema.KEY_COLUMN_USAGE WHERE TABLE_SCHEMA = ? AND REFERENCED_TABLE_NAME IS NOT NULL ORDER BY TABLE_NAME, ORDINAL_POSITION`
}

func (d *MysqlDialect) ViewsQuery() string {
	return `SELECT TABLE_NAME FROM information_schema.TABLES WHERE TABLE_SCHEMA = ? AND TABLE_TYPE = 'VIEW' ORDER BY TABLE_NAME`
}

func (d *MysqlDialect) RoutinesQuery(routineType string) string {
	return fmt.Sprintf(`SELECT ROUTINE_NAME FROM information_schema.ROUTINES WHERE ROUTINE_SCHEMA = ? AND ROUTINE_BODY = 'SQL' AND ROUTINE_TYPE = '%s' ORDER BY ROUTINE_NAME`, routineType)
}

func (d *MysqlDialect) TriggersQuery() string {
	return `SELECT TRIGGER_NAME FROM information_schema.TRIGGERS WHERE TRIGGER_SCHEMA = ? ORDER BY TRIGGER_NAME`
}

func (d *MysqlDialect) ShowCreateQuery(objectKind, schema, name string) string {
	return fmt.Sprintf("SHOW CREATE %s %s.%s", objectKind, d.QuoteIdent(schema), d.QuoteIdent(name))
}

func (d *MysqlDialect) SelectAllQuery(schema, table string, columns []string) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = d.QuoteIdent(c)
	}
	return fmt.Sprintf("SELECT %s FROM %s.%s", strings.Join(quoted, ", "), d.QuoteIdent(schema), d.QuoteIdent(table))
}

func (d *MysqlDialect) CreateSchemaStmt(schema string) string {
	return fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", d.QuoteIdent(schema))
}

func (d *MysqlDialect) UseStmt(schema string) string {
	return fmt.Sprintf("USE %s", d.QuoteIdent(schema))
}

func (d *MysqlDialect) DisableFKChecksStmt() string {
	return "SET FOREIGN_KEY_CHECKS=0"
}

func (d *MysqlDialect) EnableFKChecksStmt() string {
	return "SET FOREIGN_KEY_CHECKS=1"
}

func (d *MysqlDialect) QuoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// stringReplacer covers the escape sequences from the MySQL string-literal
// table. Tabs are left alone: they are legal inside quoted literals.
var stringReplacer = strings.NewReplacer(
	`\`, `\\`,
	"'", `\'`,
	"\x00", `\0`,
	"\n", `\n`,
	"\r", `\r`,
	"\x1a", `\Z`,
)

func (d *MysqlDialect) EscapeString(value string) string {
	return stringReplacer.Replace(value)
}

func (d *MysqlDialect) HexLiteral(data []byte) string {
	if len(data) == 0 {
		return "''"
	}
	return "0x" + hex.EncodeToString(data)
}
