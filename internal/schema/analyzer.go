package schema

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"dbdump/internal/dialect"

	"github.com/go-sql-driver/mysql"
)

// Analyze introspects one schema into a Schema model. It issues read-only
// information_schema queries only and never mutates the source database.
// Tables are enumerated before columns, columns before keys, and every query
// carries an ORDER BY so repeated runs produce an identical model.
func Analyze(db *sql.DB, d dialect.Dialect, schemaName string) (*Schema, error) {
	if err := checkSchemaExists(db, d, schemaName); err != nil {
		return nil, err
	}

	s := &Schema{Name: schemaName}

	// Use map for O(1) lookups; information_schema.COLUMNS also reports view
	// columns, which the map lookup silently drops.
	tableMap := make(map[string]*Table)

	// --- Step 1: Tables ---
	rows, err := db.Query(d.TablesQuery(), schemaName)
	if err != nil {
		return nil, classify("failed to query tables", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		t := &Table{Name: name, Dependencies: []string{}}
		tableMap[name] = t
		s.Tables = append(s.Tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("error iterating tables", err)
	}

	// --- Step 2: Columns ---
	colRows, err := db.Query(d.ColumnsQuery(), schemaName)
	if err != nil {
		return nil, classify("failed to query columns", err)
	}
	defer colRows.Close()

	for colRows.Next() {
		var tName, cName, dType, cType, isNull, extra sql.NullString
		var cDefault sql.NullString
		var ordinal int

		if err := colRows.Scan(&tName, &cName, &dType, &cType, &isNull, &cDefault, &extra, &ordinal); err != nil {
			return nil, fmt.Errorf("failed to scan column (table: %s): %w", tName.String, err)
		}
		if !tName.Valid || !cName.Valid {
			continue
		}

		t, ok := tableMap[tName.String]
		if !ok {
			continue
		}

		col := &Column{
			Name:       cName.String,
			DataType:   dType.String,
			ColumnType: cType.String,
			Kind:       ResolveKind(cType.String),
			IsNullable: isNull.String == "YES",
			IsAutoInc:  strings.Contains(strings.ToLower(extra.String), "auto_increment"),
			Ordinal:    ordinal,
		}
		if cDefault.Valid {
			def := cDefault.String
			col.Default = &def
		}
		t.Columns = append(t.Columns, col)
	}
	if err := colRows.Err(); err != nil {
		return nil, classify("error iterating columns", err)
	}

	// --- Step 3: Primary and unique keys ---
	if err := analyzeKeys(db, d, schemaName, tableMap); err != nil {
		return nil, err
	}

	// --- Step 4: Foreign keys ---
	fkRows, err := db.Query(d.ForeignKeysQuery(), schemaName)
	if err != nil {
		return nil, classify("failed to query foreign keys", err)
	}
	defer fkRows.Close()

	for fkRows.Next() {
		var tName, cName, rTable, rCol sql.NullString
		if err := fkRows.Scan(&tName, &cName, &rTable, &rCol); err != nil {
			return nil, fmt.Errorf("failed to scan foreign key: %w", err)
		}

		if tName.Valid && rTable.Valid && tName.String != rTable.String {
			if t, ok := tableMap[tName.String]; ok {
				// Only record references to tables we actually know about.
				if _, exists := tableMap[rTable.String]; exists {
					t.Dependencies = append(t.Dependencies, rTable.String)
					t.ForeignKeys = append(t.ForeignKeys, &ForeignKey{
						Column:    cName.String,
						RefTable:  rTable.String,
						RefColumn: rCol.String,
					})
				}
			}
		}
	}
	if err := fkRows.Err(); err != nil {
		return nil, classify("error iterating foreign keys", err)
	}

	// --- Step 5: Views, routines, triggers ---
	if s.Views, err = queryNames(db, d.ViewsQuery(), schemaName); err != nil {
		return nil, classify("failed to query views", err)
	}
	if s.Procedures, err = queryNames(db, d.RoutinesQuery("PROCEDURE"), schemaName); err != nil {
		return nil, classify("failed to query procedures", err)
	}
	if s.Functions, err = queryNames(db, d.RoutinesQuery("FUNCTION"), schemaName); err != nil {
		return nil, classify("failed to query functions", err)
	}
	if s.Triggers, err = queryNames(db, d.TriggersQuery(), schemaName); err != nil {
		return nil, classify("failed to query triggers", err)
	}

	s.Tables = SortTablesByDependency(s.Tables)
	return s, nil
}

func checkSchemaExists(db *sql.DB, d dialect.Dialect, schemaName string) error {
	var name string
	err := db.QueryRow(d.SchemaExistsQuery(), schemaName).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrSchemaNotFound, schemaName)
	}
	if err != nil {
		return classify("failed to check schema", err)
	}
	return nil
}

func analyzeKeys(db *sql.DB, d dialect.Dialect, schemaName string, tableMap map[string]*Table) error {
	keyRows, err := db.Query(d.KeyColumnsQuery(), schemaName)
	if err != nil {
		return classify("failed to query keys", err)
	}
	defer keyRows.Close()

	for keyRows.Next() {
		var tName, idxName, cName sql.NullString
		var seq int
		if err := keyRows.Scan(&tName, &idxName, &cName, &seq); err != nil {
			return fmt.Errorf("failed to scan key column: %w", err)
		}

		t, ok := tableMap[tName.String]
		if !ok {
			continue
		}
		if idxName.String == "PRIMARY" {
			t.PrimaryKey = append(t.PrimaryKey, cName.String)
			continue
		}

		// SEQ_IN_INDEX ordering groups multi-column unique keys correctly.
		var uk *UniqueKey
		for _, candidate := range t.UniqueKeys {
			if candidate.Name == idxName.String {
				uk = candidate
				break
			}
		}
		if uk == nil {
			uk = &UniqueKey{Name: idxName.String}
			t.UniqueKeys = append(t.UniqueKeys, uk)
		}
		uk.Columns = append(uk.Columns, cName.String)
	}
	return keyRows.Err()
}

func queryNames(db *sql.DB, query, schemaName string) ([]string, error) {
	rows, err := db.Query(query, schemaName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// classify folds a driver error into the introspection taxonomy. Access
// denials surface as ErrPermissionDenied; everything else at this stage is a
// transport problem.
func classify(msg string, err error) error {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1044, 1045, 1142: // schema, credential and table access denials
			return fmt.Errorf("%s: %w: %v", msg, ErrPermissionDenied, err)
		}
	}
	return fmt.Errorf("%s: %w: %v", msg, ErrConnection, err)
}
