package engine

import (
	"database/sql"
	"fmt"
	"regexp"
	"strings"
)

// SHOW CREATE output layouts differ per object kind; these are the column
// index of the DDL body in each.
const (
	showCreateTableDDLIdx   = 1
	showCreateViewDDLIdx    = 1
	showCreateRoutineDDLIdx = 2
	showCreateTriggerDDLIdx = 2
)

var (
	viewFromRe = regexp.MustCompile("(?i)from\\s+\\(?`[^`]+`\\.`([^`]+)`")
	viewJoinRe = regexp.MustCompile("(?i)join\\s+\\(?`[^`]+`\\.`([^`]+)`")
)

// showCreate runs a SHOW CREATE statement and returns all result columns as
// strings. The layouts vary by object kind and server version, so scanning is
// positional over whatever comes back.
func showCreate(db *sql.DB, query string) ([]string, error) {
	rows, err := db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("empty result for %q", query)
	}

	raw := make([]sql.RawBytes, len(cols))
	ptrs := make([]any, len(cols))
	for i := range raw {
		ptrs[i] = &raw[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}

	out := make([]string, len(raw))
	for i, b := range raw {
		out[i] = string(b)
	}
	return out, rows.Err()
}

// rewriteSchemaRefs substitutes every backtick-quoted occurrence of the
// source schema name in extracted DDL. SHOW CREATE VIEW and trigger bodies
// qualify tables as `schema`.`table`; on rename none of the original name may
// survive.
func rewriteSchemaRefs(ddl, from, to string) string {
	if from == to {
		return ddl
	}
	return strings.ReplaceAll(ddl, "`"+from+"`", "`"+to+"`")
}

// orderViews sorts views so a view referencing another view comes after it.
// References are lifted from the FROM/JOIN clauses of the extracted DDL, same
// reorder rule as tables: move the referenced one in front.
func orderViews(views []string, ddls map[string]string) []string {
	sorted := make([]string, len(views))
	copy(sorted, views)

	for _, view := range views {
		ddl := ddls[view]
		for _, re := range []*regexp.Regexp{viewFromRe, viewJoinRe} {
			for _, grp := range re.FindAllStringSubmatch(ddl, -1) {
				sorted = moveRefBefore(sorted, view, grp[1])
			}
		}
	}
	return sorted
}

func moveRefBefore(names []string, name, ref string) []string {
	nameIdx, refIdx := -1, -1
	for i, n := range names {
		if strings.EqualFold(n, name) {
			nameIdx = i
		}
		if strings.EqualFold(n, ref) {
			refIdx = i
		}
	}
	// References to base tables (or anything not in the view list) are fine
	// as-is; tables always precede views in the output.
	if nameIdx < 0 || refIdx < 0 || refIdx <= nameIdx {
		return names
	}

	moved := names[refIdx]
	names = append(names[:refIdx], names[refIdx+1:]...)

	rest := make([]string, 0, len(names)+1)
	rest = append(rest, names[:nameIdx]...)
	rest = append(rest, moved)
	rest = append(rest, names[nameIdx:]...)
	return rest
}

// emitViews extracts and writes view DDL after all table DDL, in dependency
// order.
func (dp *Dumper) emitViews() error {
	if len(dp.model.Views) == 0 {
		return nil
	}

	ddls := make(map[string]string, len(dp.model.Views))
	for _, view := range dp.model.Views {
		cols, err := showCreate(dp.db, dp.d.ShowCreateQuery("VIEW", dp.opts.Schema, view))
		if err != nil {
			return fmt.Errorf("failed to extract view %s: %w", view, err)
		}
		ddls[view] = cols[showCreateViewDDLIdx]
	}

	for _, view := range orderViews(dp.model.Views, ddls) {
		if err := dp.w.Println("-- View " + view); err != nil {
			return err
		}
		ddl := rewriteSchemaRefs(ddls[view], dp.opts.Schema, dp.opts.EffectiveSchema())
		if err := dp.w.Statement(ddl); err != nil {
			return err
		}
	}
	return nil
}

// emitRoutines writes stored procedure and function DDL with DELIMITER
// framing, since the bodies contain plain ; terminators.
func (dp *Dumper) emitRoutines() error {
	if err := dp.emitRoutineKind("PROCEDURE", "Procedure", dp.model.Procedures); err != nil {
		return err
	}
	return dp.emitRoutineKind("FUNCTION", "Function", dp.model.Functions)
}

func (dp *Dumper) emitRoutineKind(kind, label string, names []string) error {
	for _, name := range names {
		cols, err := showCreate(dp.db, dp.d.ShowCreateQuery(kind, dp.opts.Schema, name))
		if err != nil {
			return fmt.Errorf("failed to extract %s %s: %w", strings.ToLower(kind), name, err)
		}
		if err := dp.emitDelimited(label+" "+name, cols); err != nil {
			return err
		}
	}
	return nil
}

func (dp *Dumper) emitTriggers() error {
	for _, name := range dp.model.Triggers {
		cols, err := showCreate(dp.db, dp.d.ShowCreateQuery("TRIGGER", dp.opts.Schema, name))
		if err != nil {
			return fmt.Errorf("failed to extract trigger %s: %w", name, err)
		}
		if err := dp.emitDelimited("Trigger "+name, cols); err != nil {
			return err
		}
	}
	return nil
}

// emitDelimited writes one SHOW CREATE body for a routine or trigger:
// provenance comments (sql_mode, charsets) followed by the DDL wrapped in
// DELIMITER ;; so embedded semicolons survive re-import.
func (dp *Dumper) emitDelimited(title string, cols []string) error {
	ddl := cols[showCreateRoutineDDLIdx]
	ddl = rewriteSchemaRefs(ddl, dp.opts.Schema, dp.opts.EffectiveSchema())

	lines := []string{
		"-- " + title,
		"-- SQL Mode: " + cols[1],
	}
	if len(cols) > 4 {
		lines = append(lines,
			"-- Character Set: "+cols[3],
			"-- Collation: "+cols[4],
		)
	}
	for _, line := range lines {
		if err := dp.w.Println(line); err != nil {
			return err
		}
	}

	if err := dp.w.Println("DELIMITER ;;"); err != nil {
		return err
	}
	if err := dp.w.Println(ddl + ";;"); err != nil {
		return err
	}
	return dp.w.Println("DELIMITER ;")
}
