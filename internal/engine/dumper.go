package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"dbdump/internal/dialect"
	"dbdump/internal/output"
	"dbdump/internal/schema"
)

const toolVersion = "0.4.0"

// State tracks the orchestrator through a run. Failed is terminal and
// reachable from any state.
type State int

const (
	StateIdle State = iota
	StateConnected
	StateSchemaIntrospected
	StateEmittingDDL
	StateEmittingData
	StateComplete
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnected:
		return "connected"
	case StateSchemaIntrospected:
		return "introspected"
	case StateEmittingDDL:
		return "emitting-ddl"
	case StateEmittingData:
		return "emitting-data"
	case StateComplete:
		return "complete"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Summary is the run's final status for the CLI: what was processed, what
// was skipped, and how the run ended.
type Summary struct {
	TablesProcessed   int
	RowsDumped        int
	SkippedTables     []string
	NullSubstitutions int
	State             State
	FailedStage       string
}

// Dumper drives a whole run: introspect, emit DDL, stream data table by
// table. One logical pipeline, strictly sequential; the only shared state
// across phases is the read-only model and the immutable options.
type Dumper struct {
	db    *sql.DB
	d     dialect.Dialect
	opts  Options
	w     *output.Writer
	model *schema.Schema
	state State

	// Progress hooks, both optional. OnIntrospected fires once the model is
	// built, OnTableDone after each table's data phase.
	OnIntrospected func(tables int)
	OnTableDone    func(table string, rows int)
}

func New(db *sql.DB, d dialect.Dialect, opts Options, w *output.Writer) *Dumper {
	return &Dumper{db: db, d: d, opts: opts, w: w, state: StateIdle}
}

// Run executes the dump. On fatal errors the returned summary carries the
// stage at which the run failed; per-table unsupported-type failures do not
// abort the run and only show up in SkippedTables.
func (dp *Dumper) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{}
	fail := func(stage string, err error) (*Summary, error) {
		dp.state = StateFailed
		summary.State = StateFailed
		summary.FailedStage = stage
		return summary, fmt.Errorf("%s: %w", stage, err)
	}

	if err := dp.db.PingContext(ctx); err != nil {
		return fail("connect", fmt.Errorf("%w: %v", schema.ErrConnection, err))
	}
	dp.state = StateConnected

	model, err := schema.Analyze(dp.db, dp.d, dp.opts.Schema)
	if err != nil {
		return fail("introspect", err)
	}
	dp.model = model
	dp.state = StateSchemaIntrospected
	if dp.OnIntrospected != nil {
		dp.OnIntrospected(len(model.Tables))
	}

	dp.state = StateEmittingDDL
	if err := dp.emitDDL(); err != nil {
		return fail("ddl", err)
	}

	if !dp.opts.NoData {
		dp.state = StateEmittingData
		if err := dp.emitData(ctx, summary); err != nil {
			return fail("data", err)
		}
	}

	if dp.opts.DisableFKChecks {
		if err := dp.w.Statement(dp.d.EnableFKChecksStmt()); err != nil {
			return fail("data", err)
		}
	}
	if err := dp.w.Flush(); err != nil {
		return fail("data", err)
	}

	dp.state = StateComplete
	summary.State = StateComplete
	return summary, nil
}

func (dp *Dumper) emitDDL() error {
	if err := dp.emitHeader(); err != nil {
		return err
	}

	stmts, err := RenderSchema(dp.model, dp.d, dp.opts)
	if err != nil {
		return err
	}

	// FK checks go off right after USE so out-of-order DDL and data both
	// import cleanly.
	useIdx := 0
	if !dp.opts.NoCreateSchema {
		useIdx = 1
	}
	for i, stmt := range stmts {
		if err := dp.w.Statement(stmt); err != nil {
			return err
		}
		if i == useIdx && dp.opts.DisableFKChecks {
			if err := dp.w.Statement(dp.d.DisableFKChecksStmt()); err != nil {
				return err
			}
		}
	}

	if err := dp.emitViews(); err != nil {
		return err
	}
	if err := dp.emitRoutines(); err != nil {
		return err
	}
	return dp.emitTriggers()
}

func (dp *Dumper) emitHeader() error {
	lines := []string{
		"-- ----------------------------------------------------------------------",
		"-- dbdump " + toolVersion,
		"-- Created at " + time.Now().Format(time.RFC3339),
		"-- Schema: " + dp.opts.EffectiveSchema(),
		"-- ----------------------------------------------------------------------",
	}
	for _, line := range lines {
		if err := dp.w.Println(line); err != nil {
			return err
		}
	}
	return nil
}

// emitData streams every table sequentially: open cursor, drain, flush the
// batcher, then move on. A table with an unknown-typed column under strict
// policy is skipped before its cursor is ever opened, so no partial INSERT
// block is written for it.
func (dp *Dumper) emitData(ctx context.Context, summary *Summary) error {
	serializer := NewSerializer(dp.d, dp.opts)

	for _, t := range dp.model.Tables {
		if !dp.opts.SkipUnknownTypes {
			if col := firstUnknownColumn(t); col != nil {
				log.Printf("[data] skipping table %s: column %s has unsupported type %s", t.Name, col.Name, col.ColumnType)
				summary.SkippedTables = append(summary.SkippedTables, t.Name)
				if err := dp.w.Println(fmt.Sprintf("-- Data for table %s skipped: column %s has unsupported type %s", t.Name, col.Name, col.ColumnType)); err != nil {
					return err
				}
				continue
			}
		}

		rows, err := dp.dumpTable(ctx, t, serializer)
		if err != nil {
			if errors.Is(err, ErrUnsupportedDataType) {
				// Recoverable at table granularity: log, record, continue.
				log.Printf("[data] skipping table %s: %v", t.Name, err)
				summary.SkippedTables = append(summary.SkippedTables, t.Name)
				continue
			}
			return err
		}

		summary.TablesProcessed++
		summary.RowsDumped += rows
		if dp.OnTableDone != nil {
			dp.OnTableDone(t.Name, rows)
		}
	}

	summary.NullSubstitutions = serializer.NullSubstitutions
	return nil
}

func firstUnknownColumn(t *schema.Table) *schema.Column {
	for _, c := range t.Columns {
		if c.Kind == schema.KindUnknown {
			return c
		}
	}
	return nil
}

// dumpTable drains one table's cursor into INSERT statements. The cursor is
// closed on every exit path; the batcher is flushed before returning so no
// statement is left unterminated.
func (dp *Dumper) dumpTable(ctx context.Context, t *schema.Table, serializer *Serializer) (int, error) {
	if err := dp.w.Println("-- Data for table " + t.Name); err != nil {
		return 0, err
	}

	query := dp.d.SelectAllQuery(dp.opts.Schema, t.Name, t.ColumnNames())
	rows, err := dp.db.QueryContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", schema.ErrConnection, err)
	}
	defer rows.Close()

	batcher := NewInsertBatcher(dp.w, dp.d, t.Name, t.ColumnNames(), dp.opts.EffectiveBatchSize())
	values := make([]any, len(t.Columns))
	ptrs := make([]any, len(t.Columns))
	for i := range values {
		ptrs[i] = &values[i]
	}

	count := 0
	for rows.Next() {
		if err := ctx.Err(); err != nil {
			// Cancelled: flush what is complete and stop. The batcher only
			// ever holds whole rows, so output stays truncated-but-valid.
			if flushErr := batcher.Flush(); flushErr != nil {
				return count, flushErr
			}
			return count, err
		}

		if err := rows.Scan(ptrs...); err != nil {
			return count, fmt.Errorf("failed to scan row from %s: %w", t.Name, err)
		}

		fragments, err := serializer.Serialize(values, t.Columns)
		if err != nil {
			return count, err
		}
		if err := batcher.Add(fragments); err != nil {
			return count, err
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return count, fmt.Errorf("%w: %v", schema.ErrConnection, err)
	}

	return count, batcher.Flush()
}
