package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"dbdump/internal/dialect"
	"dbdump/internal/engine"
	"dbdump/internal/output"
	"dbdump/internal/schema"

	"github.com/gosuri/uiprogress"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	outputFile       string
	newSchemaName    string
	noData           bool
	noCreateSchema   bool
	singleRowInserts bool
	skipUnknownTypes bool
	disableFKChecks  bool
	compress         bool
	batchSize        int
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Dump a schema's DDL and data as a SQL script",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := engine.Options{
			Schema:           schemaName,
			RenamedSchema:    newSchemaName,
			NoData:           noData,
			NoCreateSchema:   noCreateSchema,
			SingleRowInserts: singleRowInserts,
			SkipUnknownTypes: skipUnknownTypes,
			DisableFKChecks:  disableFKChecks,
			BatchSize:        viper.GetInt("dump.batch_size"),
		}

		w, err := output.New(outputFile, compress)
		if err != nil {
			return err
		}
		defer w.Close()

		// Ctrl-C closes the cursor and leaves the output flushed.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		d := dialect.GetDialect("mysql")
		dumper := engine.New(DB, d, opts, w)

		// Progress only makes sense when the script goes to a file; on
		// stdout the bar would interleave with the dump itself.
		var bar *uiprogress.Bar
		if outputFile != "" && !noData {
			uiprogress.Start()
			dumper.OnIntrospected = func(tables int) {
				if tables > 0 {
					bar = uiprogress.AddBar(tables).AppendCompleted().PrependElapsed()
					bar.PrependFunc(func(b *uiprogress.Bar) string {
						return "Dumping tables: "
					})
				}
			}
			dumper.OnTableDone = func(table string, rows int) {
				if bar != nil {
					bar.Incr()
				}
			}
		}

		start := time.Now()
		summary, runErr := dumper.Run(ctx)
		if outputFile != "" && !noData {
			uiprogress.Stop()
		}

		if runErr != nil {
			reportFatal(summary, runErr)
			return runErr
		}

		printSummary(summary, time.Since(start))
		return nil
	},
}

func reportFatal(summary *engine.Summary, err error) {
	stage := summary.FailedStage
	switch {
	case errors.Is(err, schema.ErrSchemaNotFound):
		log.Printf("Fatal at %s stage: schema does not exist", stage)
	case errors.Is(err, schema.ErrPermissionDenied):
		log.Printf("Fatal at %s stage: catalog access denied", stage)
	case errors.Is(err, schema.ErrConnection):
		log.Printf("Fatal at %s stage: connection failure", stage)
	case errors.Is(err, output.ErrSinkWrite):
		log.Printf("Fatal at %s stage: cannot write output", stage)
	default:
		log.Printf("Fatal at %s stage", stage)
	}
}

func printSummary(s *engine.Summary, elapsed time.Duration) {
	fmt.Fprintln(os.Stderr, "\n📊 Dump Summary:")
	fmt.Fprintf(os.Stderr, "  Tables dumped  : %d\n", s.TablesProcessed)
	fmt.Fprintf(os.Stderr, "  Rows dumped    : %d\n", s.RowsDumped)
	fmt.Fprintf(os.Stderr, "  Tables skipped : %d\n", len(s.SkippedTables))
	for _, name := range s.SkippedTables {
		fmt.Fprintf(os.Stderr, "    └ %s (unsupported data type)\n", name)
	}
	if s.NullSubstitutions > 0 {
		fmt.Fprintf(os.Stderr, "  NULL substitutions for unknown types: %d\n", s.NullSubstitutions)
	}
	fmt.Fprintf(os.Stderr, "  Status         : %s\n", s.State)
	log.Printf("Dump done! Time elapsed: %s", elapsed)
}

func init() {
	RootCmd.AddCommand(dumpCmd)

	dumpCmd.Flags().StringVarP(&outputFile, "output-file", "o", "", "File to write the dump to (default stdout)")
	dumpCmd.Flags().StringVar(&newSchemaName, "new-schema-name", "", "Rename the schema in the generated script")
	dumpCmd.Flags().BoolVarP(&noData, "no-data", "d", false, "Dump schema only, no INSERT statements")
	dumpCmd.Flags().BoolVar(&noCreateSchema, "no-create-schema", false, "Omit the CREATE SCHEMA statement")
	dumpCmd.Flags().BoolVar(&singleRowInserts, "single-row-inserts", false, "One INSERT statement per row")
	dumpCmd.Flags().BoolVar(&skipUnknownTypes, "skip-unknown-datatypes", false, "Substitute NULL for values of unsupported types instead of skipping the table")
	dumpCmd.Flags().BoolVar(&disableFKChecks, "disable-fk-checks", true, "Wrap the script in SET FOREIGN_KEY_CHECKS=0/1")
	dumpCmd.Flags().BoolVar(&compress, "compress", false, "Gzip the output file")
	dumpCmd.Flags().IntVar(&batchSize, "batch-size", 0, "Rows per multi-row INSERT (overrides config)")

	viper.BindPFlag("dump.batch_size", dumpCmd.Flags().Lookup("batch-size"))
	viper.SetDefault("dump.batch_size", engine.DefaultBatchSize)
}
