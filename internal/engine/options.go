package engine

// DefaultBatchSize is the number of rows packed into one multi-row INSERT
// when single-row mode is off.
const DefaultBatchSize = 100

// Options is the fully resolved run configuration. It is captured once by the
// orchestrator and never mutated afterwards; every component receives it
// explicitly.
type Options struct {
	Schema           string
	RenamedSchema    string
	NoData           bool
	NoCreateSchema   bool
	SingleRowInserts bool
	SkipUnknownTypes bool
	DisableFKChecks  bool
	BatchSize        int
}

// EffectiveSchema is the schema name used everywhere in the output. With a
// rename target set the original name must not appear at all.
func (o Options) EffectiveSchema() string {
	if o.RenamedSchema != "" {
		return o.RenamedSchema
	}
	return o.Schema
}

func (o Options) EffectiveBatchSize() int {
	if o.SingleRowInserts {
		return 1
	}
	if o.BatchSize < 1 {
		return DefaultBatchSize
	}
	return o.BatchSize
}
