package batch

// ItemStatus is the processing outcome of a single batch item.
type ItemStatus string

// Batch item status values.
const (
	StatusCreated ItemStatus = "created"
	StatusUpdated ItemStatus = "updated"
	StatusError   ItemStatus = "error"
)

// Result is the outcome of upserting one document of a batch.
type Result struct {
	index  int
	id     string
	status ItemStatus
	err    error
}

// NewStored records a stored item; created distinguishes inserts from overwrites.
func NewStored(index int, id string, created bool) Result {
	st := StatusUpdated
	if created {
		st = StatusCreated
	}
	return Result{index: index, id: id, status: st}
}

// NewError records a rejected or failed item.
func NewError(index int, id string, err error) Result {
	return Result{index: index, id: id, status: StatusError, err: err}
}

// Index returns the item's position in the submitted batch.
func (r Result) Index() int { return r.index }

// ID returns the document identifier.
func (r Result) ID() string { return r.id }

// Status returns the processing outcome.
func (r Result) Status() ItemStatus { return r.status }

// OK reports whether the item was stored.
func (r Result) OK() bool { return r.status != StatusError }

// Err returns the error, if any.
func (r Result) Err() error { return r.err }

// Summary counts outcomes across a batch.
type Summary struct {
	Created int
	Updated int
	Failed  int
}

// Summarize tallies results by status.
func Summarize(results []Result) Summary {
	var s Summary
	for _, r := range results {
		switch r.status {
		case StatusCreated:
			s.Created++
		case StatusUpdated:
			s.Updated++
		case StatusError:
			s.Failed++
		}
	}
	return s
}
