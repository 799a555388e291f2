package crypto

// ResultKind is the shape of an operation outcome.
type ResultKind int

// Result kinds
const (
	ResultError ResultKind = iota
	ResultBuffer
	ResultKey
	ResultBoolean
)

func (k ResultKind) String() string {
	switch k {
	case ResultBuffer:
		return "buffer"
	case ResultKey:
		return "key"
	case ResultBoolean:
		return "boolean"
	default:
		return "error"
	}
}

// Result is the tagged outcome of exactly one request.
type Result struct {
	kind    ResultKind
	buffer  []byte
	key     *Key
	boolean bool
	err     error
}

// ErrorResult builds an error outcome.
func ErrorResult(err error) Result { return Result{kind: ResultError, err: err} }

// BufferResult builds a buffer outcome.
func BufferResult(buf []byte) Result { return Result{kind: ResultBuffer, buffer: buf} }

// KeyResult builds a key outcome.
func KeyResult(key *Key) Result { return Result{kind: ResultKey, key: key} }

// BooleanResult builds a boolean outcome.
func BooleanResult(b bool) Result { return Result{kind: ResultBoolean, boolean: b} }

// Kind returns the outcome shape.
func (r Result) Kind() ResultKind { return r.kind }

// Err returns the failure, or nil for successful outcomes.
func (r Result) Err() error { return r.err }

// Buffer returns the output bytes of a buffer outcome.
func (r Result) Buffer() []byte { return r.buffer }

// Key returns the key of a key outcome.
func (r Result) Key() *Key { return r.key }

// Boolean returns the value of a boolean outcome.
func (r Result) Boolean() bool { return r.boolean }

// ResultSink receives the outcome of a request. Exactly one method is
// called, exactly once, per request.
type ResultSink interface {
	CompleteWithError(err error)
	CompleteWithBuffer(buf []byte)
	CompleteWithKey(key *Key)
	CompleteWithBoolean(match bool)
}

// Deliver forwards r to the sink method matching its kind.
func Deliver(sink ResultSink, r Result) {
	switch r.kind {
	case ResultBuffer:
		sink.CompleteWithBuffer(r.buffer)
	case ResultKey:
		sink.CompleteWithKey(r.key)
	case ResultBoolean:
		sink.CompleteWithBoolean(r.boolean)
	default:
		sink.CompleteWithError(r.err)
	}
}
