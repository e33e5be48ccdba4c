package backend

// StreamState is the lifecycle of a RecordStream.
//
//	WritingRefs -> Draining -> Done
//	WritingRefs -> Failed
type StreamState int32

const (
	// StateWritingRefs: stdin is still open and refs are being written.
	StateWritingRefs StreamState = iota
	// StateDraining: stdin is closed, remaining output is being read.
	StateDraining
	// StateDone: output ended and the exit status was collected.
	StateDone
	// StateFailed: git exited before stdin was fully written, or the output
	// could not be parsed.
	StateFailed
)

func (s StreamState) String() string {
	switch s {
	case StateWritingRefs:
		return "writing-refs"
	case StateDraining:
		return "draining"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}
