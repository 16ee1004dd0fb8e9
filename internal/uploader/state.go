package uploader

// State is the orchestrator's position in the four-step pipeline. States
// advance strictly forward; the only way back is a fresh run.
type State int

const (
	StateIdle State = iota
	StatePresigning
	StateUploadingBytes
	StateRegistering
	StateGenerating
	StatePolling
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePresigning:
		return "presigning"
	case StateUploadingBytes:
		return "uploading_bytes"
	case StateRegistering:
		return "registering"
	case StateGenerating:
		return "generating"
	case StatePolling:
		return "polling"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}
