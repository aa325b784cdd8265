package domain

import "time"

// SizeUnknown is the remote size reported when the server did not send a
// content length.
const SizeUnknown int64 = -1

// PlanKind classifies the validator's verdict for a cached file.
type PlanKind int

const (
	// PlanComplete means the cached file already covers the full remote
	// size; no body transfer is needed.
	PlanComplete PlanKind = iota
	// PlanResume means the cached file is a valid prefix; the body is
	// appended starting at Offset.
	PlanResume
	// PlanRestart means the cached file was discarded; the body is
	// fetched in full from position 0, truncating anything on disk.
	PlanRestart
)

// String returns a human-readable plan name.
func (k PlanKind) String() string {
	switch k {
	case PlanComplete:
		return "complete"
	case PlanResume:
		return "resume"
	case PlanRestart:
		return "restart"
	default:
		return "unknown"
	}
}

// ResumePlan is the cache validator's output: how the transfer executor
// should treat the local file.
type ResumePlan struct {
	Kind   PlanKind
	Offset int64 // byte position to resume from, meaningful for PlanResume
}

// RemoteMetadata describes a remote resource without its body.
type RemoteMetadata struct {
	// IdentityMarker is the remote identity value (an unquoted ETag).
	// Empty when the remote side did not provide a well-formed marker.
	IdentityMarker string
	// Size is the total remote size in bytes, or SizeUnknown.
	Size int64
}

// FetchStatus is the outcome of a fetch operation.
type FetchStatus string

const (
	// StatusCached means the cache was already complete; no body was
	// transferred.
	StatusCached FetchStatus = "cached"
	// StatusFetched means a body transfer (full or resumed) completed.
	StatusFetched FetchStatus = "fetched"
	// StatusFailed means the fetch ended in an error.
	StatusFailed FetchStatus = "failed"
)

// FetchResult summarizes one fetch operation.
type FetchResult struct {
	URL          string
	CachePath    string
	Status       FetchStatus
	Plan         ResumePlan
	ResumedFrom  int64 // offset the transfer started from, 0 for full fetches
	BytesWritten int64 // bytes appended during this operation
}

// FetchRecord is one persisted fetch-history row.
type FetchRecord struct {
	ID           int64
	URL          string
	CachePath    string
	Status       FetchStatus
	ResumedFrom  int64
	BytesWritten int64
	LastError    string
	CreatedAt    time.Time
}
