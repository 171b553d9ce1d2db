package probe

import "context"

// Result is the classified outcome of a single reachability probe.
//
// Fields:
//   - StatusCode: HTTP status when a response arrived; 0 for transport errors.
//   - ResponseTimeMS: wall-clock latency; nil when no response was received.
//   - Reason: "HTTP <code>" or the transport error when down, empty when up.
type Result struct {
	Up             bool
	StatusCode     int
	ResponseTimeMS *int64
	Reason         string
}

// Checker performs one check against a target URL. Implementations never
// return transport failures as errors; they classify them as down.
type Checker interface {
	Check(ctx context.Context, target string) Result
}
