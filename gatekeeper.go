package carcheacks

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"
)

// Decision status values recorded in the access log
const (
	StatusAllow = "ALLOW"
	StatusDeny  = "DENY"
)

// AccessLogHeader is the column set of the append-only access log
var AccessLogHeader = []string{"timestamp", "plate_number", "status"}

// Gatekeeper makes access decisions for canonical plate numbers against a
// whitelist and appends every fresh decision to an access log.  A plate
// seen again within the suppression window is not re-logged, so a car
// idling at the barrier produces one log row, not one per frame.
type Gatekeeper struct {
	authorized map[string]bool
	logw       *csv.Writer
	window     time.Duration
	lastSeen   map[string]time.Time
	// now is stubbed in tests
	now func() time.Time
}

// NewGatekeeper returns a Gatekeeper authorizing the given plates and
// appending decision rows to logw.  window is the duplicate suppression
// interval; zero disables suppression.
func NewGatekeeper(authorized []string, logw io.Writer, window time.Duration) *Gatekeeper {
	g := &Gatekeeper{
		authorized: make(map[string]bool, len(authorized)),
		logw:       csv.NewWriter(logw),
		window:     window,
		lastSeen:   make(map[string]time.Time),
		now:        time.Now,
	}

	for _, plate := range authorized {
		g.authorized[plate] = true
	}

	return g
}

// WriteLogHeader writes the access log column header, for callers starting
// a fresh log file rather than appending to an existing one
func (g *Gatekeeper) WriteLogHeader() error {
	if err := g.logw.Write(AccessLogHeader); err != nil {
		return fmt.Errorf("writing access log header: %w", err)
	}

	g.logw.Flush()

	return g.logw.Error()
}

// Authorized reports whether a canonical plate number is whitelisted
func (g *Gatekeeper) Authorized(plate string) bool {
	return g.authorized[plate]
}

// Process decides ALLOW or DENY for a canonical plate number and appends
// the decision to the access log.  logged is false when the plate was
// already decided within the suppression window and nothing was written.
func (g *Gatekeeper) Process(plate string) (status string, logged bool, err error) {
	status = StatusDeny

	if g.authorized[plate] {
		status = StatusAllow
	}

	now := g.now()

	if last, seen := g.lastSeen[plate]; seen && g.window > 0 && now.Sub(last) < g.window {
		return status, false, nil
	}

	g.lastSeen[plate] = now

	row := []string{now.Format("2006-01-02 15:04:05"), plate, status}

	if err := g.logw.Write(row); err != nil {
		return status, false, fmt.Errorf("writing access log row: %w", err)
	}

	g.logw.Flush()

	if err := g.logw.Error(); err != nil {
		return status, false, fmt.Errorf("flushing access log: %w", err)
	}

	return status, true, nil
}
