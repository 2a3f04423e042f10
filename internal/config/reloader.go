package config

import (
	"context"
	"log"
	"os"
	"time"
)

// Reloader periodically re-reads a tuning file and replaces the store's
// contents. A read failure (file missing, permission error) skips the cycle
// and leaves the previous tunables in effect; a successful read always
// rebuilds from defaults, so keys omitted from the file revert rather than
// sticking at their prior values.
type Reloader struct {
	store    *Store
	path     string
	interval time.Duration
}

// NewReloader returns a Reloader that refreshes store from the file at path
// once per interval.
func NewReloader(store *Store, path string, interval time.Duration) *Reloader {
	return &Reloader{store: store, path: path, interval: interval}
}

// Run re-reads the tuning file until ctx is cancelled. It sleeps the full
// interval between attempts, so shutdown is observed within one interval.
// Should be run in a goroutine.
func (r *Reloader) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(r.interval):
		}
		r.reload()
	}
}

// reload performs one read-parse-replace cycle. Returns false when the file
// could not be read and the cycle was skipped.
func (r *Reloader) reload() bool {
	contents, err := os.ReadFile(r.path)
	if err != nil {
		return false
	}
	t := Parse(string(contents))
	r.store.Replace(t)
	return true
}

// LogCurrent writes the store's current tunables to the log. Called once at
// startup so the operator can see what the loop starts with.
func (r *Reloader) LogCurrent() {
	t := r.store.Snapshot()
	log.Printf("tuning: sensitivity=%g invert_x=%g invert_y=%g gravity=%s/%g",
		t.Sensitivity, t.InvertX, t.InvertY, t.GravityAxis, t.GravityAmount)
}
