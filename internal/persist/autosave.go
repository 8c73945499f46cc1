package persist

import (
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"inspectline/internal/record"
)

// Autosaver periodically re-saves the current record to its last manual save
// path. It only becomes active after a manual save to a path whose base name
// matches the record's header identifier. Failures are logged, never
// surfaced, and retried on the next tick. Overlapping ticks are skipped, not
// queued.
type Autosaver struct {
	Engine   *Engine
	Interval time.Duration
	Log      logrus.FieldLogger

	// Record returns the live record. Model mutation is single-threaded, so
	// reading it here takes a consistent snapshot by contract.
	Record func() *record.Record

	inProgress atomic.Bool

	mu   sync.Mutex
	path string

	stop chan struct{}
	done chan struct{}
}

// NotifySaved records the path of the latest successful manual save.
func (a *Autosaver) NotifySaved(path string) {
	a.mu.Lock()
	a.path = path
	a.mu.Unlock()
}

func (a *Autosaver) savePath() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.path
}

func (a *Autosaver) log() logrus.FieldLogger {
	if a.Log != nil {
		return a.Log
	}
	return logrus.StandardLogger()
}

// Start launches the tick loop. Stop shuts it down and waits for the loop to
// exit.
func (a *Autosaver) Start() {
	if a.stop != nil {
		return
	}
	a.stop = make(chan struct{})
	a.done = make(chan struct{})
	go a.loop()
}

func (a *Autosaver) Stop() {
	if a.stop == nil {
		return
	}
	close(a.stop)
	<-a.done
	a.stop = nil
}

func (a *Autosaver) loop() {
	defer close(a.done)
	ticker := time.NewTicker(a.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-a.stop:
			return
		case <-ticker.C:
			a.RunOnce()
		}
	}
}

// RunOnce performs a single autosave attempt and reports whether a save was
// actually performed. It is the body of one tick, exported so the schedule
// can be driven directly in tests.
func (a *Autosaver) RunOnce() bool {
	if !a.inProgress.CompareAndSwap(false, true) {
		return false
	}
	defer a.inProgress.Store(false)

	path := a.savePath()
	if path == "" || a.Record == nil {
		return false
	}
	rec := a.Record()
	if rec == nil || !eligible(path, rec.Header.Identifier) {
		return false
	}
	if err := a.Engine.Save(rec, path); err != nil {
		a.log().WithError(err).Warn("autosave failed; will retry on next tick")
		return false
	}
	return true
}

// eligible requires the save file's base name to match the header identifier.
func eligible(path, identifier string) bool {
	if identifier == "" {
		return false
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base)) == identifier
}
