package attachment

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// UploadState is the live progress of one attachment's files, as exposed to
// pollers while an upload pipeline runs.
type UploadState struct {
	Files  []int        `json:"files"`
	Status UploadStatus `json:"status"`
}

// Overall returns the average percentage across all files.
func (s UploadState) Overall() int {
	if len(s.Files) == 0 {
		return 0
	}
	sum := 0
	for _, pct := range s.Files {
		sum += pct
	}
	return sum / len(s.Files)
}

// Tracker keeps per-file upload progress keyed by attachment id. Entries
// linger for a grace period after successful completion so a poller that
// reads just after the final write still sees the terminal state; failed
// uploads are cleared immediately.
type Tracker struct {
	mu      sync.Mutex
	states  map[uuid.UUID]*UploadState
	grace   time.Duration
	removal func(d time.Duration, f func()) *time.Timer
}

// NewTracker creates a tracker whose finished entries disappear after grace.
func NewTracker(grace time.Duration) *Tracker {
	return &Tracker{
		states:  make(map[uuid.UUID]*UploadState),
		grace:   grace,
		removal: time.AfterFunc,
	}
}

// Begin registers an upload of n files, all at zero percent.
func (t *Tracker) Begin(id uuid.UUID, n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.states[id] = &UploadState{Files: make([]int, n), Status: StatusPending}
}

// Set records progress for one file. Regressions are ignored so retried
// chunks never make the bar move backwards.
func (t *Tracker) Set(id uuid.UUID, file, pct int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	st, ok := t.states[id]
	if !ok || file < 0 || file >= len(st.Files) {
		return
	}
	if pct > st.Files[file] {
		st.Files[file] = pct
	}
}

// Snapshot returns a copy of the current state, and whether one exists.
func (t *Tracker) Snapshot(id uuid.UUID) (UploadState, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	st, ok := t.states[id]
	if !ok {
		return UploadState{}, false
	}
	out := UploadState{Files: append([]int(nil), st.Files...), Status: st.Status}
	return out, true
}

// Done marks the upload complete and schedules the entry's removal after the
// grace period.
func (t *Tracker) Done(id uuid.UUID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	st, ok := t.states[id]
	if !ok {
		return
	}
	st.Status = StatusComplete
	for i := range st.Files {
		st.Files[i] = 100
	}
	t.removal(t.grace, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		delete(t.states, id)
	})
}

// Fail drops the entry immediately. The record itself carries the failure
// reason; no poller needs stale progress.
func (t *Tracker) Fail(id uuid.UUID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.states, id)
}
