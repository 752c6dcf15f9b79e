package core

import (
	"sync"
	"time"

	"github.com/JonMunkholm/SliceOfPie/internal/chart"
	"github.com/JonMunkholm/SliceOfPie/internal/dataset"
)

// session owns one Dataset and everything derived from it.
//
// seq numbers every load and edit in the order it started. committed is the
// number of the Dataset currently established. A load takes its ticket
// after validation and before parsing, and commits only if its ticket is
// newer than committed; an edit takes a ticket and commits at once. A load
// that fails never commits, so it cannot invalidate anything.
type session struct {
	id        string
	createdAt time.Time

	mu         sync.Mutex
	seq        uint64
	committed  uint64
	fileName   string
	format     dataset.Format
	snap       *chart.Snapshot
	lastAccess time.Time
}

// State is a read-only view of a session.
type State struct {
	ID        string
	FileName  string
	Format    dataset.Format
	Snapshot  *chart.Snapshot
	CreatedAt time.Time
	UpdatedAt time.Time
}

// stateLocked copies the session fields. s.mu must be held.
func (s *session) stateLocked() *State {
	return &State{
		ID:        s.id,
		FileName:  s.fileName,
		Format:    s.format,
		Snapshot:  s.snap,
		CreatedAt: s.createdAt,
		UpdatedAt: s.lastAccess,
	}
}

func (s *session) state() *State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *session) touch(now time.Time) {
	s.mu.Lock()
	s.lastAccess = now
	s.mu.Unlock()
}

func (s *session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastAccess)
}

// reserve takes a load ticket.
func (s *session) reserve() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq
}

// commitLocked establishes ticket t unless something newer already has.
// s.mu must be held.
func (s *session) commitLocked(t uint64) bool {
	if t <= s.committed {
		return false
	}
	s.committed = t
	return true
}

// commitEditLocked takes and establishes a ticket for an edit. s.mu must be
// held.
func (s *session) commitEditLocked() {
	s.seq++
	s.committed = s.seq
}
