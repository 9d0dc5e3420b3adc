// Package jobs tracks runs for embedding applications: each run gets
// an ID and a live status record that expires a while after the run
// finishes.
package jobs

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Status enumerates a job's lifecycle.
type Status string

const (
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// Job is a snapshot of one run's progress.
type Job struct {
	ID        string
	Status    Status
	Processed int
	Succeeded int
	Failed    int
	Total     int
	Message   string
	StartedAt time.Time
	UpdatedAt time.Time
}

// Store keeps jobs with a TTL. Finished jobs linger long enough for a
// caller to collect the result, then fall out on their own.
type Store struct {
	mu    sync.Mutex
	cache *expirable.LRU[string, *Job]
}

// NewStore builds a Store holding up to size jobs for ttl each.
func NewStore(size int, ttl time.Duration) *Store {
	return &Store{
		cache: expirable.NewLRU[string, *Job](size, nil, ttl),
	}
}

func newID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Create registers a new running job and returns it.
func (s *Store) Create(total int) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	job := &Job{
		ID:        newID(),
		Status:    StatusRunning,
		Total:     total,
		StartedAt: now,
		UpdatedAt: now,
	}
	s.cache.Add(job.ID, job)
	return job
}

// Get returns a copy of the job, so callers never race the updater.
func (s *Store) Get(id string) (Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.cache.Get(id)
	if !ok {
		return Job{}, false
	}
	return *job, true
}

// Update applies fn to the job under the store lock.
func (s *Store) Update(id string, fn func(*Job)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.cache.Get(id)
	if !ok {
		return false
	}
	fn(job)
	job.UpdatedAt = time.Now()
	return true
}

// Remove drops a job before its TTL.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Remove(id)
}

// Len reports how many jobs are currently retained.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Len()
}
