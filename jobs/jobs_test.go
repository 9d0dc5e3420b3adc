package jobs

import (
	"testing"
	"time"
)

func TestCreateAndGet(t *testing.T) {
	store := NewStore(16, time.Minute)

	job := store.Create(10)
	if job.ID == "" {
		t.Fatal("job has no ID")
	}
	if job.Status != StatusRunning {
		t.Errorf("status = %q", job.Status)
	}

	got, ok := store.Get(job.ID)
	if !ok {
		t.Fatal("job not found")
	}
	if got.Total != 10 {
		t.Errorf("total = %d", got.Total)
	}
}

func TestUpdate(t *testing.T) {
	store := NewStore(16, time.Minute)
	job := store.Create(3)

	ok := store.Update(job.ID, func(j *Job) {
		j.Processed = 3
		j.Succeeded = 2
		j.Failed = 1
		j.Status = StatusDone
	})
	if !ok {
		t.Fatal("update reported missing job")
	}

	got, _ := store.Get(job.ID)
	if got.Status != StatusDone || got.Succeeded != 2 || got.Failed != 1 {
		t.Errorf("job = %+v", got)
	}
	if !got.UpdatedAt.After(got.StartedAt) && !got.UpdatedAt.Equal(got.StartedAt) {
		t.Error("UpdatedAt not refreshed")
	}
}

func TestGetReturnsCopy(t *testing.T) {
	store := NewStore(16, time.Minute)
	job := store.Create(1)

	snapshot, _ := store.Get(job.ID)
	snapshot.Processed = 99

	fresh, _ := store.Get(job.ID)
	if fresh.Processed != 0 {
		t.Error("snapshot mutation leaked into the store")
	}
}

func TestTTLEviction(t *testing.T) {
	store := NewStore(16, 50*time.Millisecond)
	job := store.Create(1)

	time.Sleep(120 * time.Millisecond)
	if _, ok := store.Get(job.ID); ok {
		t.Error("job survived past its TTL")
	}
}

func TestRemove(t *testing.T) {
	store := NewStore(16, time.Minute)
	job := store.Create(1)
	store.Remove(job.ID)
	if _, ok := store.Get(job.ID); ok {
		t.Error("removed job still present")
	}
	if store.Len() != 0 {
		t.Errorf("Len = %d", store.Len())
	}
}
