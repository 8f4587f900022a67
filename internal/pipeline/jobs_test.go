package pipeline

import (
	"testing"
	"time"

	"github.com/dgallion1/mtags/internal/mtag"
)

func TestContentHashHex_Consistency(t *testing.T) {
	data := []byte("hello world")
	h1 := ContentHashHex(data)
	h2 := ContentHashHex(data)
	if h1 != h2 {
		t.Errorf("expected identical hashes, got %q and %q", h1, h2)
	}
	// SHA-256 of "hello world" is well-known.
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if h1 != want {
		t.Errorf("expected hash %q, got %q", want, h1)
	}
}

func TestNewJobID_Unique(t *testing.T) {
	id1 := NewJobID("foo.m")
	id2 := NewJobID("foo.m")
	if len(id1) != 20 {
		t.Errorf("expected 20-char job id, got %d", len(id1))
	}
	if id1 == id2 {
		t.Error("expected distinct ids for repeated submissions")
	}
}

func TestJob_StateTransitions(t *testing.T) {
	job := &Job{
		ID:        "test-1",
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{StatusScanning, "scanning"},
		{StatusCompleted, "done"},
	}

	for _, tr := range transitions {
		before := job.UpdatedAt
		// Small sleep to ensure time difference is detectable.
		time.Sleep(time.Millisecond)
		job.SetStatus(tr.status, tr.phase)

		if job.Status != tr.status {
			t.Errorf("expected status %q, got %q", tr.status, job.Status)
		}
		if job.Phase != tr.phase {
			t.Errorf("expected phase %q, got %q", tr.phase, job.Phase)
		}
		if !job.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}
}

func TestJob_AddResult(t *testing.T) {
	job := &Job{ID: "res-test", UpdatedAt: time.Now()}
	job.SetInputs([]InputFile{
		{Name: "a.m", Data: []byte("function a()\nend\n")},
		{Name: "b.m", Data: []byte("x = 1;\n")},
	})

	job.AddResult(FileOutline{
		Name: "a.m",
		Tags: []*mtag.FunctionTag{
			{Name: "a", Start: 0, End: 17, Children: []*mtag.FunctionTag{{Name: "sub", Start: 1, End: 5}}},
		},
	})
	job.AddResult(FileOutline{Name: "b.m", Tags: []*mtag.FunctionTag{}, Error: "no matlab source found"})

	snap := job.Snapshot()
	if snap.Progress.TotalFiles != 2 {
		t.Errorf("expected 2 total files, got %d", snap.Progress.TotalFiles)
	}
	if snap.Progress.FilesScanned != 2 {
		t.Errorf("expected 2 files scanned, got %d", snap.Progress.FilesScanned)
	}
	// Tag counting includes subfunctions.
	if snap.Progress.TagsFound != 2 {
		t.Errorf("expected 2 tags found, got %d", snap.Progress.TagsFound)
	}
	if len(snap.Progress.Errors) != 1 {
		t.Fatalf("expected 1 error, got %d", len(snap.Progress.Errors))
	}
	if snap.Progress.Errors[0] != "b.m: no matlab source found" {
		t.Errorf("unexpected error string %q", snap.Progress.Errors[0])
	}

	results := job.Results()
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Name != "a.m" || results[1].Name != "b.m" {
		t.Errorf("results out of order: %q, %q", results[0].Name, results[1].Name)
	}
}

func TestJobStore_PutGetCleanup(t *testing.T) {
	store := NewJobStore(10 * time.Millisecond)
	job := &Job{ID: "ttl-test", UpdatedAt: time.Now()}
	store.Put(job)

	if got := store.Get("ttl-test"); got != job {
		t.Fatal("expected to get the stored job back")
	}
	if got := store.Get("missing"); got != nil {
		t.Error("expected nil for an unknown id")
	}

	time.Sleep(20 * time.Millisecond)
	store.Cleanup()
	if got := store.Get("ttl-test"); got != nil {
		t.Error("expected expired job to be evicted")
	}
}

func TestSnapshot_ErrorsNeverNil(t *testing.T) {
	job := &Job{ID: "nil-errs"}
	snap := job.Snapshot()
	if snap.Progress.Errors == nil {
		t.Error("expected non-nil errors slice in snapshot")
	}
}
