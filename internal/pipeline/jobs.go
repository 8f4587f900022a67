package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/dgallion1/mtags/internal/mtag"
)

// JobStatus represents the state of a batch outline job.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusScanning  JobStatus = "scanning"
	StatusCompleted JobStatus = "completed"
	StatusPartial   JobStatus = "partial"
	StatusFailed    JobStatus = "failed"
)

// InputFile is one submitted source file awaiting scanning.
type InputFile struct {
	Name string
	Data []byte
}

// FileOutline is the scan result for one submitted file.
type FileOutline struct {
	Name        string               `json:"name"`
	ContentHash string               `json:"content_hash,omitempty"`
	Tags        []*mtag.FunctionTag  `json:"tags"`
	Error       string               `json:"error,omitempty"`
}

// Job tracks the state of a single batch outline request.
type Job struct {
	mu sync.Mutex

	ID string `json:"job_id"`

	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	Progress Progress `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	inputs  []InputFile
	results []FileOutline
}

// Progress tracks scanning progress.
type Progress struct {
	TotalFiles   int      `json:"total_files"`
	FilesScanned int      `json:"files_scanned"`
	TagsFound    int      `json:"tags_found"`
	Errors       []string `json:"errors"`
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.UpdatedAt) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records a job-level error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Errors = append(j.Progress.Errors, err)
	j.UpdatedAt = time.Now()
}

// AddResult records the outline for one scanned file.
func (j *Job) AddResult(res FileOutline) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.results = append(j.results, res)
	j.Progress.FilesScanned++
	j.Progress.TagsFound += mtag.Count(res.Tags)
	if res.Error != "" {
		j.Progress.Errors = append(j.Progress.Errors, fmt.Sprintf("%s: %s", res.Name, res.Error))
	}
	j.UpdatedAt = time.Now()
}

// SetInputs records the files to scan.
func (j *Job) SetInputs(inputs []InputFile) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.inputs = inputs
	j.Progress.TotalFiles = len(inputs)
}

// Inputs returns the submitted files.
func (j *Job) Inputs() []InputFile {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.inputs
}

// Results returns a copy of the per-file outlines produced so far.
func (j *Job) Results() []FileOutline {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]FileOutline, len(j.results))
	copy(out, j.results)
	return out
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID       string    `json:"job_id"`
	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Progress Progress  `json:"progress"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := j.Progress.Errors
	if errs == nil {
		errs = []string{}
	}
	return JobSnapshot{
		ID:     j.ID,
		Status: j.Status,
		Phase:  j.Phase,
		Progress: Progress{
			TotalFiles:   j.Progress.TotalFiles,
			FilesScanned: j.Progress.FilesScanned,
			TagsFound:    j.Progress.TagsFound,
			Errors:       errs,
		},
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}

// NewJobID derives a job ID from the submission contents and time.
func NewJobID(seed string) string {
	return ContentHashHex([]byte(fmt.Sprintf("%s-%d", seed, time.Now().UnixNano())))[:20]
}
