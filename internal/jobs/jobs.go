// Package jobs runs resume rewrites in the background: a bounded queue feeds
// a fixed pool of workers, and callers poll job snapshots by id.
package jobs

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status represents the state of a rewrite job.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusAnalyzing  Status = "analyzing"
	StatusRewriting  Status = "rewriting"
	StatusValidating Status = "validating"
	StatusCompiling  Status = "compiling"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusPartial    Status = "partial"
)

// Finished reports whether s is a terminal status.
func (s Status) Finished() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusPartial
}

// Job tracks one rewrite of the workspace resume.
type Job struct {
	mu sync.Mutex

	ID           string
	Instructions string

	status    Status
	phase     string
	progress  Progress
	atsBefore *int
	atsAfter  *int
	versionID string
	artifact  string
	pages     int

	CreatedAt time.Time
	updatedAt time.Time
}

// Progress tracks section-level progress.
type Progress struct {
	TotalSections     int      `json:"total_sections"`
	SectionsProcessed int      `json:"sections_processed"`
	SectionsRewritten int      `json:"sections_rewritten"`
	Errors            []string `json:"errors"`
}

// NewJob returns a queued job with a fresh id.
func NewJob(instructions string) *Job {
	now := time.Now()
	return &Job{
		ID:           uuid.NewString(),
		Instructions: instructions,
		status:       StatusQueued,
		phase:        "queued",
		CreatedAt:    now,
		updatedAt:    now,
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status Status, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.status = status
	j.phase = phase
	j.updatedAt = time.Now()
}

func (j *Job) Status() Status {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.progress.Errors = append(j.progress.Errors, err)
	j.updatedAt = time.Now()
}

// SetTotalSections records how many sections the rewrite will visit.
func (j *Job) SetTotalSections(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.progress.TotalSections = n
	j.updatedAt = time.Now()
}

// SectionDone counts one processed section.
func (j *Job) SectionDone(rewritten bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.progress.SectionsProcessed++
	if rewritten {
		j.progress.SectionsRewritten++
	}
	j.updatedAt = time.Now()
}

// SetOutcome records the version saved before the rewrite and the scores
// on either side of it.
func (j *Job) SetOutcome(versionID string, before, after int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.versionID = versionID
	j.atsBefore = &before
	j.atsAfter = &after
	j.updatedAt = time.Now()
}

// SetArtifact records where the compiled PDF was stored.
func (j *Job) SetArtifact(key string, pages int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.artifact = key
	j.pages = pages
	j.updatedAt = time.Now()
}

func (j *Job) UpdatedAt() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.updatedAt
}

// Snapshot is a read-only, JSON-safe copy of job state.
type Snapshot struct {
	ID           string    `json:"job_id"`
	Status       Status    `json:"status"`
	Phase        string    `json:"phase"`
	Instructions string    `json:"instructions,omitempty"`
	Progress     Progress  `json:"progress"`
	ATSBefore    *int      `json:"ats_before,omitempty"`
	ATSAfter     *int      `json:"ats_after,omitempty"`
	VersionID    string    `json:"version_id,omitempty"`
	ArtifactKey  string    `json:"artifact_key,omitempty"`
	Pages        int       `json:"pages,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() Snapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := append([]string{}, j.progress.Errors...)
	p := j.progress
	p.Errors = errs
	return Snapshot{
		ID:           j.ID,
		Status:       j.status,
		Phase:        j.phase,
		Instructions: j.Instructions,
		Progress:     p,
		ATSBefore:    copyInt(j.atsBefore),
		ATSAfter:     copyInt(j.atsAfter),
		VersionID:    j.versionID,
		ArtifactKey:  j.artifact,
		Pages:        j.pages,
		CreatedAt:    j.CreatedAt,
		UpdatedAt:    j.updatedAt,
	}
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Store is a thread-safe in-memory job registry with TTL eviction.
type Store struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *Store) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *Store) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Cleanup removes finished jobs idle for longer than the TTL.
func (s *Store) Cleanup(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, job := range s.jobs {
		if job.Status().Finished() && now.Sub(job.UpdatedAt()) > s.ttl {
			delete(s.jobs, id)
			removed++
		}
	}
	return removed
}
