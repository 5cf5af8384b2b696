package batch

import (
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status tracks the lifecycle of an execution.
type Status string

const (
	StatusStarting  Status = "starting"
	StatusStarted   Status = "started"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// ExecutionContextWorkingDirectory is the context key holding the directory
// where a job writes its files.
const ExecutionContextWorkingDirectory = "workingDirectory"

// ExecutionContext is a concurrency safe bag of values shared by the steps of
// a job execution.
type ExecutionContext struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewExecutionContext creates an empty context.
func NewExecutionContext() *ExecutionContext {
	return &ExecutionContext{values: make(map[string]any)}
}

func (c *ExecutionContext) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	value, ok := c.values[key]
	return value, ok
}

func (c *ExecutionContext) Put(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
}

// JobExecution is one run of a job instance on behalf of a user.
type JobExecution struct {
	ID               uuid.UUID
	JobCode          string
	User             string
	Parameters       JobParameters
	ExecutionContext *ExecutionContext
	Status           Status
	StartedAt        time.Time
	EndedAt          time.Time
}

// NewJobExecution creates a starting execution.
func NewJobExecution(jobCode, user string, parameters JobParameters) *JobExecution {
	return &JobExecution{
		ID:               uuid.New(),
		JobCode:          jobCode,
		User:             user,
		Parameters:       parameters,
		ExecutionContext: NewExecutionContext(),
		Status:           StatusStarting,
	}
}

// WorkingDirectory returns the directory recorded in the execution context.
func (j *JobExecution) WorkingDirectory() string {
	if j == nil || j.ExecutionContext == nil {
		return ""
	}
	value, _ := j.ExecutionContext.Get(ExecutionContextWorkingDirectory)
	dir, _ := value.(string)
	return dir
}

// SetWorkingDirectory records the directory in the execution context.
func (j *JobExecution) SetWorkingDirectory(dir string) {
	if j.ExecutionContext == nil {
		j.ExecutionContext = NewExecutionContext()
	}
	j.ExecutionContext.Put(ExecutionContextWorkingDirectory, dir)
}

// Warning is a non-fatal problem met while processing an item.
type Warning struct {
	Reason     string
	Parameters map[string]any
	Item       string
}

// StepExecution tracks counters, warnings and summary information of a step.
type StepExecution struct {
	Name         string
	JobExecution *JobExecution

	mu         sync.Mutex
	status     Status
	readCount  int
	writeCount int
	skipCount  int
	warnings   []Warning
	summary    map[string]int
	failures   []error
	startedAt  time.Time
	endedAt    time.Time
}

// NewStepExecution creates a step bound to its job execution.
func NewStepExecution(name string, job *JobExecution) *StepExecution {
	return &StepExecution{
		Name:         name,
		JobExecution: job,
		status:       StatusStarting,
		summary:      make(map[string]int),
	}
}

// Parameters returns the job parameters.
func (s *StepExecution) Parameters() JobParameters {
	if s.JobExecution == nil {
		return JobParameters{}
	}
	return s.JobExecution.Parameters
}

// Start marks the step as started.
func (s *StepExecution) Start(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = StatusStarted
	s.startedAt = now
}

// Finish marks the step as completed, or failed when err is set.
func (s *StepExecution) Finish(now time.Time, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.endedAt = now
	if err != nil {
		s.status = StatusFailed
		s.failures = append(s.failures, err)
		return
	}
	s.status = StatusCompleted
}

func (s *StepExecution) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Duration returns the elapsed time of a finished step.
func (s *StepExecution) Duration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.startedAt.IsZero() || s.endedAt.IsZero() {
		return 0
	}
	return s.endedAt.Sub(s.startedAt)
}

func (s *StepExecution) IncrementReadCount() {
	s.mu.Lock()
	s.readCount++
	s.mu.Unlock()
}

func (s *StepExecution) IncrementWriteCount(n int) {
	s.mu.Lock()
	s.writeCount += n
	s.mu.Unlock()
}

func (s *StepExecution) IncrementSkipCount() {
	s.mu.Lock()
	s.skipCount++
	s.mu.Unlock()
}

// Counts returns the read, write and skip counters.
func (s *StepExecution) Counts() (read, write, skip int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readCount, s.writeCount, s.skipCount
}

// AddWarning records a non-fatal problem.
func (s *StepExecution) AddWarning(reason string, parameters map[string]any, item string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.warnings = append(s.warnings, Warning{
		Reason:     reason,
		Parameters: maps.Clone(parameters),
		Item:       item,
	})
}

// Warnings returns a snapshot of the recorded warnings.
func (s *StepExecution) Warnings() []Warning {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Warning, len(s.warnings))
	copy(out, s.warnings)
	return out
}

// IncrementSummaryInfo adds n to a summary counter.
func (s *StepExecution) IncrementSummaryInfo(key string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summary[key] += n
}

// SummaryInfo returns a copy of the summary counters.
func (s *StepExecution) SummaryInfo() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.summary)
}

// Failures returns the errors that failed the step.
func (s *StepExecution) Failures() []error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]error(nil), s.failures...)
}

// WorkingDirectory returns the job working directory.
func (s *StepExecution) WorkingDirectory() string {
	return s.JobExecution.WorkingDirectory()
}
