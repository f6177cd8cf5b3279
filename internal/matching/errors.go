package matching

import (
	"errors"
	"fmt"
)

// ErrBatchSize is matched by every *BatchSizeError.
var ErrBatchSize = errors.New("job batch size out of bounds")

const (
	BoundMinimum = "minimum"
	BoundMaximum = "maximum"
)

// BatchSizeError is returned by Match before any scoring when the number of jobs
// falls outside the configured bounds.
type BatchSizeError struct {
	Bound string
	Limit int
	Got   int
}

func (e *BatchSizeError) Error() string {
	if e.Bound == BoundMinimum {
		return fmt.Sprintf("too few jobs: got %d, minimum is %d", e.Got, e.Limit)
	}
	return fmt.Sprintf("too many jobs: got %d, maximum is %d", e.Got, e.Limit)
}

func (e *BatchSizeError) Is(target error) bool {
	return target == ErrBatchSize
}

// Warning flags a degenerate input. Warnings never stop scoring.
type Warning string

const (
	WarningJobWithoutSkills           Warning = "job_without_skills"
	WarningCandidateWithoutExperience Warning = "candidate_without_experience"
)

// Notice ties a warning to the job it was raised for. Candidate warnings have no JobID.
type Notice struct {
	Warning Warning `json:"warning"`
	JobID   string  `json:"job_id,omitempty"`
}
