package imports

import (
	"io"

	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	"github.com/stockroomhq/stockroom-backend/pkg/enums"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// UploadInput carries one uploaded catalog file.
type UploadInput struct {
	Filename  string
	Content   io.Reader
	ActorID   int64
	ActorRole enums.UserRole
}

// ProcessResult summarizes one finished processing run.
type ProcessResult struct {
	TotalRows    int      `json:"total_rows"`
	SuccessCount int      `json:"success_count"`
	ErrorCount   int      `json:"error_count"`
	Errors       []string `json:"errors"`
}

// UploadResult reports how the upload was routed. Result is populated only
// when the file was small enough to process inline.
type UploadResult struct {
	JobID  int64                 `json:"job_id"`
	Status enums.ImportJobStatus `json:"status"`
	Result *ProcessResult        `json:"result,omitempty"`
}

// ListJobsInput pages through recent import jobs.
type ListJobsInput struct {
	Limit  int
	Offset int
}

func (in *ListJobsInput) normalize() {
	if in.Limit <= 0 {
		in.Limit = defaultPageSize
	}
	if in.Limit > maxPageSize {
		in.Limit = maxPageSize
	}
	if in.Offset < 0 {
		in.Offset = 0
	}
}

// JobList is one page of import jobs plus the total count.
type JobList struct {
	Jobs   []models.ImportJob `json:"jobs"`
	Total  int64              `json:"total"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
}
