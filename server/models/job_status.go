package models

const (
	ENQUEUED_JOB    = "enqueued"
	IN_PROGRESS_JOB = "in-progress"
	SUCCESSFUL_JOB  = "successful"
	DEAD_JOB        = "dead"
)

var JobStatusNameMap = map[string]bool{
	ENQUEUED_JOB:    true,
	IN_PROGRESS_JOB: true,
	SUCCESSFUL_JOB:  true,
	DEAD_JOB:        true,
}

type JobsStats struct {
	EnqueuedJobCount   int64 `json:"enqueued_job_count"`
	InProgressJobCount int64 `json:"in_progress_job_count"`
	SuccessfulJobCount int64 `json:"successful_job_count"`
	DeadJobCount       int64 `json:"dead_job_count"`
}

type JobStatus struct {
	BaseModel
	Name string `json:"name" gorm:"not null;unique"`
	Jobs []Job  `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
}

func FindJobStatus(name string) (*JobStatus, error) {
	jobStatus := JobStatus{}
	err := db.Select("id", "name").First(&jobStatus, "name = ?", name).Error
	if err != nil {
		return nil, err
	}

	return &jobStatus, nil
}

func seedJobStatuses() []JobStatus {
	return []JobStatus{{Name: ENQUEUED_JOB}, {Name: IN_PROGRESS_JOB}, {Name: SUCCESSFUL_JOB}, {Name: DEAD_JOB}}
}
