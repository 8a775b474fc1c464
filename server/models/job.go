package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

const JOIN_JOB_STATUS = "INNER JOIN job_statuses ON job_statuses.id = jobs.job_status_id AND job_statuses.name = ?"

var ErrDuplicateJob = errors.New("job with the given name already exists in queue")

type Job struct {
	BaseModel
	Fails       int        `json:"fails"`
	Name        string     `json:"name" gorm:"not null;index"`
	Handler     string     `json:"handler" gorm:"not null"`
	Args        string     `json:"args"`
	LastError   string     `json:"last_error"`
	Claimed     bool       `json:"claimed" gorm:"default:false"`
	EnqueuedAt  time.Time  `json:"enqueued_at" gorm:"index"`
	JobStatusID uint       `json:"job_status_id"`
	JobStatus   *JobStatus `json:"status,omitempty"`
}

func (job *Job) Update(data map[string]interface{}) error {
	return db.Model(&Job{}).Where("id = ?", job.ID).Updates(data).Error
}

// CreateJob puts a job into the 'enqueued' queue. With unique set, a job of the same name
// that is still enqueued or in-progress makes this return ErrDuplicateJob.
func CreateJob(name, handler, args string, unique bool) (*Job, error) {
	enqueuedStatus, err := FindJobStatus(ENQUEUED_JOB)
	if err != nil {
		return nil, err
	}

	if unique {
		var count int64
		err = db.Model(&Job{}).
			Joins("INNER JOIN job_statuses ON job_statuses.id = jobs.job_status_id AND job_statuses.name IN ?",
				[]string{ENQUEUED_JOB, IN_PROGRESS_JOB}).
			Where("jobs.name = ?", name).Count(&count).Error
		if err != nil {
			return nil, err
		}

		if count > 0 {
			return nil, ErrDuplicateJob
		}
	}

	job := Job{
		Name:        name,
		Handler:     handler,
		Args:        args,
		EnqueuedAt:  time.Now(),
		JobStatusID: enqueuedStatus.ID,
	}

	err = db.Create(&job).Error
	if err != nil {
		return nil, err
	}

	return &job, nil
}

// NextEnqueuedJob returns the oldest unclaimed job waiting in the 'enqueued' queue.
func NextEnqueuedJob() (*Job, error) {
	job := Job{}
	err := db.Joins(JOIN_JOB_STATUS, ENQUEUED_JOB).
		Where("jobs.claimed = ?", false).
		Order("jobs.enqueued_at, jobs.id").First(&job).Error
	if err != nil {
		return nil, err
	}

	return &job, nil
}

// ClaimJob atomically marks the job as claimed & in-progress.
// It returns false when another worker claimed it first.
func ClaimJob(id uint) (bool, error) {
	inProgressStatus, err := FindJobStatus(IN_PROGRESS_JOB)
	if err != nil {
		return false, err
	}

	res := db.Model(&Job{}).Where("id = ? AND claimed = ?", id, false).Updates(map[string]interface{}{
		"claimed":       true,
		"job_status_id": inProgressStatus.ID,
		"updated_at":    time.Now(),
	})
	if res.Error != nil {
		return false, res.Error
	}

	return res.RowsAffected > 0, nil
}

func FindJob(id interface{}) (*Job, error) {
	job := Job{}
	err := db.Preload("JobStatus").First(&job, "id = ?", id).Error
	if err != nil {
		return nil, err
	}

	return &job, nil
}

// FetchJobs pages through jobs, newest first; status may be empty for all jobs.
func FetchJobs(page int, status string) ([]Job, *Paging, error) {
	var total int64
	jobs := []Job{}

	query := db.Model(&Job{})
	if status != "" {
		query = query.Joins(JOIN_JOB_STATUS, status)
	}

	err := query.Count(&total).Error
	if err != nil {
		return nil, nil, err
	}

	query = db.Scopes(paginate(page, DEFAULT_PAGE_SIZE)).Preload("JobStatus").Order("jobs.id desc")
	if status != "" {
		query = query.Joins(JOIN_JOB_STATUS, status)
	}

	err = query.Find(&jobs).Error
	if err != nil {
		return nil, nil, err
	}

	return jobs, newPaging(int64(page), DEFAULT_PAGE_SIZE, total), nil
}

func CurrentJobsStats() (*JobsStats, error) {
	stats := JobsStats{}
	counts := map[string]*int64{
		ENQUEUED_JOB:    &stats.EnqueuedJobCount,
		IN_PROGRESS_JOB: &stats.InProgressJobCount,
		SUCCESSFUL_JOB:  &stats.SuccessfulJobCount,
		DEAD_JOB:        &stats.DeadJobCount,
	}

	for status, count := range counts {
		err := db.Joins(JOIN_JOB_STATUS, status).Model(&Job{}).Count(count).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	return &stats, nil
}

// LastJobLastUpdated returns the most recent job of 'status' whose last update
// is at least 'minutesAgo' minutes old.
func LastJobLastUpdated(minutesAgo uint, status string) (*Job, error) {
	cutoff := time.Now().Add(-time.Duration(minutesAgo) * time.Minute)

	job := Job{}
	err := db.Joins(JOIN_JOB_STATUS, status).
		Where("jobs.updated_at <= ?", cutoff).
		Order("jobs.id desc").First(&job).Error
	if err != nil {
		return nil, err
	}

	return &job, nil
}

// DeleteJobsOlderThan removes finished jobs of 'status' last updated before cutoff.
func DeleteJobsOlderThan(status string, cutoff time.Time) (int64, error) {
	jobStatus, err := FindJobStatus(status)
	if err != nil {
		return 0, err
	}

	res := db.Where("job_status_id = ? AND updated_at < ?", jobStatus.ID, cutoff).Delete(&Job{})
	return res.RowsAffected, res.Error
}
