package work

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/zivilschutz/zsadmin/server/models"
)

var testBackoffs = []time.Duration{10 * time.Millisecond, 20 * time.Millisecond}

func TestEnqueue(t *testing.T) {
	assert.Nil(t, models.InitializeTestDb())

	workerPool := newWorkerPool(MAX_CONCURRENCY, testBackoffs)

	job, err := workerPool.enqueue(JobParams{
		Name:    "notify",
		Handler: "notifyAdmins",
		Args: map[string]interface{}{
			"subject": "Neue Ausbildung",
		},
	})
	assert.Nil(t, err)

	next, err := models.NextEnqueuedJob()
	assert.Nil(t, err)
	assert.Equal(t, job.ID, next.ID)
	assert.Contains(t, next.Args, "Neue Ausbildung", "Should contain the correct arg values")

	_, err = workerPool.enqueue(JobParams{Name: " ", Handler: "notifyAdmins"})
	assert.NotNil(t, err, "A job needs a name")
}

func TestRegisterHandler(t *testing.T) {
	workerPool := newWorkerPool(2, testBackoffs)
	handler := func(map[string]interface{}) error { return nil }

	assert.Nil(t, workerPool.registerHandler("noop", handler))
	assert.Equal(t, ErrDuplicateHandler, workerPool.registerHandler("noop", handler))

	for _, w := range workerPool.workers {
		assert.Contains(t, w.handlers, "noop")
	}
}

func TestWorkerBackoff(t *testing.T) {
	w := newWorker("1", []time.Duration{0, time.Second, time.Minute})

	assert.Equal(t, DefaultTickerDuration, w.backoff(0), "Zero backoff is raised to the ticker minimum")
	assert.Equal(t, time.Second, w.backoff(1))
	assert.Equal(t, time.Minute, w.backoff(2))
	assert.Equal(t, time.Minute, w.backoff(10))
}

func TestPerform(t *testing.T) {
	assert.Nil(t, models.InitializeTestDb())

	adapter := NewWorkerAdapter("UTC", Options{SleepBackoffs: testBackoffs})

	var mu sync.Mutex
	received := []string{}
	err := adapter.Register("record", func(args map[string]interface{}) error {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, args["value"].(string))
		return nil
	})
	assert.Nil(t, err)

	err = adapter.Perform(JobParams{Name: "record", Handler: "record", Args: map[string]interface{}{"value": "Hallo"}})
	assert.Nil(t, err)

	adapter.Start()
	defer adapter.Stop()

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == 1
	}, 3*time.Second, 20*time.Millisecond)

	assert.Eventually(t, func() bool {
		stats, err := models.CurrentJobsStats()
		return err == nil && stats.SuccessfulJobCount == 1
	}, 3*time.Second, 20*time.Millisecond)
}

func TestFailingJobEndsDead(t *testing.T) {
	assert.Nil(t, models.InitializeTestDb())

	adapter := NewWorkerAdapter("UTC", Options{SleepBackoffs: testBackoffs})
	err := adapter.Register("fail", func(map[string]interface{}) error {
		return errors.New("smtp down")
	})
	assert.Nil(t, err)

	err = adapter.Perform(JobParams{Name: "fail", Handler: "fail", Args: map[string]interface{}{}})
	assert.Nil(t, err)

	adapter.Start()
	defer adapter.Stop()

	assert.Eventually(t, func() bool {
		stats, err := models.CurrentJobsStats()
		return err == nil && stats.DeadJobCount == 1
	}, 5*time.Second, 20*time.Millisecond)

	jobs, _, err := models.FetchJobs(1, models.DEAD_JOB)
	assert.Nil(t, err)
	assert.Len(t, jobs, 1)
	assert.Equal(t, MAX_FAILS, jobs[0].Fails)
	assert.Equal(t, "smtp down", jobs[0].LastError)
}

func TestUnknownHandlerFailsJob(t *testing.T) {
	assert.Nil(t, models.InitializeTestDb())

	job, err := models.CreateJob("ghost", "missing", "{}", false)
	assert.Nil(t, err)

	w := newWorker("1", testBackoffs)
	w.processJob(job)

	stored, err := models.FindJob(job.ID)
	assert.Nil(t, err)
	assert.Equal(t, 1, stored.Fails)
	assert.Contains(t, stored.LastError, "missing")
	assert.Equal(t, models.ENQUEUED_JOB, stored.JobStatus.Name)
}

func TestPurge(t *testing.T) {
	assert.Nil(t, models.InitializeTestDb())

	job, err := models.CreateJob("old", "noop", "{}", false)
	assert.Nil(t, err)

	successful, err := models.FindJobStatus(models.SUCCESSFUL_JOB)
	assert.Nil(t, err)
	assert.Nil(t, job.Update(map[string]interface{}{"job_status_id": successful.ID, "updated_at": time.Now()}))

	newPurger().purge(time.Now())
	_, err = models.FindJob(job.ID)
	assert.Nil(t, err, "Recent successful jobs are kept")

	newPurger().purge(time.Now().Add(SuccessfulJobMaxAge + time.Hour))
	_, err = models.FindJob(job.ID)
	assert.NotNil(t, err, "Old successful jobs are purged")
}

func TestPeriodicallyPerform(t *testing.T) {
	adapter := NewWorkerAdapter("UTC", Options{})

	assert.Nil(t, adapter.PeriodicallyPerform("0 3 * * *", JobParams{Name: "backup", Handler: "backupSqliteDb"}))
	assert.NotNil(t, adapter.PeriodicallyPerform("nicht cron", JobParams{Name: "broken", Handler: "x"}))

	adapter.RemovePeriodicJob("backup")
	assert.Empty(t, adapter.Scheduler().Jobs())
}
