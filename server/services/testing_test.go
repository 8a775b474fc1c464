package services

import (
	"sync"
	"testing"

	"github.com/zivilschutz/zsadmin/server/auth"
	"github.com/zivilschutz/zsadmin/server/gstorage"
	"github.com/zivilschutz/zsadmin/server/models"
	"github.com/zivilschutz/zsadmin/server/work"
	"github.com/zivilschutz/zsadmin/shared"
	"golang.org/x/crypto/bcrypt"
)

type jobRecorder struct {
	mu   sync.Mutex
	jobs []work.JobParams
	err  error
}

func (r *jobRecorder) Perform(job work.JobParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.jobs = append(r.jobs, job)
	return nil
}

func (r *jobRecorder) handlers() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := []string{}
	for _, job := range r.jobs {
		names = append(names, job.Handler)
	}
	return names
}

func (r *jobRecorder) last(handler string) *work.JobParams {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.jobs) - 1; i >= 0; i-- {
		if r.jobs[i].Handler == handler {
			return &r.jobs[i]
		}
	}
	return nil
}

func setupServices(t *testing.T, blobs gstorage.BlobStore) (*Services, *jobRecorder) {
	auth.BcryptCost = bcrypt.MinCost

	err := models.InitializeTestDb()
	if err != nil {
		t.Fatalf("could not initialize test db: %v", err)
	}

	jobs := &jobRecorder{}
	deps := Deps{Validate: shared.NewValidator(), Jobs: jobs, BaseURL: "https://zs.example.ch/"}
	if blobs != nil {
		deps.Blobs = blobs
	}

	return New(deps), jobs
}

func addPerson(t *testing.T, s *Services, first, last string, platoon int) *models.Person {
	person := &models.Person{FirstName: first, LastName: last, Platoon: platoon, Status: models.ACTIVE_PERSON}
	err := s.Persons.Create(person, "test")
	if err != nil {
		t.Fatalf("could not create person %s %s: %v", first, last, err)
	}
	return person
}

func addTraining(t *testing.T, s *Services, title, start, end string) *models.Training {
	training := &models.Training{Title: title, Type: models.WK_TRAINING, StartDate: start, EndDate: end, Required: true}
	err := s.Trainings.Create(training, "test")
	if err != nil {
		t.Fatalf("could not create training %s: %v", title, err)
	}
	return training
}
