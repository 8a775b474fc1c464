package models

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/zivilschutz/zsadmin/server/auth"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func setupTestDb(t *testing.T) {
	auth.BcryptCost = bcrypt.MinCost

	err := InitializeTestDb()
	if err != nil {
		t.Fatalf("could not initialize test db: %v", err)
	}
}

func createTestPerson(t *testing.T, firstName, lastName string) *Person {
	person := &Person{FirstName: firstName, LastName: lastName, Status: ACTIVE_PERSON, Platoon: 1}
	err := Repository[Person]{}.Add(person)
	assert.Nil(t, err, "Should create person %s %s", firstName, lastName)

	return person
}

func createTestTraining(t *testing.T, title, startDate, endDate string) *Training {
	training := &Training{Title: title, Type: WK_TRAINING, Year: 2026, StartDate: startDate, EndDate: endDate, Required: true}
	err := Repository[Training]{}.Add(training)
	assert.Nil(t, err, "Should create training %s", title)

	return training
}

func TestRepository(t *testing.T) {
	setupTestDb(t)
	repo := Repository[Person]{}

	muster := createTestPerson(t, "Anna", "Muster")
	createTestPerson(t, "Beat", "Zaugg")
	createTestPerson(t, "Carla", "Arnold")

	t.Run("All returns every record", func(t *testing.T) {
		persons, err := repo.All()
		assert.Nil(t, err)
		assert.Len(t, persons, 3)
	})

	t.Run("ByID returns the record", func(t *testing.T) {
		person, err := repo.ByID(muster.ID)
		assert.Nil(t, err)
		assert.Equal(t, "Muster", person.LastName)
	})

	t.Run("ByID returns not found for missing records", func(t *testing.T) {
		_, err := repo.ByID(999)
		assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	})

	t.Run("Where matches by equality", func(t *testing.T) {
		persons, err := repo.Where("last_name", "Zaugg")
		assert.Nil(t, err)
		assert.Len(t, persons, 1)
		assert.Equal(t, "Beat", persons[0].FirstName)
	})

	t.Run("AllSorted orders by the given column", func(t *testing.T) {
		persons, err := repo.AllSorted("last_name", false)
		assert.Nil(t, err)
		assert.Equal(t, []string{"Arnold", "Muster", "Zaugg"},
			[]string{persons[0].LastName, persons[1].LastName, persons[2].LastName})

		persons, err = repo.AllSorted("last_name", true)
		assert.Nil(t, err)
		assert.Equal(t, "Zaugg", persons[0].LastName)
	})

	t.Run("Update changes fields and stamps updated_at", func(t *testing.T) {
		before, _ := repo.ByID(muster.ID)

		err := repo.Update(muster.ID, map[string]interface{}{"city": "Bern", "updated_by": "admin@zso.ch"})
		assert.Nil(t, err)

		after, err := repo.ByID(muster.ID)
		assert.Nil(t, err)
		assert.Equal(t, "Bern", after.City)
		assert.Equal(t, "admin@zso.ch", after.UpdatedBy)
		assert.False(t, after.UpdatedAt.Before(before.UpdatedAt))
	})

	t.Run("Update without fields fails", func(t *testing.T) {
		err := repo.Update(muster.ID, map[string]interface{}{})
		assert.Equal(t, ErrNoFields, err)
	})

	t.Run("Update of missing record returns not found", func(t *testing.T) {
		err := repo.Update(999, map[string]interface{}{"city": "Thun"})
		assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	})

	t.Run("Delete removes the record", func(t *testing.T) {
		err := repo.Delete(muster.ID)
		assert.Nil(t, err)

		_, err = repo.ByID(muster.ID)
		assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

		err = repo.Delete(muster.ID)
		assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	})
}

func TestTrainingRoundTrip(t *testing.T) {
	setupTestDb(t)

	training := &Training{
		Title:       "WK Führungsunterstützung",
		Description: "Jährlicher Wiederholungskurs",
		Type:        WK_TRAINING,
		Year:        2026,
		StartDate:   "2026-03-02",
		EndDate:     "2026-03-04",
		StartTime:   "07:30",
		EndTime:     "17:00",
		Required:    true,
	}
	err := Repository[Training]{}.Add(training)
	assert.Nil(t, err)

	stored, err := Repository[Training]{}.ByID(training.ID)
	assert.Nil(t, err)

	stored.CreatedAt, stored.UpdatedAt = training.CreatedAt, training.UpdatedAt
	assert.Equal(t, *training, *stored)
}

func TestDeletingPersonKeepsDependentRecords(t *testing.T) {
	setupTestDb(t)

	person := createTestPerson(t, "Anna", "Muster")
	training := createTestTraining(t, "Übung Nord", "2026-05-10", "2026-05-10")

	_, err := SetAttendanceStatus(&Attendance{PersonID: person.ID, TrainingID: training.ID, Date: "2026-05-10", Status: ATTENDED})
	assert.Nil(t, err)

	err = Repository[EmergencyContact]{}.Add(&EmergencyContact{PersonID: person.ID, Name: "Hans Muster", Relationship: "Vater", PhoneNumber: "+41791234567", Priority: 1})
	assert.Nil(t, err)

	err = Repository[Person]{}.Delete(person.ID)
	assert.Nil(t, err)

	attendances, err := Repository[Attendance]{}.Where("person_id", person.ID)
	assert.Nil(t, err)
	assert.Len(t, attendances, 1, "Attendance should survive deleting the person")

	contacts, err := Repository[EmergencyContact]{}.Where("person_id", person.ID)
	assert.Nil(t, err)
	assert.Len(t, contacts, 1, "Emergency contact should survive deleting the person")

	t.Run("orphans are reported and can be removed", func(t *testing.T) {
		report, err := FindOrphans()
		assert.Nil(t, err)
		assert.Equal(t, 2, report.Total())

		deleted, err := DeleteOrphanRecords()
		assert.Nil(t, err)
		assert.Equal(t, int64(2), deleted)

		report, err = FindOrphans()
		assert.Nil(t, err)
		assert.Equal(t, 0, report.Total())
	})
}

func TestSetAttendanceStatus(t *testing.T) {
	setupTestDb(t)

	person := createTestPerson(t, "Anna", "Muster")
	training := createTestTraining(t, "WK", "2026-03-02", "2026-03-04")

	created, err := SetAttendanceStatus(&Attendance{PersonID: person.ID, TrainingID: training.ID, Date: "2026-03-02", Status: NOT_ATTENDED})
	assert.Nil(t, err)
	assert.True(t, created, "First status for the day should create a record")

	update := &Attendance{PersonID: person.ID, TrainingID: training.ID, Date: "2026-03-02", Status: EXCUSED, Remark: "Krank", Metadata: Metadata{UpdatedBy: "admin@zso.ch"}}
	created, err = SetAttendanceStatus(update)
	assert.Nil(t, err)
	assert.False(t, created, "Second status for the day should update the record")
	assert.Equal(t, EXCUSED, update.Status)
	assert.Equal(t, "Krank", update.Remark)
	assert.NotZero(t, update.ID)

	attendances, err := Repository[Attendance]{}.Where("person_id", person.ID)
	assert.Nil(t, err)
	assert.Len(t, attendances, 1)
	assert.Equal(t, EXCUSED, attendances[0].Status)

	created, err = SetAttendanceStatus(&Attendance{PersonID: person.ID, TrainingID: training.ID, Date: "2026-03-03", Status: ATTENDED})
	assert.Nil(t, err)
	assert.True(t, created, "Another day is another record")

	forYear, err := AttendancesForYear(2026)
	assert.Nil(t, err)
	assert.Len(t, forYear, 2)

	forYear, err = AttendancesForYear(2025)
	assert.Nil(t, err)
	assert.Empty(t, forYear)
}

func TestUsers(t *testing.T) {
	setupTestDb(t)

	admin := &User{Email: "admin@zso.ch", DisplayName: "Admin", Password: "sehrgeheim", EmailVerified: true}
	err := CreateUser(admin, auth.ADMIN_ROLE)
	assert.Nil(t, err)
	assert.True(t, admin.IsAdmin())
	assert.Empty(t, admin.VerificationToken)

	reader := &User{Email: "leser@zso.ch", DisplayName: "Leser", Password: "auchgeheim"}
	err = CreateUser(reader, auth.READ_ROLE)
	assert.Nil(t, err)
	assert.NotEmpty(t, reader.VerificationToken)

	t.Run("passwords are hashed and hidden", func(t *testing.T) {
		withPassword, err := FindUserWithPassword("admin@zso.ch")
		assert.Nil(t, err)
		assert.True(t, auth.CheckPasswordHash("sehrgeheim", withPassword.Password))

		user, err := FindUserBy("email", "admin@zso.ch")
		assert.Nil(t, err)
		assert.Empty(t, user.Password)
		assert.Equal(t, auth.ADMIN_ROLE, user.RoleName())
	})

	t.Run("email verification consumes the token", func(t *testing.T) {
		_, err := VerifyEmail("wrong")
		assert.Equal(t, ErrInvalidToken, err)

		user, err := VerifyEmail(reader.VerificationToken)
		assert.Nil(t, err)
		assert.True(t, user.EmailVerified)

		_, err = VerifyEmail(reader.VerificationToken)
		assert.Equal(t, ErrInvalidToken, err)
	})

	t.Run("password reset", func(t *testing.T) {
		_, token, err := StartPasswordReset("leser@zso.ch")
		assert.Nil(t, err)

		_, err = CompletePasswordReset("wrong", "neuespasswort")
		assert.Equal(t, ErrInvalidToken, err)

		_, err = CompletePasswordReset(token, "neuespasswort")
		assert.Nil(t, err)

		withPassword, err := FindUserWithPassword("leser@zso.ch")
		assert.Nil(t, err)
		assert.True(t, auth.CheckPasswordHash("neuespasswort", withPassword.Password))

		_, err = CompletePasswordReset(token, "nochmal1234")
		assert.Equal(t, ErrInvalidToken, err, "A reset token is single use")
	})

	t.Run("roles", func(t *testing.T) {
		count, err := CountUsersWithRole(auth.ADMIN_ROLE)
		assert.Nil(t, err)
		assert.Equal(t, int64(1), count)

		err = SetUserRole(reader.ID, auth.WRITE_ROLE)
		assert.Nil(t, err)

		writers, err := UsersWithRole(auth.WRITE_ROLE)
		assert.Nil(t, err)
		assert.Len(t, writers, 1)
		assert.Equal(t, "leser@zso.ch", writers[0].Email)
	})
}

func TestRegisterUser(t *testing.T) {
	setupTestDb(t)

	wg := sync.WaitGroup{}
	errs := make(chan error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- RegisterUser(&User{Email: fmt.Sprintf("user%d@zso.ch", i), DisplayName: "User", Password: "sehrgeheim"}, auth.READ_ROLE)
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.Nil(t, err)
	}

	admins, err := UsersWithRole(auth.ADMIN_ROLE)
	assert.Nil(t, err)
	assert.Len(t, admins, 1, "Only the first registration becomes admin")
	assert.True(t, admins[0].EmailVerified)

	readers, err := UsersWithRole(auth.READ_ROLE)
	assert.Nil(t, err)
	assert.Len(t, readers, 3)
	for _, reader := range readers {
		assert.False(t, reader.EmailVerified)
	}
}

func TestSessions(t *testing.T) {
	setupTestDb(t)

	session, err := CreateSession(1)
	assert.Nil(t, err)

	found, err := FindSession(session.ID)
	assert.Nil(t, err)
	assert.Equal(t, uint(1), found.UserID)

	stale, err := CreateSession(2)
	assert.Nil(t, err)
	err = db.Model(&Session{}).Where("id = ?", stale.ID).
		Update("last_seen_at", stale.LastSeenAt.Add(-2*time.Hour)).Error
	assert.Nil(t, err)

	deleted, err := DeleteSessionsIdleSince(session.LastSeenAt.Add(-time.Hour))
	assert.Nil(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = FindSession(stale.ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	other, err := CreateSession(1)
	assert.Nil(t, err)
	assert.Nil(t, DeleteOtherUserSessions(1, session.ID))

	_, err = FindSession(other.ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	_, err = FindSession(session.ID)
	assert.Nil(t, err, "The kept session survives")
}

func TestJobs(t *testing.T) {
	setupTestDb(t)

	first, err := CreateJob("backup", "backupSqliteDb", "{}", true)
	assert.Nil(t, err)

	_, err = CreateJob("backup", "backupSqliteDb", "{}", true)
	assert.Equal(t, ErrDuplicateJob, err)

	_, err = CreateJob("notify", "notifyAdmins", `{"subject":"x"}`, false)
	assert.Nil(t, err)

	next, err := NextEnqueuedJob()
	assert.Nil(t, err)
	assert.Equal(t, first.ID, next.ID, "Oldest job is served first")

	claimed, err := ClaimJob(next.ID)
	assert.Nil(t, err)
	assert.True(t, claimed)

	claimed, err = ClaimJob(next.ID)
	assert.Nil(t, err)
	assert.False(t, claimed, "A job can only be claimed once")

	stats, err := CurrentJobsStats()
	assert.Nil(t, err)
	assert.Equal(t, int64(1), stats.EnqueuedJobCount)
	assert.Equal(t, int64(1), stats.InProgressJobCount)

	jobs, paging, err := FetchJobs(1, IN_PROGRESS_JOB)
	assert.Nil(t, err)
	assert.Len(t, jobs, 1)
	assert.Equal(t, IN_PROGRESS_JOB, jobs[0].JobStatus.Name)
	assert.Equal(t, int64(1), paging.Total)

	_, err = LastJobLastUpdated(10, IN_PROGRESS_JOB)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound), "A fresh job is not stuck")

	_, err = LastJobLastUpdated(0, IN_PROGRESS_JOB)
	assert.Nil(t, err)
}
