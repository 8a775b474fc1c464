package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/zivilschutz/zsadmin/googleservice"
	"github.com/zivilschutz/zsadmin/server/apperr"
	"github.com/zivilschutz/zsadmin/server/auth"
	"github.com/zivilschutz/zsadmin/server/auth/key"
	"github.com/zivilschutz/zsadmin/server/gstorage"
	"github.com/zivilschutz/zsadmin/server/logger"
	"github.com/zivilschutz/zsadmin/server/mailer"
	"github.com/zivilschutz/zsadmin/server/models"
	"github.com/zivilschutz/zsadmin/server/reminder"
	"github.com/zivilschutz/zsadmin/server/services"
	"github.com/zivilschutz/zsadmin/server/twilio"
	"github.com/zivilschutz/zsadmin/server/work"
	"github.com/zivilschutz/zsadmin/shared"
	"github.com/zivilschutz/zsadmin/utils"
)

var (
	logg        = logger.NewLogger()
	svc         *services.Services
	authKeyPair *key.KeyPair
	idleTimeout = 30 * time.Minute
)

func Start(config *shared.ServerConfig, devMode bool) {
	var err error
	configDir := dataDirectory(config.Database, devMode)
	idleTimeout = time.Duration(config.App.IdleTimeoutMinutes()) * time.Minute

	authKeyPair, err = loadKeyPair(config.App.PrivateKeyPem, devMode)
	fatalOnError(err)

	jobs := &jobHandlers{idleTimeout: idleTimeout, mailer: mailer.LogMailer{}}
	var blobs gstorage.BlobStore

	if config.Google.Storage.Bucket != "" {
		jobs.storage, err = gstorage.NewGStorage(
			config.Google.ApplicationCredentials,
			config.Google.Storage.Bucket,
			config.Google.Storage.Prefix)
		fatalOnError(err)
		blobs = jobs.storage
	} else {
		logg.Warn("google.storage.bucket is not set, file uploads are disabled")
	}

	if config.Database.MysqlDSN == "" {
		jobs.dbFilePath, err = models.DbFilePath(configDir)
		fatalOnError(err)

		if jobs.storage != nil && config.Google.Storage.Enabled() {
			restoreSqliteDb(jobs.storage, jobs.dbFilePath)
		}
	}

	if !config.Google.Storage.Enabled() {
		jobs.storage = nil
	}

	err = models.AutoMigrate(config.Database, configDir)
	fatalOnError(err)

	if config.Resend.ApiKey != "" {
		jobs.mailer = mailer.NewResendMailer(config.Resend.ApiKey, config.Resend.From)
	} else {
		logg.Warn("resend.apiKey is not set, e-mails are only logged")
	}

	var sender twilio.MessageSender
	if config.Twilio.Enabled() {
		sender = twilio.NewClient(config.Twilio)
		jobs.sms = sender
		jobs.adminNumber = config.Twilio.AdminNumber
	} else {
		logg.Warn("twilio is not configured, SMS notifications are disabled")
	}

	if config.Google.Calendar.CalendarID != "" {
		jobs.calendar, err = googleservice.NewGoogleCalendarAPI(
			context.Background(),
			config.Google.ApplicationCredentials,
			config.Google.Calendar.CalendarID,
			config.App.Cron.TimeZone)
		fatalOnError(err)
	} else {
		logg.Warn("google.calendar.calendarId is not set, trainings are not synced to a calendar")
	}

	workerPool := work.NewWorkerAdapter(config.App.Cron.TimeZone, work.Options{Concurrency: config.App.Workers})
	svc = services.New(services.Deps{
		Validate: shared.NewValidator(),
		Jobs:     workerPool,
		Blobs:    blobs,
		BaseURL:  config.App.BaseURL,
	})

	fatalOnError(registerJobHandlers(workerPool, jobs))
	fatalOnError(enqueueJobs(workerPool, jobs, config.Google.Storage.SqliteBackupSchedule))

	if sender != nil {
		_, err = reminder.NewReminderScheduler(workerPool, sender, config.App.ReminderCron, config.App.Cron.TimeZone)
		fatalOnError(err)
	}

	fatalOnError(workerPool.Start())

	server := &http.Server{
		Addr:         fmt.Sprintf(":%v", config.App.Listener.Port),
		Handler:      newRouter(config.App.StaticDir),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go serve(server)

	// Wait for an interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	cleanup(workerPool, server, jobs)
}

// OpenDatabase opens and migrates the configured database, for command line use.
func OpenDatabase(config *shared.ServerConfig, devMode bool) error {
	return models.AutoMigrate(config.Database, dataDirectory(config.Database, devMode))
}

func newRouter(staticDir string) *mux.Router {
	router := mux.NewRouter()
	router.Use(loggingMiddleware, initialContextMiddleware)

	router.HandleFunc("/health", health).Methods("GET")
	router.HandleFunc("/.well-known/jwks.json", jwks).Methods("GET")

	v1 := router.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/auth/register", register).Methods("POST")
	v1.HandleFunc("/auth/verify", verifyEmail).Methods("GET")
	v1.HandleFunc("/auth/login", logIn).Methods("POST")
	v1.HandleFunc("/auth/password-reset", startPasswordReset).Methods("POST")
	v1.HandleFunc("/auth/password-reset/confirm", confirmPasswordReset).Methods("POST")

	protected := v1.NewRoute().Subrouter()
	protected.Use(protectedRouteMiddleware)
	protected.HandleFunc("/auth/logout", logOut).Methods("POST")
	protected.HandleFunc("/me", findMe).Methods("GET")
	protected.HandleFunc("/me", updateMe).Methods("PUT")

	routes := []struct {
		method     string
		path       string
		permission auth.Permission
		handler    http.HandlerFunc
	}{
		{"GET", "/persons", auth.READ_RECORDS, listPersons},
		{"POST", "/persons", auth.WRITE_RECORDS, createPerson},
		{"GET", "/persons/{id}", auth.READ_RECORDS, findPerson},
		{"PUT", "/persons/{id}", auth.WRITE_RECORDS, updatePerson},
		{"DELETE", "/persons/{id}", auth.WRITE_RECORDS, deletePerson},
		{"GET", "/persons/{id}/summary", auth.READ_RECORDS, personSummary},
		{"GET", "/persons/{id}/attendances", auth.READ_RECORDS, personAttendances},
		{"GET", "/persons/{id}/contacts", auth.READ_RECORDS, personContacts},
		{"POST", "/persons/{id}/contacts", auth.WRITE_RECORDS, createContact},
		{"GET", "/persons/{id}/files", auth.READ_RECORDS, personFiles},
		{"POST", "/persons/{id}/files", auth.UPLOAD_FILES, uploadFile},

		{"GET", "/trainings", auth.READ_RECORDS, listTrainings},
		{"POST", "/trainings", auth.WRITE_RECORDS, createTraining},
		{"GET", "/trainings/{id}", auth.READ_RECORDS, findTraining},
		{"PUT", "/trainings/{id}", auth.WRITE_RECORDS, updateTraining},
		{"DELETE", "/trainings/{id}", auth.WRITE_RECORDS, deleteTraining},
		{"GET", "/trainings/{id}/attendances", auth.READ_RECORDS, trainingAttendances},
		{"PUT", "/trainings/{id}/attendances", auth.WRITE_RECORDS, bulkSetAttendance},

		{"PUT", "/attendances", auth.WRITE_RECORDS, setAttendance},
		{"GET", "/attendances/matrix", auth.READ_RECORDS, attendanceMatrix},
		{"DELETE", "/attendances/{id}", auth.WRITE_RECORDS, deleteAttendance},

		{"GET", "/contacts/{id}", auth.READ_RECORDS, findContact},
		{"PUT", "/contacts/{id}", auth.WRITE_RECORDS, updateContact},
		{"DELETE", "/contacts/{id}", auth.WRITE_RECORDS, deleteContact},

		{"GET", "/files/{id}", auth.READ_RECORDS, downloadFile},
		{"DELETE", "/files/{id}", auth.UPLOAD_FILES, deleteFile},

		{"GET", "/reports/attendance.pdf", auth.VIEW_REPORTS, attendanceReport},
		{"GET", "/reports/personnel.pdf", auth.VIEW_REPORTS, personnelReport},
		{"GET", "/reports/personnel.xlsx", auth.VIEW_REPORTS, personnelExport},
		{"GET", "/reports/persons/{id:[0-9]+}.pdf", auth.VIEW_REPORTS, personSheetReport},

		{"GET", "/users", auth.MANAGE_USERS, listUsers},
		{"GET", "/users/{id}", auth.MANAGE_USERS, findUser},
		{"PUT", "/users/{id}/role", auth.MANAGE_USERS, setUserRole},
		{"DELETE", "/users/{id}", auth.MANAGE_USERS, deleteUser},

		{"GET", "/jobs", auth.MANAGE_SYSTEM, fetchJobs},
		{"GET", "/jobs/stats", auth.MANAGE_SYSTEM, jobsStats},
		{"GET", "/jobs/{id}", auth.MANAGE_SYSTEM, findJob},
		{"GET", "/maintenance/orphans", auth.MANAGE_SYSTEM, findOrphans},
		{"DELETE", "/maintenance/orphans", auth.MANAGE_SYSTEM, deleteOrphans},
	}

	for _, route := range routes {
		protected.Handle(route.path, requirePermission(route.permission, route.handler)).Methods(route.method)
	}

	if staticDir != "" {
		router.PathPrefix("/").Handler(spaHandler(staticDir))
	}

	return router
}

// spaHandler serves the built front end and falls back to index.html for client-side routes.
func spaHandler(staticDir string) http.Handler {
	fileServer := http.FileServer(http.Dir(staticDir))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/v1/") {
			writeError(w, apperr.New(apperr.ErrNotFound))
			return
		}
		w.Header().Del("Content-Type")

		path := filepath.Join(staticDir, filepath.Clean("/"+r.URL.Path))
		if r.URL.Path == "/" || !utils.FileExist(path) {
			http.ServeFile(w, r, filepath.Join(staticDir, "index.html"))
			return
		}

		fileServer.ServeHTTP(w, r)
	})
}

// loadKeyPair parses the configured signing key. Dev mode falls back to a throwaway key,
// which signs every user out on restart.
func loadKeyPair(privateKeyPem string, devMode bool) (*key.KeyPair, error) {
	if privateKeyPem != "" {
		return key.NewKeyPairFromRSAPrivateKeyPem(privateKeyPem)
	}

	if !devMode {
		return nil, fmt.Errorf("app.privateKeyPem is required, set it in the config or ZSADMIN_PRIVATE_KEY_PEM")
	}

	logg.Warn("app.privateKeyPem is not set, using a generated key")
	return key.GenerateKeyPair()
}

// restoreSqliteDb pulls the last backup when there is no local database yet.
func restoreSqliteDb(storage *gstorage.GStorage, dbFilePath string) {
	if utils.FileExist(dbFilePath) {
		return
	}

	err := storage.DownloadFile(filepath.Base(dbFilePath), dbFilePath)
	if err != nil {
		logg.Warnf("No sqlite backup restored: %v", err)
	}
}
