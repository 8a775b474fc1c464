package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/zivilschutz/zsadmin/server/apperr"
	"github.com/zivilschutz/zsadmin/server/auth"
	"github.com/zivilschutz/zsadmin/server/models"
	"github.com/zivilschutz/zsadmin/server/services"
	"github.com/zivilschutz/zsadmin/server/work"
	"github.com/zivilschutz/zsadmin/shared"
	"github.com/zivilschutz/zsadmin/utils"
)

// ---------------------------------------------------------------------------------//
// Handler Helper functions
// --------------------------------------------------------------------------------//

func writeResponse(rw http.ResponseWriter, payLoad ResponsePayload, statusCode int) {
	if statusCode >= http.StatusInternalServerError {
		logg.Error(payLoad.Errors)
	} else if statusCode >= http.StatusBadRequest {
		logg.Info(payLoad.Errors)
	}

	rw.WriteHeader(statusCode)
	json.NewEncoder(rw).Encode(payLoad)
}

// writeError answers with the localized message of err's code. Validation failures
// also list the failing fields.
func writeError(rw http.ResponseWriter, err error) {
	appErr := apperr.From(err)
	if appErr.Code == apperr.ErrUnknown {
		logg.Error(err)
	}

	errs := append([]string{appErr.Code.Message()}, services.ValidationDetails(err)...)
	writeResponse(rw, ResponsePayload{Errors: errs, Code: int(appErr.Code)}, appErr.Code.Status())
}

func writeData(rw http.ResponseWriter, data interface{}, statusCode int) {
	writeResponse(rw, ResponsePayload{Success: true, Data: data}, statusCode)
}

// writeDocument renders a document into memory first, so a failure can still be
// reported as JSON.
func writeDocument(rw http.ResponseWriter, contentType, fileName string, render func(w io.Writer) error) {
	buf := &bytes.Buffer{}
	err := render(buf)
	if err != nil {
		writeError(rw, err)
		return
	}

	rw.Header().Set("Content-Type", contentType)
	rw.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	rw.WriteHeader(http.StatusOK)
	rw.Write(buf.Bytes())
}

func decodeBody(r *http.Request, v interface{}) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err != nil {
		return apperr.Wrap(apperr.ErrBind, err)
	}
	return nil
}

func removeUnknownFields(args map[string]interface{}, validFields map[string]string) {
	for key := range args {
		if _, ok := validFields[key]; !ok {
			delete(args, key)
		}
	}
}

// idVar parses a numeric path variable. Anything unparsable cannot name a record.
func idVar(r *http.Request, name string, notFound apperr.Code) (uint, error) {
	id, err := strconv.ParseUint(mux.Vars(r)[name], 10, 64)
	if err != nil {
		return 0, apperr.Wrap(notFound, err)
	}
	return uint(id), nil
}

func intQuery(r *http.Request, name string) (*int, error) {
	value := strings.TrimSpace(r.URL.Query().Get(name))
	if value == "" {
		return nil, nil
	}

	number, err := strconv.Atoi(value)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrValidation, fmt.Errorf("%s must be a number", name))
	}
	return &number, nil
}

// yearQuery defaults to the current year.
func yearQuery(r *http.Request) (int, error) {
	year, err := intQuery(r, "year")
	if err != nil {
		return 0, err
	}

	if year == nil {
		return time.Now().Year(), nil
	}
	return *year, nil
}

func personFilter(r *http.Request) (services.PersonFilter, error) {
	platoon, err := intQuery(r, "platoon")
	if err != nil {
		return services.PersonFilter{}, err
	}

	return services.PersonFilter{
		Query:   r.URL.Query().Get("q"),
		Status:  r.URL.Query().Get("status"),
		Platoon: platoon,
	}, nil
}

func requestClaims(r *http.Request) *auth.TokenClaims {
	decodedJWT, ok := r.Context().Value(RequestContextKey("decodedJWT")).(DecodedJWT)
	if !ok {
		return nil
	}
	return decodedJWT.Claims
}

// editor is recorded as updated_by on every write.
func editor(r *http.Request) string {
	claims := requestClaims(r)
	if claims == nil {
		return ""
	}
	return claims.Email
}

func requestUserID(r *http.Request) uint {
	claims := requestClaims(r)
	if claims == nil {
		return 0
	}

	id, _ := strconv.ParseUint(claims.Subject, 10, 64)
	return uint(id)
}

// ---------------------------------------------------------------------------------//
// Middleware Helper functions
// --------------------------------------------------------------------------------//

// decodeAndVerifyAuthHeader checks the bearer token and reloads the user, so role changes
// and deleted accounts take effect on the next request.
func decodeAndVerifyAuthHeader(authHeaderValue string) DecodedJWT {
	authHeaderList := strings.Split(authHeaderValue, "Bearer ")
	if len(authHeaderList) < 2 {
		return DecodedJWT{Err: apperr.New(apperr.ErrTokenMissing)}
	}

	tokenClaims, err := auth.DecodeJWT(authHeaderList[1], authKeyPair)
	if err != nil {
		return DecodedJWT{Err: apperr.Wrap(apperr.ErrTokenInvalid, err)}
	}

	// validate that the user account still exists
	user, err := models.FindUserBy("id", tokenClaims.Subject)
	if err != nil {
		return DecodedJWT{Err: apperr.Wrap(apperr.ErrTokenInvalid, err)}
	}
	tokenClaims.Role = user.RoleName()

	return DecodedJWT{Claims: tokenClaims}
}

// ---------------------------------------------------------------------------------//
// Server Helper functions
// --------------------------------------------------------------------------------//

func serve(server *http.Server) {
	logg.Infof("zsadmin server is listening on port:%v", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logg.Fatal(err)
	}
}

func cleanup(workerPool *work.WorkerPoolAdapter, server *http.Server, jobs *jobHandlers) {
	// Stop all jobs i.e. reminders & regular server jobs
	workerPool.Stop()

	if jobs.storage != nil {
		err := jobs.backupSqliteDb(nil)
		if err != nil {
			logg.Error(err)
		}
	}

	// Shutdown server gracefully
	ctxShutDown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctxShutDown); err != nil {
		logg.Fatalf("zsadmin server shutdown failed:%+s", err)
	}

	logg.Infof("zsadmin server stopped properly")
}

// configDirectory retrieves the directory to store zsadmin data
// Or logs an error message and then calls os.Exit if it's unable to.
func configDirectory(devMode bool) string {
	// Use 'zsadmin' folder in home directory for prod
	configFolderName := "zsadmin"
	rootDir, err := os.UserHomeDir()
	fatalOnError(err)

	// Use 'dev' folder in current directory for dev mode
	if devMode {
		configFolderName = "dev"
		rootDir, err = os.Getwd()
		fatalOnError(err)
	}

	configDir := filepath.Join(rootDir, configFolderName)

	err = utils.CreateDirIfNotExist(configDir)
	fatalOnError(err)

	return configDir
}

// dataDirectory is database.sqlite.dir when set, otherwise the config directory.
func dataDirectory(config shared.DatabaseConfig, devMode bool) string {
	if config.Sqlite.Dir == "" {
		return configDirectory(devMode)
	}

	err := utils.CreateDirIfNotExist(config.Sqlite.Dir)
	fatalOnError(err)

	return config.Sqlite.Dir
}

func fatalOnError(err error) {
	if err != nil {
		logg.Fatal(err)
	}
}
