package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/zivilschutz/zsadmin/server/apperr"
	"github.com/zivilschutz/zsadmin/server/auth"
	"github.com/zivilschutz/zsadmin/server/auth/key"
	"github.com/zivilschutz/zsadmin/server/models"
)

const TOKEN_VALIDITY = 12 * time.Hour

type ResponsePayload struct {
	Errors  []string       `json:"errors"`
	Success bool           `json:"success"`
	Data    interface{}    `json:"data,omitempty"`
	Code    int            `json:"code,omitempty"`
	Paging  *models.Paging `json:"paging,omitempty"`
}

type RequestContextKey string

type DecodedJWT struct {
	Claims *auth.TokenClaims
	Err    error
}

type credentials struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
	Token       string `json:"token"`
}

type meResponse struct {
	User        *models.User `json:"user"`
	Permissions []string     `json:"permissions"`
}

type loginResponse struct {
	Token string `json:"token"`
	meResponse
}

// ---------------------------------------------------------------------------------//
// Auth
// --------------------------------------------------------------------------------//

func register(rw http.ResponseWriter, r *http.Request) {
	data := credentials{}
	err := decodeBody(r, &data)
	if err != nil {
		writeError(rw, err)
		return
	}

	user, err := svc.Auth.Register(data.Email, data.DisplayName, data.Password)
	if err != nil {
		writeError(rw, err)
		return
	}

	writeData(rw, user, http.StatusCreated)
}

func verifyEmail(rw http.ResponseWriter, r *http.Request) {
	_, err := svc.Auth.Verify(r.URL.Query().Get("token"))
	if err != nil {
		writeError(rw, err)
		return
	}

	json.NewEncoder(rw).Encode(ResponsePayload{Success: true})
}

func logIn(rw http.ResponseWriter, r *http.Request) {
	data := credentials{}
	err := decodeBody(r, &data)
	if err != nil {
		writeError(rw, err)
		return
	}

	user, session, err := svc.Auth.Login(data.Email, data.Password)
	if err != nil {
		writeError(rw, err)
		return
	}

	now := time.Now()
	token, err := auth.EncodeJWT(auth.TokenClaims{
		DisplayName: user.DisplayName,
		Email:       user.Email,
		Role:        user.RoleName(),
		StandardClaims: jwt.StandardClaims{
			Id:        session.ID,
			Subject:   fmt.Sprint(user.ID),
			Issuer:    "zsadmin",
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(TOKEN_VALIDITY).Unix(),
		},
	}, authKeyPair)
	if err != nil {
		writeError(rw, err)
		return
	}

	json.NewEncoder(rw).Encode(ResponsePayload{
		Success: true,
		Data: loginResponse{
			Token:      token,
			meResponse: meResponse{User: user, Permissions: auth.Permissions(user.RoleName())},
		},
	})
}

func logOut(rw http.ResponseWriter, r *http.Request) {
	err := svc.Auth.Logout(requestClaims(r).SessionID())
	if err != nil {
		writeError(rw, err)
		return
	}

	json.NewEncoder(rw).Encode(ResponsePayload{Success: true})
}

// startPasswordReset always succeeds, so the endpoint does not reveal registered addresses.
func startPasswordReset(rw http.ResponseWriter, r *http.Request) {
	data := credentials{}
	err := decodeBody(r, &data)
	if err != nil {
		writeError(rw, err)
		return
	}

	err = svc.Auth.StartPasswordReset(data.Email)
	if err != nil {
		logg.Error(err)
	}

	json.NewEncoder(rw).Encode(ResponsePayload{Success: true})
}

func confirmPasswordReset(rw http.ResponseWriter, r *http.Request) {
	data := credentials{}
	err := decodeBody(r, &data)
	if err != nil {
		writeError(rw, err)
		return
	}

	err = svc.Auth.CompletePasswordReset(data.Token, data.Password)
	if err != nil {
		writeError(rw, err)
		return
	}

	json.NewEncoder(rw).Encode(ResponsePayload{Success: true})
}

func jwks(rw http.ResponseWriter, r *http.Request) {
	keyPairJWK, err := authKeyPair.JWK()
	if err != nil {
		writeError(rw, err)
		return
	}

	json.NewEncoder(rw).Encode(key.ExportJWKAsJWKS(keyPairJWK))
}

func health(rw http.ResponseWriter, r *http.Request) {
	json.NewEncoder(rw).Encode(ResponsePayload{Success: true, Data: map[string]string{"status": "ok"}})
}

// ---------------------------------------------------------------------------------//
// Me & users
// --------------------------------------------------------------------------------//

func findMe(rw http.ResponseWriter, r *http.Request) {
	user, err := svc.Users.Get(requestUserID(r))
	if err != nil {
		writeError(rw, err)
		return
	}

	json.NewEncoder(rw).Encode(ResponsePayload{
		Success: true,
		Data:    meResponse{User: user, Permissions: auth.Permissions(user.RoleName())},
	})
}

func updateMe(rw http.ResponseWriter, r *http.Request) {
	data := make(map[string]interface{})
	err := decodeBody(r, &data)
	if err != nil {
		writeError(rw, err)
		return
	}

	removeUnknownFields(data, models.UserColumns)
	user, err := svc.Users.UpdateProfile(requestUserID(r), data, requestClaims(r).SessionID())
	if err != nil {
		writeError(rw, err)
		return
	}

	writeData(rw, user, http.StatusOK)
}

func listUsers(rw http.ResponseWriter, r *http.Request) {
	users, err := svc.Users.List(r.URL.Query().Get("q"))
	if err != nil {
		writeError(rw, err)
		return
	}

	writeData(rw, users, http.StatusOK)
}

func findUser(rw http.ResponseWriter, r *http.Request) {
	id, err := idVar(r, "id", apperr.ErrUserNotFound)
	if err != nil {
		writeError(rw, err)
		return
	}

	user, err := svc.Users.Get(id)
	if err != nil {
		writeError(rw, err)
		return
	}

	writeData(rw, user, http.StatusOK)
}

func setUserRole(rw http.ResponseWriter, r *http.Request) {
	id, err := idVar(r, "id", apperr.ErrUserNotFound)
	if err != nil {
		writeError(rw, err)
		return
	}

	data := struct {
		Role string `json:"role"`
	}{}
	err = decodeBody(r, &data)
	if err != nil {
		writeError(rw, err)
		return
	}

	user, err := svc.Users.SetRole(id, data.Role)
	if err != nil {
		writeError(rw, err)
		return
	}

	writeData(rw, user, http.StatusOK)
}

func deleteUser(rw http.ResponseWriter, r *http.Request) {
	id, err := idVar(r, "id", apperr.ErrUserNotFound)
	if err != nil {
		writeError(rw, err)
		return
	}

	err = svc.Users.Delete(id)
	if err != nil {
		writeError(rw, err)
		return
	}

	json.NewEncoder(rw).Encode(ResponsePayload{Success: true})
}

// ---------------------------------------------------------------------------------//
// Jobs & maintenance
// --------------------------------------------------------------------------------//

func fetchJobs(rw http.ResponseWriter, r *http.Request) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil {
		page = 1
	}

	status := r.URL.Query().Get("status")
	if status != "" && !models.JobStatusNameMap[status] {
		writeError(rw, apperr.Wrap(apperr.ErrValidation, fmt.Errorf("unknown job status %q", status)))
		return
	}

	jobs, paging, err := models.FetchJobs(page, status)
	if err != nil {
		writeError(rw, err)
		return
	}

	json.NewEncoder(rw).Encode(ResponsePayload{Success: true, Data: jobs, Paging: paging})
}

func findJob(rw http.ResponseWriter, r *http.Request) {
	id, err := idVar(r, "id", apperr.ErrJobNotFound)
	if err != nil {
		writeError(rw, err)
		return
	}

	job, err := models.FindJob(id)
	if err != nil {
		writeError(rw, apperr.NotFoundAs(err, apperr.ErrJobNotFound))
		return
	}

	writeData(rw, job, http.StatusOK)
}

func jobsStats(rw http.ResponseWriter, r *http.Request) {
	stats, err := models.CurrentJobsStats()
	if err != nil {
		writeError(rw, err)
		return
	}

	writeData(rw, stats, http.StatusOK)
}

func findOrphans(rw http.ResponseWriter, r *http.Request) {
	orphans, err := svc.Maintenance.Orphans()
	if err != nil {
		writeError(rw, err)
		return
	}

	writeData(rw, orphans, http.StatusOK)
}

func deleteOrphans(rw http.ResponseWriter, r *http.Request) {
	deleted, err := svc.Maintenance.DeleteOrphans(r.Context())
	if err != nil {
		writeError(rw, err)
		return
	}

	writeData(rw, map[string]int64{"deleted": deleted}, http.StatusOK)
}
