package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/zivilschutz/zsadmin/colors"
	"github.com/zivilschutz/zsadmin/server/apperr"
	"github.com/zivilschutz/zsadmin/server/auth"
)

type ResponseWriterWithStatus struct {
	http.ResponseWriter
	Status int
}

func (r *ResponseWriterWithStatus) WriteHeader(status int) {
	r.Status = status
	r.ResponseWriter.WriteHeader(status)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		responseWriter := &ResponseWriterWithStatus{
			ResponseWriter: w,
			Status:         200,
		}

		defer func() {
			log.Println(
				r.Method,
				r.RequestURI,
				colors.Status(responseWriter.Status),
				colors.Yellow(fmt.Sprintf("[%v]", time.Since(start))))
		}()

		next.ServeHTTP(responseWriter, r)
	})
}

func initialContextMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		// Add decoded token to request context
		ctx := context.WithValue(r.Context(), RequestContextKey("decodedJWT"), decodeAndVerifyAuthHeader(r.Header.Get("Authorization")))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// protectedRouteMiddleware requires a valid token whose session has not gone idle.
func protectedRouteMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		decodedJWT, _ := r.Context().Value(RequestContextKey("decodedJWT")).(DecodedJWT)
		if decodedJWT.Err != nil {
			writeError(w, decodedJWT.Err)
			return
		}

		if decodedJWT.Claims == nil {
			writeError(w, apperr.New(apperr.ErrTokenMissing))
			return
		}

		err := svc.Auth.CheckSession(decodedJWT.Claims.SessionID(), idleTimeout, time.Now())
		if err != nil {
			writeError(w, err)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// requirePermission refuses callers whose current role lacks permission.
// It runs behind protectedRouteMiddleware.
func requirePermission(permission auth.Permission, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := requestClaims(r)
		if claims == nil || !claims.Can(permission) {
			writeError(w, apperr.New(apperr.ErrForbidden))
			return
		}

		next.ServeHTTP(w, r)
	})
}
