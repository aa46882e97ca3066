package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/metinatakli/cinex-booking/api"
)

func (app *Application) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				w.Header().Set("Connection", "close")

				app.serverErrorResponse(w, r, fmt.Errorf("%s", err))
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// logRequest stores a request scoped logger in the context and logs the
// outcome of every request.
func (app *Application) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		logger := app.logger.With(
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"uri", r.URL.RequestURI(),
		)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		ctx := context.WithValue(r.Context(), loggerContextKey, logger)

		next.ServeHTTP(ww, r.WithContext(ctx))

		logger.Info("request completed",
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start))
	})
}

func (app *Application) requireAuthentication(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userId := app.sessionManager.GetInt(r.Context(), SessionKeyUserId.String())
		if userId == 0 {
			app.unauthorizedAccessResponse(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), SessionKeyUserId, userId)
		ctx = context.WithValue(ctx, loggerContextKey, app.contextGetLogger(r).With("user_id", userId))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireCookieAuth guards the operations the API document secures with
// cookieAuth. The generated wrappers mark those by setting the scopes value.
func (app *Application) requireCookieAuth(next http.Handler) http.Handler {
	guarded := app.requireAuthentication(next)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := r.Context().Value(api.CookieAuthScopes).([]string); ok {
			guarded.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// validateRequest checks requests against the OpenAPI document. Paths the
// document does not describe are passed through to the router.
func (app *Application) validateRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route, pathParams, err := app.openapi.FindRoute(r)
		if err != nil {
			if errors.Is(err, routers.ErrPathNotFound) || errors.Is(err, routers.ErrMethodNotAllowed) {
				next.ServeHTTP(w, r)
				return
			}

			app.serverErrorResponse(w, r, err)
			return
		}

		input := &openapi3filter.RequestValidationInput{
			Request:    r,
			PathParams: pathParams,
			Route:      route,
			Options: &openapi3filter.Options{
				AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
			},
		}

		err = openapi3filter.ValidateRequest(r.Context(), input)
		if err != nil {
			var reqErr *openapi3filter.RequestError
			if errors.As(err, &reqErr) {
				app.contextGetLogger(r).Warn("request does not match the API contract", "error", err)
				app.badRequestResponse(w, r, errors.New(contractMessage(reqErr)))
				return
			}

			app.serverErrorResponse(w, r, err)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func contractMessage(err *openapi3filter.RequestError) string {
	switch {
	case err.Parameter != nil:
		return fmt.Sprintf("parameter %q is invalid", err.Parameter.Name)
	case err.RequestBody != nil:
		return "request body does not match the API contract"
	default:
		return err.Error()
	}
}
