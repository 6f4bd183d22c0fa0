// Package routes builds the application's HTTP handler: the route table
// plus the middleware chain around it.
//
// Route table:
//
//	GET    /healthcheck    → service status
//	GET    /debug/vars     → expvar metrics
//	GET    /movies/        → list all movies
//	POST   /movies/        → create a movie
//	GET    /movies/:id/    → get one movie
//	PUT    /movies/:id/    → replace a movie
//	PATCH  /movies/:id/    → partially update a movie
//	DELETE /movies/:id/    → delete a movie
//
// The slash-less forms (/movies, /movies/1) are redirected to the
// canonical paths by the router.
package routes

import (
	"expvar"
	"log/slog"
	"net/http"

	"github.com/Krish123-lang/movies-api/internal/config"
	"github.com/Krish123-lang/movies-api/internal/http/handlers/movie"
	"github.com/Krish123-lang/movies-api/internal/http/middleware"
	"github.com/Krish123-lang/movies-api/internal/storage"
	"github.com/Krish123-lang/movies-api/internal/utils/response"
	"github.com/julienschmidt/httprouter"
)

// Version is reported by /healthcheck.
const Version = "1.0.0"

// New returns the fully wrapped handler. limiter may be shared with a
// background Prune loop owned by the caller.
func New(cfg *config.Config, log *slog.Logger, storage storage.Storage, limiter *middleware.RateLimiter) http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "the requested resource could not be found")
	})
	router.MethodNotAllowed = http.HandlerFunc(response.MethodNotAllowed)

	router.HandlerFunc(http.MethodGet, "/healthcheck", healthcheck(cfg.Env))
	router.Handler(http.MethodGet, "/debug/vars", expvar.Handler())

	router.HandlerFunc(http.MethodGet, "/movies/", movie.GetList(storage))
	router.HandlerFunc(http.MethodPost, "/movies/", movie.New(storage))
	router.HandlerFunc(http.MethodGet, "/movies/:id/", movie.GetByID(storage))
	router.HandlerFunc(http.MethodPut, "/movies/:id/", movie.Update(storage))
	router.HandlerFunc(http.MethodPatch, "/movies/:id/", movie.PartialUpdate(storage))
	router.HandlerFunc(http.MethodDelete, "/movies/:id/", movie.Delete(storage))

	// Outermost first: metrics and logging see every response, including
	// the ones produced by recovery, CORS preflight and the rate limiter.
	return middleware.Metrics(
		middleware.LogRequests(log,
			middleware.RecoverPanic(
				middleware.CORS(cfg.CORS,
					limiter.Limit(router)))))
}

func healthcheck(env string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.WriteJSON(w, http.StatusOK, map[string]string{
			"status":      "available",
			"environment": env,
			"version":     Version,
		})
	}
}
