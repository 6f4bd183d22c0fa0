// Package movie contains the HTTP handlers for the Movie resource.
//
// Every exported function is a factory: it receives its dependencies
// (storage) once at route registration and returns the handler that runs
// on every request.
//
//	router.HandlerFunc(http.MethodPost, "/movies/", movie.New(storage))
package movie

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/Krish123-lang/movies-api/internal/storage"
	"github.com/Krish123-lang/movies-api/internal/types"
	"github.com/Krish123-lang/movies-api/internal/utils/response"
	"github.com/go-playground/validator/v10"
	"github.com/julienschmidt/httprouter"
)

const maxBodyBytes = 1 << 20

// Query values accepted by ?view= on list and retrieve.
const (
	ViewFull = "full"
	ViewMini = "mini"
)

// validate is shared by all handlers; a *validator.Validate is safe for
// concurrent use and caches struct metadata.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report JSON names ("title") instead of Go names ("Title").
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		patch := sl.Current().Interface().(types.MoviePatch)
		for _, name := range patch.NullFields() {
			sl.ReportError(nil, name, name, "notnull", "")
		}
	}, types.MoviePatch{})
	return v
}

// normalizer is implemented by payloads that clean themselves up between
// decoding and validation.
type normalizer interface {
	Normalize()
}

// New handles POST /movies/
//
// Request body:
//
//	{ "title": "Up", "description": "Balloon house", "year": 2009 }
//
// 201 Created with the stored movie, or 400 for an empty/malformed body
// or failed validation.
func New(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a movie")

		var input types.MovieInput
		if !decodeAndValidate(w, r, &input) {
			return
		}

		movie, err := storage.CreateMovie(r.Context(), input.Movie(0))
		if err != nil {
			response.ServerError(w, r, err)
			return
		}

		slog.Info("movie created", slog.Int64("id", movie.ID))

		w.Header().Set("Location", fmt.Sprintf("/movies/%d/", movie.ID))
		response.WriteJSON(w, http.StatusCreated, movie)
	}
}

// GetByID handles GET /movies/{id}/
// 200 with the movie (full, or minimal with ?view=mini), 404 if missing.
func GetByID(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := readID(w, r)
		if !ok {
			return
		}
		slog.Info("getting a movie", slog.Int64("id", id))

		view, ok := readView(w, r)
		if !ok {
			return
		}

		movie, err := storage.GetMovieByID(r.Context(), id)
		if err != nil {
			storageError(w, r, err)
			return
		}

		if view == ViewMini {
			response.WriteJSON(w, http.StatusOK, movie.Mini())
			return
		}
		response.WriteJSON(w, http.StatusOK, movie)
	}
}

// GetList handles GET /movies/
// Returns a JSON array of all movies ordered by year, newest first.
// Returns [] (not null) when there are none.
func GetList(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("getting all movies")

		view, ok := readView(w, r)
		if !ok {
			return
		}

		movies, err := storage.GetMovies(r.Context())
		if err != nil {
			response.ServerError(w, r, err)
			return
		}

		if view == ViewMini {
			response.WriteJSON(w, http.StatusOK, types.Minis(movies))
			return
		}
		response.WriteJSON(w, http.StatusOK, movies)
	}
}

// Update handles PUT /movies/{id}/
// Replaces every field of an existing movie; title and year are required
// exactly as for creation. 200 with the stored movie, 400, or 404.
func Update(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := readID(w, r)
		if !ok {
			return
		}
		slog.Info("updating a movie", slog.Int64("id", id))

		var input types.MovieInput
		if !decodeAndValidate(w, r, &input) {
			return
		}

		updated, err := storage.UpdateMovieByID(r.Context(), id, input.Movie(id))
		if err != nil {
			storageError(w, r, err)
			return
		}

		slog.Info("movie updated", slog.Int64("id", id))
		response.WriteJSON(w, http.StatusOK, updated)
	}
}

// PartialUpdate handles PATCH /movies/{id}/
// Only the fields present in the body change:
//
//	{ "year": 2010 }
func PartialUpdate(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := readID(w, r)
		if !ok {
			return
		}
		slog.Info("partially updating a movie", slog.Int64("id", id))

		var patch types.MoviePatch
		if !decodeAndValidate(w, r, &patch) {
			return
		}

		current, err := storage.GetMovieByID(r.Context(), id)
		if err != nil {
			storageError(w, r, err)
			return
		}

		updated, err := storage.UpdateMovieByID(r.Context(), id, patch.Apply(current))
		if err != nil {
			storageError(w, r, err)
			return
		}

		slog.Info("movie updated", slog.Int64("id", id))
		response.WriteJSON(w, http.StatusOK, updated)
	}
}

// Delete handles DELETE /movies/{id}/
// 204 No Content with an empty body, or 404.
func Delete(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := readID(w, r)
		if !ok {
			return
		}
		slog.Info("deleting a movie", slog.Int64("id", id))

		if err := storage.DeleteMovieByID(r.Context(), id); err != nil {
			storageError(w, r, err)
			return
		}

		slog.Info("movie deleted", slog.Int64("id", id))
		w.WriteHeader(http.StatusNoContent)
	}
}

// readID parses the {id} route parameter. Anything that is not a positive
// integer cannot name a movie, so it is answered with 404.
func readID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := httprouter.ParamsFromContext(r.Context()).ByName("id")

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		response.NotFound(w, "movie not found")
		return 0, false
	}
	return id, true
}

func readView(w http.ResponseWriter, r *http.Request) (string, bool) {
	switch view := r.URL.Query().Get("view"); view {
	case "", ViewFull:
		return ViewFull, true
	case ViewMini:
		return ViewMini, true
	default:
		response.WriteJSON(w, http.StatusBadRequest, response.Response{
			Status: response.StatusError,
			Error:  fmt.Sprintf("unknown view %q: use %q or %q", view, ViewFull, ViewMini),
			Fields: map[string]string{"view": "is invalid"},
		})
		return "", false
	}
}

// decodeAndValidate reads a single JSON object from the body into dst and
// runs its validate tags. On failure it writes the 400 and returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := decodeBody(w, r, dst); err != nil {
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
		return false
	}

	if n, ok := dst.(normalizer); ok {
		n.Normalize()
	}

	if err := validate.Struct(dst); err != nil {
		var validateErrs validator.ValidationErrors
		if errors.As(err, &validateErrs) {
			response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(validateErrs))
			return false
		}
		response.ServerError(w, r, err)
		return false
	}

	return true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var typeError *json.UnmarshalTypeError
		var maxBytesError *http.MaxBytesError

		switch {
		case errors.Is(err, io.EOF):
			return errors.New("request body is empty")
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &typeError):
			if typeError.Field != "" {
				return fmt.Errorf("field %s has the wrong type", typeError.Field)
			}
			return errors.New("body must be a JSON object")
		case errors.As(err, &maxBytesError):
			return fmt.Errorf("body must not be larger than %d bytes", maxBytesError.Limit)
		default:
			return err
		}
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

// storageError maps storage.ErrNotFound to 404 and everything else to 500.
func storageError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		response.NotFound(w, "movie not found")
		return
	}
	response.ServerError(w, r, err)
}
