package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
)

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()

	if err := WriteJSON(rec, http.StatusCreated, map[string]int{"id": 1}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type = %q", ct)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != `{"id":1}` {
		t.Fatalf("body = %s", body)
	}
}

func TestGeneralError_OmitsFields(t *testing.T) {
	b, err := json.Marshal(GeneralError(errors.New("boom")))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"status":"error","error":"boom"}` {
		t.Fatalf("body = %s", b)
	}
}

func TestValidationError(t *testing.T) {
	type payload struct {
		Title string `json:"title" validate:"required"`
		Genre string `json:"genre" validate:"min=2"`
		Kind  string `json:"kind" validate:"oneof=a b"`
	}

	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	})

	err := v.Struct(payload{Genre: "x", Kind: "c"})
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("err = %v, want ValidationErrors", err)
	}

	got := ValidationError(verrs)

	want := map[string]string{
		"title": "is required",
		"genre": "must be at least 2 characters long",
		"kind":  "is invalid",
	}
	if !reflect.DeepEqual(got.Fields, want) {
		t.Fatalf("fields = %v, want %v", got.Fields, want)
	}
	if got.Status != StatusError {
		t.Fatalf("status = %q", got.Status)
	}
	if !strings.HasPrefix(got.Error, "field title is required, ") {
		t.Fatalf("error = %q", got.Error)
	}
}

func TestValidationError_NumbersAndBlanks(t *testing.T) {
	type payload struct {
		Name *string `json:"name" validate:"omitnil,min=1"`
		Year int     `json:"year" validate:"min=1,max=9"`
		Rank int     `json:"rank" validate:"max=3"`
	}

	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	})

	blank := ""
	err := v.Struct(payload{Name: &blank, Year: 0, Rank: 7})
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("err = %v, want ValidationErrors", err)
	}

	want := map[string]string{
		"name": "may not be blank",
		"year": "must be greater than or equal to 1",
		"rank": "must be less than or equal to 3",
	}
	if got := ValidationError(verrs).Fields; !reflect.DeepEqual(got, want) {
		t.Fatalf("fields = %v, want %v", got, want)
	}
}

func TestServerError_HidesCause(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/movies/", nil)

	ServerError(rec, req, errors.New("db password wrong"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Fatalf("body leaks cause: %s", rec.Body.String())
	}
}
