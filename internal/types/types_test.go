package types

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestMovie_Mini(t *testing.T) {
	m := Movie{ID: 7, Title: "Up", Description: "Balloon house", Year: 2009}

	got, err := json.Marshal(m.Mini())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if want := `{"id":7,"title":"Up"}`; string(got) != want {
		t.Fatalf("mini = %s, want %s", got, want)
	}
}

func TestMinis_EmptyIsNotNull(t *testing.T) {
	got, err := json.Marshal(Minis(nil))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(got) != "[]" {
		t.Fatalf("Minis(nil) = %s, want []", got)
	}
}

func TestMovieInput_Movie(t *testing.T) {
	var in MovieInput
	if err := json.Unmarshal([]byte(`{"title":"Heat","year":0}`), &in); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if in.Year == nil {
		t.Fatal("explicit year 0 must decode to a non-nil pointer")
	}

	m := in.Movie(3)
	if m != (Movie{ID: 3, Title: "Heat", Year: 0}) {
		t.Fatalf("movie = %+v", m)
	}
}

func TestMoviePatch_Apply(t *testing.T) {
	orig := Movie{ID: 1, Title: "Up", Description: "Balloon house", Year: 2009}

	tests := []struct {
		name  string
		patch string
		want  Movie
	}{
		{"empty", `{}`, orig},
		{"year only", `{"year":2010}`, Movie{ID: 1, Title: "Up", Description: "Balloon house", Year: 2010}},
		{"clear description", `{"description":""}`, Movie{ID: 1, Title: "Up", Year: 2009}},
		{"title", `{"title":"Up!"}`, Movie{ID: 1, Title: "Up!", Description: "Balloon house", Year: 2009}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p MoviePatch
			if err := json.Unmarshal([]byte(tt.patch), &p); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got := p.Apply(orig); got != tt.want {
				t.Fatalf("Apply = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestMoviePatch_NullFields(t *testing.T) {
	tests := []struct {
		name  string
		patch string
		want  []string
	}{
		{"absent", `{"description":"x"}`, nil},
		{"null title", `{"title":null}`, []string{"title"}},
		{"null year any case", `{"Year":null}`, []string{"year"}},
		{"null description is allowed", `{"description":null}`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p MoviePatch
			if err := json.Unmarshal([]byte(tt.patch), &p); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			got := p.NullFields()
			if len(got) != len(tt.want) || (len(got) > 0 && got[0] != tt.want[0]) {
				t.Fatalf("NullFields = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMoviePatch_WrongType(t *testing.T) {
	var p MoviePatch
	err := json.Unmarshal([]byte(`{"year":"2009"}`), &p)

	var typeErr *json.UnmarshalTypeError
	if !errors.As(err, &typeErr) || typeErr.Field != "year" {
		t.Fatalf("err = %v, want type error on year", err)
	}
}

func TestNormalize(t *testing.T) {
	in := MovieInput{Title: "  Up \t"}
	in.Normalize()
	if in.Title != "Up" {
		t.Fatalf("MovieInput title = %q", in.Title)
	}

	title := "\n  "
	p := MoviePatch{Title: &title}
	p.Normalize()
	if *p.Title != "" {
		t.Fatalf("MoviePatch title = %q", *p.Title)
	}

	var empty MoviePatch
	empty.Normalize()
	if empty.Title != nil {
		t.Fatal("Normalize must not invent a title")
	}
}
