// Package types holds the shared data structures used across the
// application. Keeping them in one place prevents import cycles:
// handlers, storage, and utils can all import types without depending
// on each other.
//
// A Movie has two JSON representations (projections):
//
//	full:    { "id": 1, "title": "Up", "description": "Balloon house", "year": 2009 }
//	minimal: { "id": 1, "title": "Up" }
package types

import (
	"encoding/json"
	"strings"
)

// Bounds of a stored year: a 32-bit integer column in every backend.
const (
	MinYear = -2147483648
	MaxYear = 2147483647
)

// Movie is a stored movie record and its full JSON representation.
type Movie struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Year        int    `json:"year"`
}

// MovieMini is the minimal representation of a Movie.
type MovieMini struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// Mini returns the minimal projection of m.
func (m Movie) Mini() MovieMini {
	return MovieMini{ID: m.ID, Title: m.Title}
}

// Minis projects every movie in movies. The result is never nil, so an
// empty list encodes to [] rather than null.
func Minis(movies []Movie) []MovieMini {
	out := make([]MovieMini, 0, len(movies))
	for _, m := range movies {
		out = append(out, m.Mini())
	}
	return out
}

// MovieInput is the request body for create (POST) and full update (PUT).
//
// Year is a pointer so that an explicit 0 can be told apart from a missing
// field: validate:"required" on a pointer only checks that it is non-nil.
type MovieInput struct {
	Title       string `json:"title"       validate:"required"`
	Description string `json:"description"`
	Year        *int   `json:"year"        validate:"required,min=-2147483648,max=2147483647"`
}

// Normalize trims surrounding whitespace from the title, so a blank title
// fails the required check and is never stored padded.
func (in *MovieInput) Normalize() {
	in.Title = strings.TrimSpace(in.Title)
}

// Movie converts the payload into a record with the given id.
// Call it only after the payload passed validation.
func (in MovieInput) Movie(id int64) Movie {
	m := Movie{ID: id, Title: in.Title, Description: in.Description}
	if in.Year != nil {
		m.Year = *in.Year
	}
	return m
}

// MoviePatch is the request body for a partial update (PATCH).
// Absent fields are left unchanged; a supplied title must not be blank and
// title and year may not be set to null.
type MoviePatch struct {
	Title       *string `json:"title"       validate:"omitnil,min=1"`
	Description *string `json:"description"`
	Year        *int    `json:"year"        validate:"omitnil,min=-2147483648,max=2147483647"`

	nulls []string
}

// nonNullable lists the PATCH fields that reject an explicit null.
var nonNullable = []string{"title", "year"}

// UnmarshalJSON decodes the patch and remembers which non-nullable fields
// were sent as an explicit null, which a plain pointer cannot tell apart
// from an absent field.
func (p *MoviePatch) UnmarshalJSON(data []byte) error {
	type plain MoviePatch

	var fields plain
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*p = MoviePatch(fields)
	p.nulls = nil
	for key, value := range raw {
		if string(value) != "null" {
			continue
		}
		for _, name := range nonNullable {
			if strings.EqualFold(key, name) {
				p.nulls = append(p.nulls, name)
			}
		}
	}
	return nil
}

// NullFields returns the JSON names of non-nullable fields sent as null.
func (p MoviePatch) NullFields() []string {
	return p.nulls
}

// Normalize trims surrounding whitespace from a supplied title.
func (p *MoviePatch) Normalize() {
	if p.Title != nil {
		t := strings.TrimSpace(*p.Title)
		p.Title = &t
	}
}

// Apply returns m with every non-nil field of p copied over it.
func (p MoviePatch) Apply(m Movie) Movie {
	if p.Title != nil {
		m.Title = *p.Title
	}
	if p.Description != nil {
		m.Description = *p.Description
	}
	if p.Year != nil {
		m.Year = *p.Year
	}
	return m
}
