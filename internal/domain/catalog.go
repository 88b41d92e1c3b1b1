package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

const PosterPlaceholder = "https://placehold.co/300x450?text=No+Poster"

type CatalogEntry struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	PosterPath  string `json:"poster_path,omitempty"`
	Rating      Rating `json:"vote_average,omitempty"`
	ReleaseDate string `json:"release_date,omitempty"`
}

// PosterURL joins the poster path onto imageBase, or returns the placeholder
// when the entry carries no poster.
func (e CatalogEntry) PosterURL(imageBase string) string {
	path := strings.TrimSpace(e.PosterPath)
	if path == "" || strings.TrimSpace(imageBase) == "" {
		return PosterPlaceholder
	}

	return strings.TrimRight(imageBase, "/") + "/" + strings.TrimLeft(path, "/")
}

// Rating keeps the raw rating token so a non-numeric value can still be
// shown as-is.
type Rating string

func (r *Rating) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = ""
		return nil
	}

	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*r = Rating(text)
		return nil
	}

	*r = Rating(data)
	return nil
}

func (r Rating) MarshalJSON() ([]byte, error) {
	if _, ok := r.Float(); ok {
		return []byte(strings.TrimSpace(string(r))), nil
	}
	if r == "" {
		return []byte("null"), nil
	}

	return json.Marshal(string(r))
}

// Float parses the rating when its token is a JSON number. Tokens such as
// "NaN", "+7" or "0x1p3" are text, even though strconv would accept them.
func (r Rating) Float() (float64, bool) {
	token := strings.TrimSpace(string(r))
	if !isJSONNumber(token) {
		return 0, false
	}

	value, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, false
	}

	return value, true
}

func isJSONNumber(token string) bool {
	if token == "" || (token[0] != '-' && (token[0] < '0' || token[0] > '9')) {
		return false
	}

	return json.Valid([]byte(token))
}

func (r Rating) Label() string {
	if value, ok := r.Float(); ok {
		return strconv.FormatFloat(value, 'f', 1, 64)
	}
	if strings.TrimSpace(string(r)) == "" {
		return "n/a"
	}

	return string(r)
}

type CacheEnvelope[T any] struct {
	FetchedAt time.Time `json:"fetchedAt"`
	Data      T         `json:"data"`
}

// Fresh reports whether the envelope is younger than ttl at now.
func (e CacheEnvelope[T]) Fresh(now time.Time, ttl time.Duration) bool {
	if e.FetchedAt.IsZero() {
		return false
	}

	return now.Sub(e.FetchedAt) < ttl
}
