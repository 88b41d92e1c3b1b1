package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRatingDecodesNumbersStringsAndNull(t *testing.T) {
	var entries []CatalogEntry
	err := json.Unmarshal([]byte(`[
		{"id":1,"title":"Numeric","vote_average":7.26},
		{"id":2,"title":"Text","vote_average":"N/A"},
		{"id":3,"title":"Null","vote_average":null},
		{"id":4,"title":"Missing"}
	]`), &entries)
	require.NoError(t, err)
	require.Len(t, entries, 4)

	assert.Equal(t, "7.3", entries[0].Rating.Label())
	assert.Equal(t, "N/A", entries[1].Rating.Label())
	assert.Equal(t, "n/a", entries[2].Rating.Label())
	assert.Equal(t, "n/a", entries[3].Rating.Label())
}

func TestRatingMarshalKeepsNumbersNumeric(t *testing.T) {
	data, err := json.Marshal(CatalogEntry{ID: 1, Title: "Heat", Rating: "7.9"})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"vote_average":7.9`)

	data, err = json.Marshal(CatalogEntry{ID: 2, Title: "Odd", Rating: "unrated"})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"vote_average":"unrated"`)
}

func TestPosterURLFallsBackToPlaceholder(t *testing.T) {
	base := "https://image.tmdb.org/t/p/w300"

	assert.Equal(t, base+"/abc.jpg", CatalogEntry{PosterPath: "/abc.jpg"}.PosterURL(base))
	assert.Equal(t, PosterPlaceholder, CatalogEntry{}.PosterURL(base))
	assert.Equal(t, PosterPlaceholder, CatalogEntry{PosterPath: "/abc.jpg"}.PosterURL(""))
}

func TestCacheEnvelopeFreshness(t *testing.T) {
	now := time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC)
	ttl := 10 * time.Minute

	fresh := CacheEnvelope[[]CatalogEntry]{FetchedAt: now.Add(-(ttl - time.Millisecond))}
	stale := CacheEnvelope[[]CatalogEntry]{FetchedAt: now.Add(-(ttl + time.Millisecond))}

	assert.True(t, fresh.Fresh(now, ttl))
	assert.False(t, stale.Fresh(now, ttl))
	assert.False(t, CacheEnvelope[[]CatalogEntry]{}.Fresh(now, ttl))
}

func TestRatingOddTokensSurviveCacheEnvelope(t *testing.T) {
	tokens := []string{"NaN", "Inf", "7.", "+7", "0x1p3", "1e999"}

	for _, token := range tokens {
		t.Run(token, func(t *testing.T) {
			var entry CatalogEntry
			require.NoError(t, json.Unmarshal([]byte(`{"id":1,"title":"Odd","vote_average":"`+token+`"}`), &entry))

			encoded, err := json.Marshal(CacheEnvelope[[]CatalogEntry]{Data: []CatalogEntry{entry}})
			require.NoError(t, err)

			var decoded CacheEnvelope[[]CatalogEntry]
			require.NoError(t, json.Unmarshal(encoded, &decoded))
			require.Len(t, decoded.Data, 1)
			assert.Equal(t, Rating(token), decoded.Data[0].Rating)
			assert.Equal(t, token, decoded.Data[0].Rating.Label())
		})
	}
}

func TestRatingNumericStringStaysNumeric(t *testing.T) {
	var entry CatalogEntry
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"title":"Quoted","vote_average":"6.5"}`), &entry))

	value, ok := entry.Rating.Float()
	require.True(t, ok)
	assert.InDelta(t, 6.5, value, 1e-9)
	assert.Equal(t, "6.5", entry.Rating.Label())
}
