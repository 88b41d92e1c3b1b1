package tmdb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/watchlist-cli/internal/domain"
)

func TestFetchPopularSendsQueryAndDecodes(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/3/movie/popular", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("api_key"))
		assert.Equal(t, "en-US", r.URL.Query().Get("language"))
		assert.Equal(t, "1", r.URL.Query().Get("page"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"page":1,"results":[
			{"id":1,"title":"Super Troopers","poster_path":"/st.jpg","vote_average":7.1,"release_date":"2001-01-18"},
			{"id":2,"title":"No Poster","vote_average":"N/A"},
			{"id":3,"title":"Unrated"}
		]}`))
	}))
	t.Cleanup(server.Close)

	entries, err := NewClient(server.Client(), server.URL+"/3/").FetchPopular(context.Background(), "secret")
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, domain.CatalogEntry{
		ID:          1,
		Title:       "Super Troopers",
		PosterPath:  "/st.jpg",
		Rating:      domain.Rating("7.1"),
		ReleaseDate: "2001-01-18",
	}, entries[0])
	assert.Equal(t, "N/A", entries[1].Rating.Label())
	assert.Equal(t, "n/a", entries[2].Rating.Label())
	assert.Equal(t, domain.PosterPlaceholder, entries[1].PosterURL(DefaultImageBaseURL))
}

func TestFetchPopularToleratesMissingOrMalformedResults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "missing field", body: `{"page":1}`, want: 0},
		{name: "results not a list", body: `{"results":"oops"}`, want: 0},
		{name: "null results", body: `{"results":null}`, want: 0},
		{name: "bad entries skipped", body: `{"results":[{"id":"x"},42,{"id":5,"title":"ok"}]}`, want: 1},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			t.Cleanup(server.Close)

			entries, err := NewClient(server.Client(), server.URL).FetchPopular(context.Background(), "k")
			require.NoError(t, err)
			assert.NotNil(t, entries)
			assert.Len(t, entries, tt.want)
		})
	}
}

func TestFetchPopularNonSuccessStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"status_message":"Invalid API key"}`))
	}))
	t.Cleanup(server.Close)

	_, err := NewClient(server.Client(), server.URL).FetchPopular(context.Background(), "bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
	assert.Contains(t, err.Error(), "Invalid API key")
}

func TestFetchPopularInvalidJSON(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>"))
	}))
	t.Cleanup(server.Close)

	_, err := NewClient(server.Client(), server.URL).FetchPopular(context.Background(), "k")
	require.ErrorContains(t, err, "decode payload")
}

func TestFetchPopularHonoursCancellation(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	t.Cleanup(func() {
		close(release)
		server.Close()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(server.Client(), server.URL).FetchPopular(ctx, "k")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "context canceled"))
}

func TestNewClientDefaults(t *testing.T) {
	t.Parallel()

	client := NewClient(nil, " ")
	assert.Equal(t, DefaultBaseURL, client.baseURL)
	assert.NotNil(t, client.http)
}
