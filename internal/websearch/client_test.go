package websearch

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/blogsmith/internal/config"
	"github.com/jonesrussell/blogsmith/internal/logger"
)

func newClient(url string) *Client {
	return NewClient(&config.WebSearchConfig{
		URL:     url,
		APIKey:  "ws-key",
		Timeout: 2 * time.Second,
	}, logger.NewNopLogger())
}

func TestSearch_MapsResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "ankle sprain", r.URL.Query().Get("q"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		assert.Equal(t, "ws-key", r.Header.Get("X-API-Key"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[
			{"title":"Sprain basics","snippet":"RICE protocol","url":"https://www.nhs.uk/sprains","score":0.92},
			{"title":"Rehab drills","snippet":"Balance work","url":"https://physio.example/rehab","score":0.71}
		]}`))
	}))
	defer srv.Close()

	sources, err := newClient(srv.URL).Search(t.Context(), "ankle sprain", 5)
	require.NoError(t, err)
	require.Len(t, sources, 2)

	assert.Equal(t, "Sprain basics", sources[0].Title)
	assert.Equal(t, "RICE protocol", sources[0].Content)
	assert.Equal(t, "nhs.uk", sources[0].Source)
	assert.InDelta(t, 0.92, sources[0].RelevanceScore, 0.001)
}

func TestSearch_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newClient(srv.URL).Search(t.Context(), "ankle sprain", 5)
	assert.Error(t, err)
}

func TestSearch_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	_, err := newClient(srv.URL).Search(t.Context(), "ankle sprain", 5)
	assert.Error(t, err)
}
