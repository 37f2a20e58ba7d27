package transit_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/transit-bot/internal/domain"
	"github.com/pkordes/transit-bot/internal/transit"
)

// newTestClient starts an httptest server running h and returns a Client
// pointed at its /api/v5/ prefix.
func newTestClient(t *testing.T, h http.HandlerFunc) *transit.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := transit.NewClient(srv.URL+"/api/v5", 5*time.Second)
	require.NoError(t, err)
	return c
}

func TestClient_Routes(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v5/route/", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"objects":[
			{"id":2,"name":"12","description":"Depot - Station","checkpoints_ids":[5,6]},
			{"id":3,"name":"7a","description":"","checkpoints_ids":[]}
		]}`))
	})

	got, err := c.Routes(context.Background())

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, domain.Route{ID: 2, Number: "12", Description: "Depot - Station", StopIDs: []int{5, 6}}, got[0])
	assert.Equal(t, "7a", got[1].Number)
}

func TestClient_Stops(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v5/checkpoint/", r.URL.Path)
		_, _ = w.Write([]byte(`{"objects":[{"id":5,"name":"Central%20Square","description":"north",
			"code_number":"0105","lat":57.15,"lon":65.53,"projected_lat":57.151,"projected_lon":65.531,
			"heading":90,"routes_ids":[2]}]}`))
	})

	got, err := c.Stops(context.Background())

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 5, got[0].ID)
	assert.Equal(t, "Central%20Square", got[0].Name, "names are decoded by the matcher, not the client")
	assert.Equal(t, "0105", got[0].Code)
	assert.Equal(t, []int{2}, got[0].RouteIDs)
	assert.InDelta(t, 90.0, got[0].Heading, 1e-9)
}

func TestClient_Times(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v5/times/", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("route_id"))
		assert.Equal(t, "5", r.URL.Query().Get("checkpoint_id"))
		_, _ = w.Write([]byte(`{"objects":[{"times":["08:00","08:15"]},{"times":["23:59"]}]}`))
	})

	got, err := c.Times(context.Background(), 2, 5)

	require.NoError(t, err)
	assert.Equal(t, []string{"08:00", "08:15"}, got, "only the first object is authoritative")
}

func TestClient_Times_NoData(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"objects":[]}`))
	})

	got, err := c.Times(context.Background(), 2, 5)

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestClient_UpstreamFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"malformed json", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"objects":[{"id":`))
		}},
		{"wrong shape", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"objects":{"id":1}}`))
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, tc.handler)

			got, err := c.Routes(context.Background())

			assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
			assert.Nil(t, got, "no partial collection on failure")
		})
	}
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c, err := transit.NewClient(srv.URL, time.Second)
	require.NoError(t, err)

	_, err = c.Stops(context.Background())

	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}
