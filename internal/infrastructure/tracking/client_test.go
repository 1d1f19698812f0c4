package tracking

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := DefaultConfig("test-key")
	cfg.BaseURL = srv.URL
	return NewClient(cfg)
}

func TestClient_MissingAPIKey(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://localhost:0", APIKey: ""})

	_, err := client.GetJob(context.Background(), "DO-1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "DETRACK_API_KEY")
}

func TestClient_GetJobUnwrapsDataEnvelope(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("X-API-KEY"))
		fmt.Fprint(w, `{"data":{"do_number":"DO-1","primary_job_status":"completed"}}`)
	})

	job, err := client.GetJob(context.Background(), "DO-1")

	require.NoError(t, err)
	assert.Equal(t, "DO-1", job.DONumber)
	assert.Equal(t, "completed", job.PrimaryJobStatus)
}

func TestClient_GetJobMissingData(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"code":"not_found"}`)
	})

	_, err := client.GetJob(context.Background(), "DO-1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing data field")
}

func TestClient_NonSuccessStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.GetJob(context.Background(), "DO-1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestClient_ViewVehiclesBatchPostsBareArray(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var names []string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&names))
		assert.Equal(t, []string{"Van 1", "Van 2"}, names)

		fmt.Fprint(w, `{"data":[{"name":"Van 1","status":"ok"},{"name":"Van 2","status":"ok","no_gps":true}]}`)
	})

	vehicles, err := client.ViewVehiclesBatch(context.Background(), []string{"Van 1", "Van 2"})

	require.NoError(t, err)
	require.Len(t, vehicles, 2)
	assert.False(t, vehicles[0].NoGPS)
	assert.True(t, vehicles[1].NoGPS)
}

func TestClient_ListJobsQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/dj/jobs", r.URL.Path)
		assert.Equal(t, "2026-08-30", r.URL.Query().Get("date"))
		assert.Equal(t, "Van 1", r.URL.Query().Get("assign_to"))
		fmt.Fprint(w, `{"data":[{"do_number":"DO-1"}]}`)
	})

	jobs, err := client.ListJobs(context.Background(), "2026-08-30", "Van 1")

	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "DO-1", jobs[0].DONumber)
}

func TestJob_PhotoURLsSkipsEmptySlots(t *testing.T) {
	job := &Job{
		Photo2FileURL: "https://files.example/p2.jpg",
		Photo5FileURL: "https://files.example/p5.jpg",
	}

	assert.Equal(t, []string{"https://files.example/p2.jpg", "https://files.example/p5.jpg"}, job.PhotoURLs())
	assert.Nil(t, (&Job{}).PhotoURLs())
}
