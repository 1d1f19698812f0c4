package tracking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"parts-assistant/internal/application/port/output"
)

// Client talks to the delivery-tracking provider. Jobs are keyed by DO
// number in the URL path; the vehicle endpoint takes the whole batch of
// names in one POST body. Authentication is a per-request API key header.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     output.LoggerPort
}

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	Logger  output.LoggerPort
}

func DefaultConfig(apiKey string) Config {
	return Config{
		BaseURL: "https://polling.detrack.com/api/v2",
		APIKey:  apiKey,
		Timeout: 30 * time.Second,
	}
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     cfg.Logger,
	}
}

// Job is the provider's delivery-job object, reduced to the fields the tools
// normalize from.
type Job struct {
	DONumber             string      `json:"do_number"`
	PrimaryJobStatus     string      `json:"primary_job_status"`
	TrackingNumber       string      `json:"tracking_number"`
	ETATime              string      `json:"eta_time"`
	LiveETA              string      `json:"live_eta"`
	DeliverToCollectFrom string      `json:"deliver_to_collect_from"`
	CompanyName          string      `json:"company_name"`
	Address              string      `json:"address"`
	Instructions         string      `json:"instructions"`
	VerificationCode     int         `json:"verification_code"`
	Items                []JobItem   `json:"items"`
	SignatureFileURL     string      `json:"signature_file_url"`
	Photo1FileURL        string      `json:"photo_1_file_url"`
	Photo2FileURL        string      `json:"photo_2_file_url"`
	Photo3FileURL        string      `json:"photo_3_file_url"`
	Photo4FileURL        string      `json:"photo_4_file_url"`
	Photo5FileURL        string      `json:"photo_5_file_url"`
	Milestones           []Milestone `json:"milestones"`
}

type JobItem struct {
	SKU         string `json:"sku"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
}

type Milestone struct {
	Status    string `json:"status"`
	PodAt     string `json:"pod_at"`
	CreatedAt string `json:"created_at"`
}

// PhotoURLs returns the proof-of-delivery photos that are actually present,
// in slot order.
func (j *Job) PhotoURLs() []string {
	var urls []string
	for _, u := range []string{j.Photo1FileURL, j.Photo2FileURL, j.Photo3FileURL, j.Photo4FileURL, j.Photo5FileURL} {
		if u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

// Vehicle is one entry of the provider's batch vehicle-location response.
type Vehicle struct {
	Name       string         `json:"name"`
	Status     string         `json:"status"`
	NoGPS      bool           `json:"no_gps"`
	Lat        float64        `json:"lat"`
	Lng        float64        `json:"lng"`
	Address    string         `json:"address"`
	Battery    int            `json:"battery"`
	Speed      float64        `json:"speed"`
	MaxSpeed   float64        `json:"max_speed"`
	AvgSpeed   float64        `json:"avg_speed"`
	TrackedAt  string         `json:"tracked_at"`
	Connection string         `json:"connection"`
	Errors     []VehicleError `json:"errors"`
}

type VehicleError struct {
	Message string `json:"message"`
}

// GetJob fetches one delivery job by DO number.
func (c *Client) GetJob(ctx context.Context, doNumber string) (*Job, error) {
	body, err := c.do(ctx, http.MethodGet, "/dj/jobs/"+url.PathEscape(doNumber), nil)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Data *Job `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode tracking response: %w", err)
	}
	if envelope.Data == nil {
		return nil, fmt.Errorf("tracking API response missing data field")
	}
	return envelope.Data, nil
}

// ListJobs fetches the jobs assigned to a vehicle for one date (YYYY-MM-DD).
func (c *Client) ListJobs(ctx context.Context, date, assignTo string) ([]Job, error) {
	q := url.Values{}
	q.Set("date", date)
	if assignTo != "" {
		q.Set("assign_to", assignTo)
	}
	body, err := c.do(ctx, http.MethodGet, "/dj/jobs?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Data []Job `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode tracking response: %w", err)
	}
	if envelope.Data == nil {
		return nil, fmt.Errorf("tracking API response missing data field")
	}
	return envelope.Data, nil
}

// ViewVehiclesBatch looks up the whole batch of vehicle names in one call.
// The request body is the bare JSON array of names.
func (c *Client) ViewVehiclesBatch(ctx context.Context, names []string) ([]Vehicle, error) {
	payload, err := json.Marshal(names)
	if err != nil {
		return nil, err
	}
	body, err := c.do(ctx, http.MethodPost, "/vehicles/batch", payload)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Data []Vehicle `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode tracking response: %w", err)
	}
	if envelope.Data == nil {
		return nil, fmt.Errorf("tracking API response missing data field")
	}
	return envelope.Data, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("tracking API key is not configured (set DETRACK_API_KEY)")
	}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tracking API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read tracking response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if c.logger != nil {
			c.logger.Warn("tracking API error", "status", resp.StatusCode, "path", path)
		}
		return nil, fmt.Errorf("tracking API returned status %d", resp.StatusCode)
	}

	return body, nil
}
