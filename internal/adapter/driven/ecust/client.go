// Package ecust implements the RunService port against the campus run
// tracker's HTTP API.
package ecust

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/ljhyyds-jjk/ecust-autorun/internal/domain/model"
	"github.com/ljhyyds-jjk/ecust-autorun/internal/domain/port/driven"
)

const (
	loginPath        = "/api/userLogin/"
	verifyPath       = "/api/Runningverification/"
	createLinePath   = "/api/createLine/"
	updateRecordPath = "/api/updateRecord/"
	runningDataPath  = "/api/RunningData/"

	// The server carries session affinity in a sessionid cookie; it is
	// replayed as a Cookie header on every authenticated call.
	sessionCookie = "sessionid"

	// Login success is signalled by this literal message, not a status code.
	loginSuccessMessage = "操作成功啦！"

	statsCodeOK = 1
)

// The service only accepts requests that look like its mobile app.
var baseHeaders = map[string]string{
	"accept":          "*/*",
	"content-type":    "application/json",
	"lan":             "CH",
	"user-agent":      "chunTianChuangFu/1.3.1 (iPhone; iOS 18.2; Scale/3.00)",
	"accept-language": "zh-Hans-CN;q=1, zh-Hant-CN;q=0.9, en-CN;q=0.8, ja-CN;q=0.7",
}

// Every registered route is the same three checkpoints of lap 37; only the
// per-waypoint distance varies between runs.
const (
	waypointName  = "37"
	waypointLng   = "121.502959"
	waypointLat   = "30.82702"
	waypointCount = 3
)

// Compile-time interface satisfaction check.
var _ driven.RunService = (*Client)(nil)

// Client implements the driven.RunService port over the tracker's HTTP API.
// Transport failures are retried with a bounded linear backoff; any received
// response, whatever its envelope code, is returned to the caller.
type Client struct {
	http    *http.Client
	baseURL string
	retry   RetryPolicy
}

// NewClient creates a client for the given base URL with a per-call timeout.
func NewClient(baseURL string, timeout time.Duration, retry RetryPolicy) *Client {
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		retry:   retry,
	}
}

// NewClientWithHTTPClient creates a Client with a custom http.Client.
// This constructor is intended for testing, allowing injection of an
// httptest server and a fast retry policy.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string, retry RetryPolicy) *Client {
	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(baseURL, "/"),
		retry:   retry,
	}
}

// envelope is the service's common response wrapper.
type envelope struct {
	Code int `json:"code"`
}

// do issues one logical request, rebuilding it for each physical attempt so
// the body reader is always fresh. Only transport errors are retried.
func (c *Client) do(ctx context.Context, method, path string, payload any, sessionID string) (*http.Response, []byte, error) {
	var reqBody []byte
	if payload != nil {
		var err error
		reqBody, err = json.Marshal(payload)
		if err != nil {
			return nil, nil, fmt.Errorf("encode %s payload: %w", path, err)
		}
	}

	var (
		resp     *http.Response
		respBody []byte
	)
	attempt := func() error {
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(reqBody))
		if err != nil {
			return backoff.Permanent(err)
		}
		for k, v := range baseHeaders {
			req.Header.Set(k, v)
		}
		if sessionID != "" {
			req.AddCookie(&http.Cookie{Name: sessionCookie, Value: sessionID})
		}

		r, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer r.Body.Close()

		b, err := io.ReadAll(r.Body)
		if err != nil {
			// A truncated body is a transport failure, same as a failed dial.
			return err
		}

		resp, respBody = r, b
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(newLinearBackOff(c.retry.BackoffUnit), uint64(c.retry.MaxRetries)),
		ctx,
	)
	if err := backoff.Retry(attempt, policy); err != nil {
		return nil, nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, respBody, nil
}

// Login authenticates the account. Success requires all three of: a
// sessionid cookie on the response, the literal success message in the body,
// and a student id in the success payload. Anything short of that wraps
// driven.ErrLoginRejected.
func (c *Client) Login(ctx context.Context, phone, password string) (model.Credential, error) {
	payload := map[string]string{"iphone": phone, "password": password}
	resp, body, err := c.do(ctx, http.MethodPost, loginPath, payload, "")
	if err != nil {
		return model.Credential{}, err
	}

	var sessionID string
	for _, ck := range resp.Cookies() {
		if ck.Name == sessionCookie {
			sessionID = ck.Value
		}
	}
	if sessionID == "" {
		return model.Credential{}, fmt.Errorf("no %s cookie in login response: %w", sessionCookie, driven.ErrLoginRejected)
	}

	var parsed struct {
		Message string `json:"message"`
		Data    struct {
			ID json.Number `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return model.Credential{}, fmt.Errorf("decode login response: %w", err)
	}
	if parsed.Message != loginSuccessMessage {
		return model.Credential{}, fmt.Errorf("login message %q: %w", parsed.Message, driven.ErrLoginRejected)
	}
	if parsed.Data.ID == "" {
		return model.Credential{}, fmt.Errorf("login response missing student id: %w", driven.ErrLoginRejected)
	}

	return model.Credential{
		Phone:      phone,
		SessionID:  sessionID,
		StudentID:  parsed.Data.ID.String(),
		AcquiredAt: time.Now(),
	}, nil
}

// VerifyEligibility runs the server-side eligibility check and returns the
// raw envelope code.
func (c *Client) VerifyEligibility(ctx context.Context, cred model.Credential) (int, error) {
	_, body, err := c.do(ctx, http.MethodGet, verifyPath, nil, cred.SessionID)
	if err != nil {
		return 0, err
	}

	var parsed envelope
	if err := json.Unmarshal(body, &parsed); err != nil {
		return 0, fmt.Errorf("decode verification response: %w", err)
	}
	return parsed.Code, nil
}

type waypoint struct {
	PointName string  `json:"point_name"`
	Lng       string  `json:"lng"`
	Lat       string  `json:"lat"`
	Distance  float64 `json:"distance"`
}

// CreateRoute registers the fixed three-waypoint route, each waypoint
// carrying the sampled distance, and returns the record id the service
// assigned (empty when it assigned none).
func (c *Client) CreateRoute(ctx context.Context, cred model.Credential, distance float64) (string, error) {
	points := make([]waypoint, waypointCount)
	for i := range points {
		points[i] = waypoint{
			PointName: waypointName,
			Lng:       waypointLng,
			Lat:       waypointLat,
			Distance:  distance,
		}
	}
	payload := map[string]any{
		"student_id": cred.StudentID,
		"pass_point": points,
	}

	_, body, err := c.do(ctx, http.MethodPost, createLinePath, payload, cred.SessionID)
	if err != nil {
		return "", err
	}

	// record_id has been observed both as a number and as a string; decode
	// with UseNumber so either form round-trips to a stable string.
	var parsed struct {
		Data struct {
			RecordID any `json:"record_id"`
		} `json:"data"`
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode route response: %w", err)
	}

	switch v := parsed.Data.RecordID.(type) {
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("unexpected record_id type %T in route response", v)
	}
}

// SubmitRecord posts the completion payload and returns the raw envelope code.
func (c *Client) SubmitRecord(ctx context.Context, cred model.Credential, rec model.RecordSubmission) (int, error) {
	payload := map[string]any{
		"id":           rec.StudentID,
		"student_id":   rec.StudentID,
		"record_id":    rec.RecordID,
		"pace":         rec.Pace,
		"running_time": rec.RunningTime,
		"mileage":      rec.Mileage,
		"step_count":   rec.StepCount,
		"pass_point":   rec.PassPoints,
		"start_time":   rec.StartTime,
		"end_time":     rec.EndTime,
		"lat":          rec.Lat,
		"lng":          rec.Lng,
	}

	_, body, err := c.do(ctx, http.MethodPost, updateRecordPath, payload, cred.SessionID)
	if err != nil {
		return 0, err
	}

	var parsed envelope
	if err := json.Unmarshal(body, &parsed); err != nil {
		return 0, fmt.Errorf("decode record response: %w", err)
	}
	return parsed.Code, nil
}

// FetchStats retrieves the account's run counters.
func (c *Client) FetchStats(ctx context.Context, cred model.Credential) (*model.RunStats, error) {
	_, body, err := c.do(ctx, http.MethodGet, runningDataPath, nil, cred.SessionID)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Code int `json:"code"`
		Data struct {
			TargetEffective int `json:"target_effective"`
			Universal       int `json:"universal"`
			Effective       int `json:"effective"`
			Morning         int `json:"morning"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode stats response: %w", err)
	}
	if parsed.Code != statsCodeOK {
		return nil, fmt.Errorf("stats fetch rejected: code %d", parsed.Code)
	}

	return &model.RunStats{
		TargetEffective: parsed.Data.TargetEffective,
		Universal:       parsed.Data.Universal,
		Effective:       parsed.Data.Effective,
		Morning:         parsed.Data.Morning,
	}, nil
}
