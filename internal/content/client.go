package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "github.com/vytor/lessonflow/internal/errors"
	"github.com/vytor/lessonflow/internal/logger"
	"github.com/vytor/lessonflow/internal/models"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) LessonActivities(ctx context.Context, lessonID string) ([]models.Activity, error) {
	log := logger.FromContext(ctx).WithPrefix("content").WithLesson(lessonID)

	var payload struct {
		Activities []json.RawMessage `json:"activities"`
	}
	if err := c.getJSON(ctx, "/lessons/"+url.PathEscape(lessonID)+"/activities", "lesson", lessonID, &payload); err != nil {
		return nil, err
	}

	out := make([]models.Activity, 0, len(payload.Activities))
	for i, raw := range payload.Activities {
		a, err := decodeActivity(raw)
		if err != nil {
			log.Error("failed to decode activity %d: %v", i, err)
			return nil, apperrors.NewContentInvalidError(lessonID, fmt.Sprintf("malformed activity %d: %v", i, err))
		}
		if a.Invalid != "" {
			log.Warn("activity %d (%s) fails schema: %s", i, a.ID, a.Invalid)
		}
		if a.LessonID == "" {
			a.LessonID = lessonID
		}
		out = append(out, a)
	}

	log.Info("fetched %d activities", len(out))
	return out, nil
}

func (c *Client) Activity(ctx context.Context, activityID string) (*models.Activity, error) {
	var raw json.RawMessage
	if err := c.getJSON(ctx, "/activities/"+url.PathEscape(activityID), "activity", activityID, &raw); err != nil {
		return nil, err
	}
	a, err := decodeActivity(raw)
	if err != nil {
		return nil, apperrors.NewContentInvalidError(activityID, "malformed activity document: "+err.Error())
	}
	if a.ID == "" {
		a.ID = activityID
	}
	return &a, nil
}

// CatalogSizes returns how many activities of each variant the catalog holds.
func (c *Client) CatalogSizes(ctx context.Context) (map[models.Variant]int, error) {
	var payload struct {
		Counts map[string]int `json:"counts"`
	}
	if err := c.getJSON(ctx, "/catalog", "catalog", "", &payload); err != nil {
		return nil, err
	}

	out := make(map[models.Variant]int, len(models.Variants))
	for k, n := range payload.Counts {
		v := models.Variant(strings.ToLower(k))
		if v.Valid() && n > 0 {
			out[v] = n
		}
	}
	return out, nil
}

func (c *Client) CourseOutline(ctx context.Context, courseID string) (*models.CourseOutline, error) {
	var doc courseDoc
	if err := c.getJSON(ctx, "/courses/"+url.PathEscape(courseID), "course", courseID, &doc); err != nil {
		return nil, err
	}
	outline := doc.toModel()
	if outline.ID == "" {
		outline.ID = courseID
	}
	return &outline, nil
}

// getJSON fetches path and decodes the body into out. Transport failures and
// unexpected statuses are CONTENT_UNAVAILABLE, a 404 is NOT_FOUND, and an
// undecodable body is CONTENT_INVALID.
func (c *Client) getJSON(ctx context.Context, path, resource, id string, out any) error {
	log := logger.FromContext(ctx).WithPrefix("content")
	endpoint := c.baseURL + path

	log.Debug("fetching %s", endpoint)
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		log.Error("failed to create request: %v", err)
		return apperrors.NewContentUnavailableError(resource, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("failed to fetch %s: %v", resource, err)
		return apperrors.NewContentUnavailableError(resource, err)
	}
	defer resp.Body.Close()

	log.Debug("%s response received in %v, status=%d", resource, time.Since(start), resp.StatusCode)

	if resp.StatusCode == http.StatusNotFound {
		return apperrors.NewNotFoundError(resource, id)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Error("%s request failed: status=%d, body=%s", resource, resp.StatusCode, string(body))
		return apperrors.NewContentUnavailableError(resource, fmt.Errorf("status %d: %s", resp.StatusCode, string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		log.Error("failed to decode %s response: %v", resource, err)
		var netErr interface{ Timeout() bool }
		if errors.As(err, &netErr) {
			return apperrors.NewContentUnavailableError(resource, err)
		}
		return apperrors.NewContentInvalidError(id, "malformed "+resource+" document: "+err.Error())
	}
	return nil
}
