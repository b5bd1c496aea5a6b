package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Pinoccchio/InCloud-WEB-sub003/internal/models"
)

// APIPersister performs the lifecycle round-trips against the dashboard API.
// It is the production Persister for admin clients embedding this package.
type APIPersister struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

func NewAPIPersister(baseURL, token string) *APIPersister {
	return &APIPersister{
		BaseURL: baseURL,
		Token:   token,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *APIPersister) MarkRead(ctx context.Context, id string) error {
	return p.do(ctx, http.MethodPatch, "/api/notifications/"+id+"/read")
}

func (p *APIPersister) MarkAllRead(ctx context.Context) error {
	return p.do(ctx, http.MethodPost, "/api/notifications/read-all")
}

func (p *APIPersister) Acknowledge(ctx context.Context, id string) error {
	return p.do(ctx, http.MethodPatch, "/api/notifications/"+id+"/acknowledge")
}

func (p *APIPersister) Resolve(ctx context.Context, id string) error {
	return p.do(ctx, http.MethodPatch, "/api/notifications/"+id+"/resolve")
}

func (p *APIPersister) Load(ctx context.Context) ([]Notification, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.BaseURL+"/api/notifications", nil)

	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+p.Token)

	resp, err := p.Client.Do(req)

	if err != nil {
		return nil, fmt.Errorf("load notifications: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("load notifications: status %d", resp.StatusCode)
	}

	var body struct {
		Notifications []models.Notification `json:"notifications"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode notifications: %w", err)
	}

	list := make([]Notification, 0, len(body.Notifications))
	for _, row := range body.Notifications {
		list = append(list, FromModel(row))
	}

	return list, nil
}

func (p *APIPersister) do(ctx context.Context, method, path string) error {
	req, err := http.NewRequestWithContext(ctx, method, p.BaseURL+path, nil)

	if err != nil {
		return err
	}

	req.Header.Set("Authorization", "Bearer "+p.Token)

	resp, err := p.Client.Do(req)

	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}

	return nil
}
