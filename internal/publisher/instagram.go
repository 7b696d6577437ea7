package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/postforge/postforge/internal/db/models"
)

// Instagram publishes through the Graph API content publishing flow:
// create a media container, then publish it. An image is mandatory.
type Instagram struct {
	baseURL    string
	httpClient *http.Client
}

func NewInstagram() *Instagram {
	return &Instagram{
		baseURL:    facebookGraphURL,
		httpClient: newHTTPClient(),
	}
}

func (i *Instagram) Platform() string { return models.PlatformInstagram }

func (i *Instagram) Publish(ctx context.Context, req Request) (*Result, error) {
	if req.ImageURL == "" {
		return nil, fmt.Errorf("instagram posts require an image")
	}

	// Step 1: create the media container.
	containerID, err := i.createContainer(ctx, req)
	if err != nil {
		return nil, err
	}

	// Step 2: publish the container.
	form := url.Values{}
	form.Set("creation_id", containerID)
	form.Set("access_token", req.AccessToken)

	endpoint := fmt.Sprintf("%s/%s/media_publish", i.baseURL, req.PlatformUserID)
	body, err := i.postForm(ctx, endpoint, form)
	if err != nil {
		return nil, err
	}

	return &Result{
		PlatformPostID:  body.ID,
		PlatformPostURL: "https://www.instagram.com/p/" + body.ID,
	}, nil
}

func (i *Instagram) createContainer(ctx context.Context, req Request) (string, error) {
	form := url.Values{}
	form.Set("image_url", req.ImageURL)
	form.Set("caption", req.Content)
	form.Set("access_token", req.AccessToken)

	endpoint := fmt.Sprintf("%s/%s/media", i.baseURL, req.PlatformUserID)
	body, err := i.postForm(ctx, endpoint, form)
	if err != nil {
		return "", fmt.Errorf("failed to create media container: %w", err)
	}
	return body.ID, nil
}

type graphResponse struct {
	ID    string `json:"id"`
	Error *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

func (i *Instagram) postForm(ctx context.Context, endpoint string, form url.Values) (*graphResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := i.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("instagram request failed: %w", err)
	}
	defer resp.Body.Close()

	var body graphResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("instagram returned unreadable response (status %d)", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK || body.Error != nil {
		if body.Error != nil {
			return nil, fmt.Errorf("instagram error %d: %s", body.Error.Code, body.Error.Message)
		}
		return nil, fmt.Errorf("instagram returned status %d", resp.StatusCode)
	}
	return &body, nil
}
