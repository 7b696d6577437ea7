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

const facebookGraphURL = "https://graph.facebook.com/v19.0"

// Facebook publishes to a Facebook page via the Graph API. Posts with an
// image go through the photos edge, text-only posts through the feed edge.
type Facebook struct {
	baseURL    string
	httpClient *http.Client
}

func NewFacebook() *Facebook {
	return &Facebook{
		baseURL:    facebookGraphURL,
		httpClient: newHTTPClient(),
	}
}

func (f *Facebook) Platform() string { return models.PlatformFacebook }

func (f *Facebook) Publish(ctx context.Context, req Request) (*Result, error) {
	form := url.Values{}
	form.Set("access_token", req.AccessToken)

	var endpoint string
	if req.ImageURL != "" {
		endpoint = fmt.Sprintf("%s/%s/photos", f.baseURL, req.PlatformUserID)
		form.Set("url", req.ImageURL)
		form.Set("caption", req.Content)
	} else {
		endpoint = fmt.Sprintf("%s/%s/feed", f.baseURL, req.PlatformUserID)
		form.Set("message", req.Content)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := f.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("facebook request failed: %w", err)
	}
	defer resp.Body.Close()

	var body struct {
		ID     string `json:"id"`
		PostID string `json:"post_id"`
		Error  *struct {
			Message string `json:"message"`
			Code    int    `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("facebook returned unreadable response (status %d)", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK || body.Error != nil {
		if body.Error != nil {
			return nil, fmt.Errorf("facebook error %d: %s", body.Error.Code, body.Error.Message)
		}
		return nil, fmt.Errorf("facebook returned status %d", resp.StatusCode)
	}

	// Photo posts report the feed id in post_id.
	postID := body.PostID
	if postID == "" {
		postID = body.ID
	}
	return &Result{
		PlatformPostID:  postID,
		PlatformPostURL: "https://www.facebook.com/" + postID,
	}, nil
}
