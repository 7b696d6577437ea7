package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/postforge/postforge/internal/db/models"
)

const linkedinAPIURL = "https://api.linkedin.com/v2"

// LinkedIn publishes member posts via the UGC API. Image posts register an
// upload slot, PUT the bytes, then reference the asset from the UGC post.
type LinkedIn struct {
	baseURL    string
	httpClient *http.Client
	// fetchImage downloads the image for upload. Swappable in tests.
	fetchImage func(ctx context.Context, url string) ([]byte, error)
}

func NewLinkedIn() *LinkedIn {
	l := &LinkedIn{
		baseURL:    linkedinAPIURL,
		httpClient: newHTTPClient(),
	}
	l.fetchImage = l.downloadImage
	return l
}

func (l *LinkedIn) Platform() string { return models.PlatformLinkedIn }

func (l *LinkedIn) Publish(ctx context.Context, req Request) (*Result, error) {
	authorURN := "urn:li:person:" + req.PlatformUserID

	var assetURN string
	if req.ImageURL != "" {
		urn, err := l.uploadImage(ctx, req, authorURN)
		if err != nil {
			return nil, err
		}
		assetURN = urn
	}

	media := []map[string]any{}
	category := "NONE"
	if assetURN != "" {
		category = "IMAGE"
		media = append(media, map[string]any{
			"status": "READY",
			"media":  assetURN,
		})
	}

	payload := map[string]any{
		"author":         authorURN,
		"lifecycleState": "PUBLISHED",
		"specificContent": map[string]any{
			"com.linkedin.ugc.ShareContent": map[string]any{
				"shareCommentary": map[string]any{
					"text": req.Content,
				},
				"shareMediaCategory": category,
				"media":              media,
			},
		},
		"visibility": map[string]any{
			"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC",
		},
	}

	respBody, status, err := l.postJSON(ctx, l.baseURL+"/ugcPosts", req.AccessToken, payload)
	if err != nil {
		return nil, err
	}
	if status != http.StatusCreated && status != http.StatusOK {
		return nil, fmt.Errorf("linkedin returned status %d: %s", status, truncateBody(respBody))
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(respBody, &created); err != nil || created.ID == "" {
		return nil, fmt.Errorf("linkedin response missing post id")
	}

	return &Result{
		PlatformPostID:  created.ID,
		PlatformPostURL: "https://www.linkedin.com/feed/update/" + created.ID,
	}, nil
}

// uploadImage runs the registerUpload + binary PUT dance and returns the
// asset URN to reference from the post.
func (l *LinkedIn) uploadImage(ctx context.Context, req Request, authorURN string) (string, error) {
	registerPayload := map[string]any{
		"registerUploadRequest": map[string]any{
			"recipes": []string{"urn:li:digitalmediaRecipe:feedshare-image"},
			"owner":   authorURN,
			"serviceRelationships": []map[string]any{
				{"relationshipType": "OWNER", "identifier": "urn:li:userGeneratedContent"},
			},
		},
	}

	respBody, status, err := l.postJSON(ctx, l.baseURL+"/assets?action=registerUpload", req.AccessToken, registerPayload)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("linkedin registerUpload returned status %d: %s", status, truncateBody(respBody))
	}

	var register struct {
		Value struct {
			Asset           string `json:"asset"`
			UploadMechanism struct {
				MediaUploadHTTPRequest struct {
					UploadURL string `json:"uploadUrl"`
				} `json:"com.linkedin.digitalmedia.uploading.MediaUploadHttpRequest"`
			} `json:"uploadMechanism"`
		} `json:"value"`
	}
	if err := json.Unmarshal(respBody, &register); err != nil {
		return "", fmt.Errorf("failed to decode registerUpload response: %w", err)
	}
	uploadURL := register.Value.UploadMechanism.MediaUploadHTTPRequest.UploadURL
	if uploadURL == "" || register.Value.Asset == "" {
		return "", fmt.Errorf("linkedin registerUpload response missing upload url or asset")
	}

	imageData, err := l.fetchImage(ctx, req.ImageURL)
	if err != nil {
		return "", fmt.Errorf("failed to download image: %w", err)
	}

	putReq, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, bytes.NewReader(imageData))
	if err != nil {
		return "", err
	}
	putReq.Header.Set("Authorization", "Bearer "+req.AccessToken)

	putResp, err := l.httpClient.Do(putReq)
	if err != nil {
		return "", fmt.Errorf("linkedin image upload failed: %w", err)
	}
	defer putResp.Body.Close()
	if putResp.StatusCode >= 300 {
		return "", fmt.Errorf("linkedin image upload returned status %d", putResp.StatusCode)
	}

	return register.Value.Asset, nil
}

func (l *LinkedIn) postJSON(ctx context.Context, endpoint, token string, payload any) ([]byte, int, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, 0, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Restli-Protocol-Version", "2.0.0")

	resp, err := l.httpClient.Do(httpReq)
	if err != nil {
		return nil, 0, fmt.Errorf("linkedin request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}

func (l *LinkedIn) downloadImage(ctx context.Context, url string) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image download returned status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func truncateBody(b []byte) string {
	const limit = 200
	if len(b) > limit {
		return string(b[:limit]) + "..."
	}
	return string(b)
}
