package publisher

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/postforge/postforge/internal/db/models"
)

func TestRegistry(t *testing.T) {
	reg := NewRegistry()

	for _, platform := range []string{models.PlatformFacebook, models.PlatformInstagram, models.PlatformLinkedIn} {
		if _, err := reg.Get(platform); err != nil {
			t.Errorf("expected publisher for %s, got error: %v", platform, err)
		}
	}
	if _, err := reg.Get(models.PlatformTikTok); err == nil {
		t.Error("expected error for platform without a publisher")
	}
}

func TestFacebookPublish_PhotoPost(t *testing.T) {
	var gotPath string
	var gotForm map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		r.ParseForm()
		gotForm = map[string]string{
			"url":          r.PostFormValue("url"),
			"caption":      r.PostFormValue("caption"),
			"access_token": r.PostFormValue("access_token"),
		}
		json.NewEncoder(w).Encode(map[string]string{"id": "photo-1", "post_id": "page_123"})
	}))
	defer server.Close()

	fb := NewFacebook()
	fb.baseURL = server.URL

	result, err := fb.Publish(context.Background(), Request{
		Content:        "Hello page",
		ImageURL:       "https://example.com/img.png",
		AccessToken:    "tok",
		PlatformUserID: "page1",
	})
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if gotPath != "/page1/photos" {
		t.Errorf("expected photos edge, got %s", gotPath)
	}
	if gotForm["caption"] != "Hello page" || gotForm["url"] != "https://example.com/img.png" {
		t.Errorf("unexpected form: %+v", gotForm)
	}
	if result.PlatformPostID != "page_123" {
		t.Errorf("expected post_id preferred over id, got %s", result.PlatformPostID)
	}
}

func TestFacebookPublish_TextOnlyUsesFeed(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode(map[string]string{"id": "feed-1"})
	}))
	defer server.Close()

	fb := NewFacebook()
	fb.baseURL = server.URL

	result, err := fb.Publish(context.Background(), Request{
		Content:        "Text only",
		AccessToken:    "tok",
		PlatformUserID: "page1",
	})
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if gotPath != "/page1/feed" {
		t.Errorf("expected feed edge, got %s", gotPath)
	}
	if result.PlatformPostID != "feed-1" {
		t.Errorf("unexpected post id: %s", result.PlatformPostID)
	}
}

func TestFacebookPublish_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "Invalid OAuth access token", "code": 190},
		})
	}))
	defer server.Close()

	fb := NewFacebook()
	fb.baseURL = server.URL

	_, err := fb.Publish(context.Background(), Request{Content: "x", AccessToken: "bad", PlatformUserID: "p"})
	if err == nil {
		t.Fatal("expected error from API")
	}
	if !strings.Contains(err.Error(), "Invalid OAuth access token") {
		t.Errorf("expected platform error message, got: %v", err)
	}
}

func TestInstagramPublish_TwoStepFlow(t *testing.T) {
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		switch r.URL.Path {
		case "/ig1/media":
			json.NewEncoder(w).Encode(map[string]string{"id": "container-9"})
		case "/ig1/media_publish":
			if r.PostFormValue("creation_id") != "container-9" {
				t.Errorf("expected creation_id container-9, got %s", r.PostFormValue("creation_id"))
			}
			json.NewEncoder(w).Encode(map[string]string{"id": "media-42"})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	ig := NewInstagram()
	ig.baseURL = server.URL

	result, err := ig.Publish(context.Background(), Request{
		Content:        "caption",
		ImageURL:       "https://example.com/img.png",
		AccessToken:    "tok",
		PlatformUserID: "ig1",
	})
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if len(paths) != 2 || paths[0] != "/ig1/media" || paths[1] != "/ig1/media_publish" {
		t.Errorf("expected container then publish, got %v", paths)
	}
	if result.PlatformPostID != "media-42" {
		t.Errorf("unexpected post id: %s", result.PlatformPostID)
	}
}

func TestInstagramPublish_RequiresImage(t *testing.T) {
	ig := NewInstagram()
	_, err := ig.Publish(context.Background(), Request{Content: "no image"})
	if err == nil {
		t.Fatal("expected error for missing image")
	}
}

func TestLinkedInPublish_TextPost(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ugcPosts" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("X-Restli-Protocol-Version") != "2.0.0" {
			t.Errorf("missing Restli protocol header")
		}
		var payload map[string]any
		json.NewDecoder(r.Body).Decode(&payload)
		if payload["author"] != "urn:li:person:member1" {
			t.Errorf("unexpected author: %v", payload["author"])
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"id": "urn:li:share:777"})
	}))
	defer server.Close()

	li := NewLinkedIn()
	li.baseURL = server.URL

	result, err := li.Publish(context.Background(), Request{
		Content:        "Pro update",
		AccessToken:    "tok",
		PlatformUserID: "member1",
	})
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if result.PlatformPostID != "urn:li:share:777" {
		t.Errorf("unexpected post id: %s", result.PlatformPostID)
	}
	if !strings.Contains(result.PlatformPostURL, "urn:li:share:777") {
		t.Errorf("unexpected post url: %s", result.PlatformPostURL)
	}
}

func TestLinkedInPublish_ImageUploadFlow(t *testing.T) {
	var uploadHit, registerHit bool
	mux := http.NewServeMux()
	var server *httptest.Server

	mux.HandleFunc("/assets", func(w http.ResponseWriter, r *http.Request) {
		registerHit = true
		json.NewEncoder(w).Encode(map[string]any{
			"value": map[string]any{
				"asset": "urn:li:digitalmediaAsset:abc",
				"uploadMechanism": map[string]any{
					"com.linkedin.digitalmedia.uploading.MediaUploadHttpRequest": map[string]any{
						"uploadUrl": server.URL + "/upload",
					},
				},
			},
		})
	})
	mux.HandleFunc("/upload", func(w http.ResponseWriter, r *http.Request) {
		uploadHit = true
		w.WriteHeader(http.StatusCreated)
	})
	mux.HandleFunc("/ugcPosts", func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		json.NewDecoder(r.Body).Decode(&payload)
		content := payload["specificContent"].(map[string]any)["com.linkedin.ugc.ShareContent"].(map[string]any)
		if content["shareMediaCategory"] != "IMAGE" {
			t.Errorf("expected IMAGE category, got %v", content["shareMediaCategory"])
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"id": "urn:li:share:img"})
	})

	server = httptest.NewServer(mux)
	defer server.Close()

	li := NewLinkedIn()
	li.baseURL = server.URL
	li.fetchImage = func(ctx context.Context, url string) ([]byte, error) {
		return []byte("fake-image-bytes"), nil
	}

	result, err := li.Publish(context.Background(), Request{
		Content:        "With image",
		ImageURL:       "https://example.com/img.png",
		AccessToken:    "tok",
		PlatformUserID: "member1",
	})
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if !registerHit || !uploadHit {
		t.Errorf("expected register and upload calls, got register=%v upload=%v", registerHit, uploadHit)
	}
	if result.PlatformPostID != "urn:li:share:img" {
		t.Errorf("unexpected post id: %s", result.PlatformPostID)
	}
}
