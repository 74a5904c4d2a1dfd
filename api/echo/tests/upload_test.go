package tests

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	testutil "github.com/takanag/nenga/tests"
)

func pngFixture(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode() failed: %v", err)
	}
	return buf.Bytes()
}

func newUploadRequest(t *testing.T, path, token string, file []byte) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "photo.png")
	if err != nil {
		t.Fatalf("CreateFormFile() failed: %v", err)
	}
	if _, err := fw.Write(file); err != nil {
		t.Fatalf("writing form file: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, httptest.NewRecorder()
}

func Test_uploadApi(t *testing.T) {
	app := setup(t)

	usr := testutil.CreateUser(t, usrRepo, "User", "awe", "awe@test.jp", "", nil, true)
	token := getToken(t, usr)

	t.Run("card image produces image and thumbnail", func(t *testing.T) {
		req, rec := newUploadRequest(t, "/api/upload-image", token, pngFixture(t, 64, 48))
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		var resp struct {
			ImageURL     string `json:"imageUrl"`
			ThumbnailURL string `json:"thumbnailUrl"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if !strings.HasSuffix(resp.ImageURL, ".jpg") {
			t.Errorf("imageUrl = %q; want a .jpg", resp.ImageURL)
		}
		if !strings.HasSuffix(resp.ThumbnailURL, "_thumb.jpg") {
			t.Errorf("thumbnailUrl = %q; want a _thumb.jpg", resp.ThumbnailURL)
		}
	})

	t.Run("header background", func(t *testing.T) {
		req, rec := newUploadRequest(t, "/api/upload-header-background", token, pngFixture(t, 64, 48))
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		var resp struct {
			ImageURL string `json:"imageUrl"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if resp.ImageURL == "" {
			t.Error("expected an imageUrl")
		}
	})

	t.Run("auth required", func(t *testing.T) {
		req, rec := newUploadRequest(t, "/api/upload-image", "", pngFixture(t, 8, 8))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("code = %v; want %v", rec.Code, http.StatusUnauthorized)
		}
	})

	t.Run("oversize upload rejected", func(t *testing.T) {
		conf.Media.MaxUploadSize = 128

		req, rec := newUploadRequest(t, "/api/upload-image", token, pngFixture(t, 64, 48))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusRequestEntityTooLarge {
			t.Errorf("code = %v; want %v", rec.Code, http.StatusRequestEntityTooLarge)
		}
	})

	t.Run("garbage rejected", func(t *testing.T) {
		conf.Media.MaxUploadSize = 10 << 20

		req, rec := newUploadRequest(t, "/api/upload-image", token, []byte("not an image"))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("code = %v; want %v", rec.Code, http.StatusBadRequest)
		}
	})
}
