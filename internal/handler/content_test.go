package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"mime/multipart"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/folio-go/internal/store"
)

func TestCheckAuth_Anonymous(t *testing.T) {
	app := newTestApp(t)

	auth := app.checkAuth(t)
	assert.False(t, auth.IsLoggedIn)
	assert.Nil(t, auth.UserID)
}

func TestGetContent_EmptyIsArray(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.client.Get(app.server.URL + RouteAPIGetContent)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := readBody(t, resp)
	assert.Equal(t, "[]", strings.TrimSpace(body))
}

func TestUpdateContent_RequiresSession(t *testing.T) {
	app := newTestApp(t)

	resp := app.postJSON(t, RouteAPIUpdateContent, map[string]any{
		"section_name": "hero",
		"field_name":   "title",
		"content":      "Intruder",
	})
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Unauthorized", body["error"])

	// Nothing was written.
	count, err := store.New(app.db).CountSections(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestUpdateContent_RoundTrip(t *testing.T) {
	app := newTestApp(t)
	app.createUser(t, "admin", "correct horse battery")
	app.login(t, "admin", "correct horse battery")

	resp := app.postJSON(t, RouteAPIUpdateContent, map[string]any{
		"section_name": "hero",
		"field_name":   "title",
		"content":      "Ada Lovelace",
	})
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Content updated successfully", body["message"])

	// The new value is visible through get-content.
	entries := app.getContent(t)
	require.Len(t, entries, 1)
	assert.Equal(t, "hero", entries[0].SectionName)
	assert.Equal(t, "title", entries[0].FieldName)
	assert.Equal(t, "Ada Lovelace", entries[0].Content)
}

func TestUpdateContent_SecondWriteReplaces(t *testing.T) {
	app := newTestApp(t)
	app.createUser(t, "admin", "correct horse battery")
	app.login(t, "admin", "correct horse battery")

	for _, title := range []string{"First", "Second"} {
		resp := app.postJSON(t, RouteAPIUpdateContent, map[string]any{
			"section_name": "hero",
			"field_name":   "title",
			"content":      title,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		_ = resp.Body.Close()
	}

	entries := app.getContent(t)
	require.Len(t, entries, 1)
	assert.Equal(t, "Second", entries[0].Content)
}

func TestUpdateContent_Validation(t *testing.T) {
	app := newTestApp(t)
	app.createUser(t, "admin", "correct horse battery")
	app.login(t, "admin", "correct horse battery")

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing section", map[string]any{"field_name": "title", "content": "x"}},
		{"missing field", map[string]any{"section_name": "hero", "content": "x"}},
		{"missing content", map[string]any{"section_name": "hero", "field_name": "title"}},
		{"bad section key", map[string]any{"section_name": "Hero Section!", "field_name": "title", "content": "x"}},
		{"bad field key", map[string]any{"section_name": "hero", "field_name": "../title", "content": "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := app.postJSON(t, RouteAPIUpdateContent, tt.body)
			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			var body map[string]any
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, false, body["success"])
		})
	}

	count, err := store.New(app.db).CountSections(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestUpdateContent_EmptyContentAllowed(t *testing.T) {
	app := newTestApp(t)
	app.createUser(t, "admin", "correct horse battery")
	app.login(t, "admin", "correct horse battery")

	// Explicit empty content clears a field; only a missing key is an error.
	resp := app.postJSON(t, RouteAPIUpdateContent, map[string]any{
		"section_name": "hero",
		"field_name":   "subtitle",
		"content":      "",
	})
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUpdateContent_InvalidBody(t *testing.T) {
	app := newTestApp(t)
	app.createUser(t, "admin", "correct horse battery")
	app.login(t, "admin", "correct horse battery")

	resp, err := app.client.Post(app.server.URL+RouteAPIUpdateContent,
		"application/json", strings.NewReader("{not json"))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUploadImage_RequiresSession(t *testing.T) {
	app := newTestApp(t)

	resp := app.uploadImage(t, "hero", "hero_image", "photo.jpg", jpegBytes(t, 64, 64))
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestUploadImage_HappyPath(t *testing.T) {
	app := newTestApp(t)
	app.createUser(t, "admin", "correct horse battery")
	app.login(t, "admin", "correct horse battery")

	resp := app.uploadImage(t, "hero", "hero_image", "photo.jpg", jpegBytes(t, 64, 64))
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["success"])

	path, _ := body["path"].(string)
	require.True(t, strings.HasPrefix(path, "uploads/hero_hero_image_"), "unexpected path %q", path)
	assert.True(t, strings.HasSuffix(path, ".jpg"))

	fullURL, _ := body["full_url"].(string)
	assert.Equal(t, app.server.URL+"/"+path, fullURL)

	// The upload also persisted the content entry.
	entries := app.getContent(t)
	require.Len(t, entries, 1)
	assert.Equal(t, path, entries[0].Content)
}

func TestUploadImage_VisibleAfterWarmListing(t *testing.T) {
	app := newTestApp(t)
	app.createUser(t, "admin", "correct horse battery")
	app.login(t, "admin", "correct horse battery")

	// Warm the listing cache before writing through the upload path.
	assert.Empty(t, app.getContent(t))

	resp := app.uploadImage(t, "hero", "hero_image", "photo.jpg", jpegBytes(t, 64, 64))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	_ = resp.Body.Close()
	path, _ := body["path"].(string)

	// The upload invalidates the same cache the read path serves from,
	// so the fresh entry is visible immediately, not after the TTL.
	entries := app.getContent(t)
	require.Len(t, entries, 1)
	assert.Equal(t, path, entries[0].Content)
}

func TestUploadImage_RejectsDisguisedFile(t *testing.T) {
	app := newTestApp(t)
	app.createUser(t, "admin", "correct horse battery")
	app.login(t, "admin", "correct horse battery")

	// A shell script renamed to .jpg fails content sniffing.
	resp := app.uploadImage(t, "hero", "hero_image", "photo.jpg",
		[]byte("#!/bin/sh\necho pwned\n"))
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	count, err := store.New(app.db).CountSections(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestUploadImage_RejectsOversize(t *testing.T) {
	app := newTestApp(t)
	app.createUser(t, "admin", "correct horse battery")
	app.login(t, "admin", "correct horse battery")

	// 6 MiB of noise exceeds the 5 MiB cap before any decode happens.
	big := bytes.Repeat([]byte{0xAB}, 6<<20)
	resp := app.uploadImage(t, "hero", "hero_image", "photo.jpg", big)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)

	count, err := store.New(app.db).CountSections(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestUploadImage_MalformedMultipart(t *testing.T) {
	app := newTestApp(t)
	app.createUser(t, "admin", "correct horse battery")
	app.login(t, "admin", "correct horse battery")

	// A broken multipart body is a bad request, not an oversize one.
	resp, err := app.client.Post(app.server.URL+RouteAPIUploadImage,
		"multipart/form-data; boundary=deadbeef", strings.NewReader("--deadbeef\r\ngarbage"))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Invalid request body", body["error"])
}

func TestUploadImage_MissingFile(t *testing.T) {
	app := newTestApp(t)
	app.createUser(t, "admin", "correct horse battery")
	app.login(t, "admin", "correct horse battery")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("section", "hero"))
	require.NoError(t, mw.WriteField("field", "hero_image"))
	require.NoError(t, mw.Close())

	resp, err := app.client.Post(app.server.URL+RouteAPIUploadImage,
		mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// postJSON sends a JSON body with the app's cookie-aware client.
func (a *testApp) postJSON(t *testing.T, route string, body map[string]any) *http.Response {
	t.Helper()

	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshaling request body: %v", err)
	}

	resp, err := a.client.Post(a.server.URL+route, "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("POST %s: %v", route, err)
	}
	return resp
}

// getContent fetches and decodes the public content listing.
func (a *testApp) getContent(t *testing.T) []struct {
	SectionName string `json:"section_name"`
	FieldName   string `json:"field_name"`
	Content     string `json:"content"`
} {
	t.Helper()

	resp, err := a.client.Get(a.server.URL + RouteAPIGetContent)
	if err != nil {
		t.Fatalf("get-content request: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var entries []struct {
		SectionName string `json:"section_name"`
		FieldName   string `json:"field_name"`
		Content     string `json:"content"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		t.Fatalf("decoding get-content response: %v", err)
	}
	return entries
}

// uploadImage posts a multipart upload form.
func (a *testApp) uploadImage(t *testing.T, section, field, filename string, data []byte) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("image", filename)
	if err != nil {
		t.Fatalf("creating form file: %v", err)
	}
	if _, err := fw.Write(data); err != nil {
		t.Fatalf("writing form file: %v", err)
	}
	if err := mw.WriteField("section", section); err != nil {
		t.Fatalf("writing section field: %v", err)
	}
	if err := mw.WriteField("field", field); err != nil {
		t.Fatalf("writing field field: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("closing multipart writer: %v", err)
	}

	resp, err := a.client.Post(a.server.URL+RouteAPIUploadImage,
		mw.FormDataContentType(), &buf)
	if err != nil {
		t.Fatalf("upload request: %v", err)
	}
	return resp
}

// jpegBytes encodes a small solid-color JPEG.
func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 120, B: 40, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encoding test JPEG: %v", err)
	}
	return buf.Bytes()
}
