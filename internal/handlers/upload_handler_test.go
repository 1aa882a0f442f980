package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/danielrjepsen/Nory-sub001/internal/apiclient"
)

type fakeUploader struct {
	eventID    string
	fileName   string
	categoryID *string
	content    string
	err        error
}

func (f *fakeUploader) UploadPhoto(_ context.Context, eventID, fileName string, categoryID *string, content io.Reader) error {
	if f.err != nil {
		return f.err
	}
	data, err := io.ReadAll(content)
	if err != nil {
		return err
	}
	f.eventID, f.fileName, f.categoryID, f.content = eventID, fileName, categoryID, string(data)
	return nil
}

func setupUploadRouter(u Uploader) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/api/v1/slideshow/uploads", NewUploadHandler("evt-1", u).Upload)
	return router
}

func multipartRequest(t *testing.T, fileName, content string, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	if fileName != "" {
		part, err := form.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, form.WriteField(k, v))
	}
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/slideshow/uploads", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	return req
}

func TestUploadHandler_ForwardsFile(t *testing.T) {
	u := &fakeUploader{}
	router := setupUploadRouter(u)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, multipartRequest(t, "dance.jpg", "jpeg-bytes", map[string]string{"categoryId": "party"}))

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "dance.jpg", gjson.Get(w.Body.String(), "data.fileName").String())
	assert.Equal(t, "evt-1", u.eventID)
	assert.Equal(t, "dance.jpg", u.fileName)
	assert.Equal(t, "jpeg-bytes", u.content)
	require.NotNil(t, u.categoryID)
	assert.Equal(t, "party", *u.categoryID)
}

func TestUploadHandler_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		fields   map[string]string
		err      error
		code     int
	}{
		{name: "missing file", code: http.StatusBadRequest},
		{name: "bad category", fileName: "a.jpg", fields: map[string]string{"categoryId": "a/b"}, code: http.StatusBadRequest},
		{name: "long file name", fileName: strings.Repeat("a", 90) + ".jpg", code: http.StatusBadRequest},
		{name: "backend rejects", fileName: "a.jpg", err: &apiclient.APIError{Status: http.StatusForbidden, Message: "uploads closed"}, code: http.StatusForbidden},
		{name: "backend down", fileName: "a.jpg", err: errors.New("connection refused"), code: http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupUploadRouter(&fakeUploader{err: tt.err})

			w := httptest.NewRecorder()
			router.ServeHTTP(w, multipartRequest(t, tt.fileName, "bytes", tt.fields))
			assert.Equal(t, tt.code, w.Code)
			assert.False(t, gjson.Get(w.Body.String(), "success").Bool())
		})
	}
}
