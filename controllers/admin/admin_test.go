package adminController

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/junaidrashid-git/storefront-api/analytics"
	"github.com/junaidrashid-git/storefront-api/media"
	"github.com/junaidrashid-git/storefront-api/models"
)

type fakeLibrary struct {
	uploaded  string
	body      string
	uploadErr error
	deleted   []uint
}

func (f *fakeLibrary) Upload(_ context.Context, name string, r io.Reader) (*models.MediaAsset, error) {
	data, _ := io.ReadAll(r)
	f.uploaded, f.body = name, string(data)
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	return &models.MediaAsset{ID: 1, FileName: "x_" + name, FileURL: "/uploads/media/x_" + name}, nil
}

func (f *fakeLibrary) List(context.Context) ([]models.MediaAsset, error) {
	return []models.MediaAsset{{ID: 1}}, nil
}

func (f *fakeLibrary) Delete(_ context.Context, id uint) error {
	if id != 1 {
		return media.ErrAssetNotFound
	}
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeDashboards struct {
	days int
	err  error
}

func (f *fakeDashboards) Dashboard(_ context.Context, days int) (analytics.Dashboard, error) {
	f.days = days
	return analytics.Dashboard{TotalOrders: 3}, f.err
}

func newRouter(lib MediaLibrary, dash Dashboards) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	log := zap.NewNop()
	r.POST("/admin/media", UploadMedia(lib, log))
	r.GET("/admin/media", ListMedia(lib))
	r.DELETE("/admin/media/:id", DeleteMedia(lib, log))
	r.GET("/admin/analytics", GetDashboard(dash, log))
	return r
}

func upload(t *testing.T, r *gin.Engine, field string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, "look.png")
	require.NoError(t, err)
	_, _ = part.Write([]byte("png-bytes"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/admin/media", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestUploadMedia(t *testing.T) {
	lib := &fakeLibrary{}
	w := upload(t, newRouter(lib, &fakeDashboards{}), "file")

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "look.png", lib.uploaded)
	assert.Equal(t, "png-bytes", lib.body)
	assert.Contains(t, w.Body.String(), "/uploads/media/x_look.png")
}

func TestUploadMediaErrors(t *testing.T) {
	cases := []struct {
		name   string
		field  string
		err    error
		status int
	}{
		{name: "missing file", field: "image", status: http.StatusBadRequest},
		{name: "not an image", field: "file", err: media.ErrUnsupportedImage, status: http.StatusBadRequest},
		{name: "too large", field: "file", err: media.ErrTooLarge, status: http.StatusRequestEntityTooLarge},
		{name: "storage", field: "file", err: errors.New("disk full"), status: http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := upload(t, newRouter(&fakeLibrary{uploadErr: tc.err}, &fakeDashboards{}), tc.field)
			assert.Equal(t, tc.status, w.Code)
		})
	}
}

func TestListAndDeleteMedia(t *testing.T) {
	lib := &fakeLibrary{}
	r := newRouter(lib, &fakeDashboards{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/media", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	for path, status := range map[string]int{
		"/admin/media/1":   http.StatusOK,
		"/admin/media/2":   http.StatusNotFound,
		"/admin/media/abc": http.StatusBadRequest,
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, path, nil))
		assert.Equal(t, status, w.Code, path)
	}
	assert.Equal(t, []uint{1}, lib.deleted)
}

func TestGetDashboard(t *testing.T) {
	dash := &fakeDashboards{}
	r := newRouter(&fakeLibrary{}, dash)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/analytics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 30, dash.days)
	assert.Contains(t, w.Body.String(), `"total_orders":3`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/analytics?days=7", nil))
	assert.Equal(t, 7, dash.days)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/analytics?days=week", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	dash.err = errors.New("db down")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/analytics", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
