// handlers_upload_test.go - Tests for document file handlers
package api

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urdf-visualizer/backend/internal/models"
	"github.com/urdf-visualizer/backend/internal/testutil"
)

func encode(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func TestUploadHandler_HandleUploadFile(t *testing.T) {
	tests := []struct {
		name       string
		request    uploadFileRequest
		wantStatus int
		wantErr    bool
		errCode    string
	}{
		{
			name:       "valid document",
			request:    uploadFileRequest{Name: "arm.urdf", Data: encode(testutil.ArmURDF)},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "empty name",
			request:    uploadFileRequest{Name: "", Data: encode(testutil.ArmURDF)},
			wantStatus: http.StatusBadRequest,
			wantErr:    true,
			errCode:    "VALIDATION_ERROR",
		},
		{
			name:       "empty data",
			request:    uploadFileRequest{Name: "arm.urdf", Data: ""},
			wantStatus: http.StatusBadRequest,
			wantErr:    true,
			errCode:    "VALIDATION_ERROR",
		},
		{
			name:       "invalid base64",
			request:    uploadFileRequest{Name: "arm.urdf", Data: "not-valid-base64!!!"},
			wantStatus: http.StatusBadRequest,
			wantErr:    true,
			errCode:    "BAD_REQUEST",
		},
		{
			name:       "not a robot",
			request:    uploadFileRequest{Name: "notes.xml", Data: encode("<notes/>")},
			wantStatus: http.StatusUnprocessableEntity,
			wantErr:    true,
			errCode:    "MALFORMED_DOCUMENT",
		},
		{
			name:       "bad number",
			request:    uploadFileRequest{Name: "r.urdf", Data: encode(`<robot><link name="a"><inertial><mass value="x"/></inertial></link></robot>`)},
			wantStatus: http.StatusUnprocessableEntity,
			wantErr:    true,
			errCode:    "INVALID_NUMERIC_LITERAL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := testutil.NewMockStorage()
			handler := NewUploadHandler(store)

			e := echo.New()
			body, _ := json.Marshal(tt.request)
			req := httptest.NewRequest(http.MethodPost, "/api/files/upload", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			err := handler.HandleUploadFile(c)

			if tt.wantErr {
				apiErr, ok := err.(*APIError)
				require.True(t, ok, "expected APIError, got %T", err)
				assert.Equal(t, tt.wantStatus, apiErr.Status)
				assert.Equal(t, tt.errCode, apiErr.Code)
				assert.Zero(t, store.GetFileCount(), "rejected documents are not stored")
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, rec.Code)

			var response models.FileInfo
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
			assert.NotEmpty(t, response.ID)
			assert.Equal(t, tt.request.Name, response.Name)
			assert.Len(t, response.Digest, 64)
		})
	}
}

func TestUploadHandler_HandleUploadBinary(t *testing.T) {
	store := testutil.NewMockStorage()
	handler := NewUploadHandler(store)
	e := echo.New()

	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	part, _ := writer.CreateFormFile("file", "two_link.urdf")
	part.Write([]byte(testutil.TwoLinkURDF))
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/files/upload/binary", body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, handler.HandleUploadBinary(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"stats":{"links":2,"joints":1,"meshes":1}`)
	assert.Equal(t, 1, store.GetFileCount())

	var resp struct {
		File models.FileInfo `json:"file"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	data, err := store.GetFileData(resp.File.ID)
	require.NoError(t, err)
	assert.Equal(t, testutil.TwoLinkURDF, string(data), "stored bytes are the full upload")

	// No file part
	req = httptest.NewRequest(http.MethodPost, "/api/files/upload/binary", strings.NewReader(""))
	rec = httptest.NewRecorder()
	err = handler.HandleUploadBinary(e.NewContext(req, rec))
	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, "BAD_REQUEST", apiErr.Code)
}

func TestUploadHandler_HandleGetRecentFiles(t *testing.T) {
	tests := []struct {
		name       string
		setupFiles map[string][]byte
		wantCount  int
	}{
		{
			name:       "empty storage",
			setupFiles: map[string][]byte{},
			wantCount:  0,
		},
		{
			name: "documents only",
			setupFiles: map[string][]byte{
				"arm.urdf":   []byte(testutil.ArmURDF),
				"legacy.XML": []byte(testutil.TwoLinkURDF),
			},
			wantCount: 2,
		},
		{
			name: "presets excluded",
			setupFiles: map[string][]byte{
				"arm.urdf":  []byte(testutil.ArmURDF),
				"home.yaml": []byte("joints: {}"),
				"notes.txt": []byte("hello"),
			},
			wantCount: 1,
		},
		{
			name: "many files limited to 20",
			setupFiles: func() map[string][]byte {
				files := make(map[string][]byte)
				for i := 0; i < 30; i++ {
					files[fmt.Sprintf("robot%d.urdf", i)] = []byte(testutil.SingleLinkURDF)
				}
				return files
			}(),
			wantCount: 20,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := testutil.NewMockStorage()
			for name, data := range tt.setupFiles {
				store.AddFile(fmt.Sprintf("id-%s", name), name, data)
			}
			handler := NewUploadHandler(store)

			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/api/files/recent", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			require.NoError(t, handler.HandleGetRecentFiles(c))
			assert.Equal(t, http.StatusOK, rec.Code)

			var files []*models.FileInfo
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &files))
			assert.Len(t, files, tt.wantCount)
		})
	}
}

func TestUploadHandler_FileLifecycle(t *testing.T) {
	store := testutil.NewMockStorage()
	store.AddFile("file-1", "arm.urdf", []byte(testutil.ArmURDF))
	handler := NewUploadHandler(store)
	e := echo.New()

	call := func(method, body string, fn func(echo.Context) error, id string) (*httptest.ResponseRecorder, error) {
		req := httptest.NewRequest(method, "/api/files/"+id, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues(id)
		return rec, fn(c)
	}

	rec, err := call(http.MethodGet, "", handler.HandleGetFile, "file-1")
	require.NoError(t, err)
	assert.Contains(t, rec.Body.String(), `"name":"arm.urdf"`)

	rec, err = call(http.MethodPut, `{"name":"renamed.urdf"}`, handler.HandleRenameFile, "file-1")
	require.NoError(t, err)
	assert.Contains(t, rec.Body.String(), `"name":"renamed.urdf"`)

	_, err = call(http.MethodPut, `{"name":""}`, handler.HandleRenameFile, "file-1")
	assert.Equal(t, "VALIDATION_ERROR", err.(*APIError).Code)

	rec, err = call(http.MethodDelete, "", handler.HandleDeleteFile, "file-1")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	for _, fn := range []func(echo.Context) error{handler.HandleGetFile, handler.HandleDeleteFile} {
		_, err = call(http.MethodGet, "", fn, "file-1")
		apiErr, ok := err.(*APIError)
		require.True(t, ok)
		assert.Equal(t, http.StatusNotFound, apiErr.Status)
	}

	_, err = call(http.MethodGet, "", handler.HandleGetFile, "")
	assert.Equal(t, "VALIDATION_ERROR", err.(*APIError).Code)
}

func TestFilterRobotDocuments(t *testing.T) {
	files := []*models.FileInfo{
		{Name: "a.urdf"},
		{Name: "b.URDF"},
		{Name: "c.xml"},
		{Name: "d.yaml"},
		{Name: "e.yml"},
		{Name: "urdf"},
	}
	got := filterRobotDocuments(files)
	require.Len(t, got, 3)
	assert.Equal(t, "a.urdf", got[0].Name)
	assert.Equal(t, "b.URDF", got[1].Name)
	assert.Equal(t, "c.xml", got[2].Name)
}
