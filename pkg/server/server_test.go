package server

import(
	"bytes"
	"encoding/json"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abworrall/shadowfree/pkg/emath"
	"github.com/abworrall/shadowfree/pkg/shadowfree"
	"github.com/abworrall/shadowfree/pkg/synth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T) *Server {
	s, err := New(shadowfree.NewConfig())
	require.NoError(t, err)
	return s
}

func upload(t *testing.T, s *Server, url string, payload []byte) *httptest.ResponseRecorder {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if payload != nil {
		fw, err := mw.CreateFormFile("image", "test.png")
		require.NoError(t, err)
		_, err = fw.Write(payload)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, url, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func splitPNG(t *testing.T) []byte {
	img := synth.Split(16, 16, 8, emath.Vec3{200, 50, 100}, emath.Vec3{50, 200, 100})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img.ToRGBA()))
	return buf.Bytes()
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestPostInvariant(t *testing.T) {
	s := newTestServer(t)
	w := upload(t, s, "/v1/invariant?angles=37", splitPNG(t))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp invariantResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 16, resp.Width)
	assert.Len(t, resp.Sweep, 37)
	assert.InDelta(t, resp.MinAngleDegrees+90, resp.LightingDegrees, 1e-9)
}

func TestPostInvariantPNG(t *testing.T) {
	s := newTestServer(t)
	w := upload(t, s, "/v1/invariant?format=png", splitPNG(t))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))

	img, err := png.Decode(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 16, img.Bounds().Dx())
}

func TestPostInvariantErrors(t *testing.T) {
	s := newTestServer(t)
	assert.Equal(t, http.StatusBadRequest, upload(t, s, "/v1/invariant", []byte("garbage")).Code)
	assert.Equal(t, http.StatusBadRequest, upload(t, s, "/v1/invariant", nil).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, upload(t, s, "/v1/invariant?angles=1", splitPNG(t)).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, upload(t, s, "/v1/invariant?angles=lots", splitPNG(t)).Code)
}

func TestPostIlluminant(t *testing.T) {
	s := newTestServer(t)
	w := upload(t, s, "/v1/illuminant?method=greyworld", splitPNG(t))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp illuminantResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "greyworld", resp.Method)
	assert.InDelta(t, 125.0, resp.RGB[0], 1.0)
	assert.InDelta(t, 100.0, resp.RGB[2], 1e-6)

	assert.Equal(t, http.StatusUnprocessableEntity, upload(t, s, "/v1/illuminant?method=bogus", splitPNG(t)).Code)
}

func TestNewRejectsBadConfig(t *testing.T) {
	cfg := shadowfree.NewConfig()
	cfg.Invariant.SmoothingKernelSize = 2
	_, err := New(cfg)
	assert.Error(t, err)
}
