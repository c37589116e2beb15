package api_test

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reorderly/backend-go/internal/api"
	"github.com/reorderly/backend-go/internal/auth"
	"github.com/reorderly/backend-go/internal/config"
	"github.com/reorderly/backend-go/internal/domain"
	"github.com/reorderly/backend-go/internal/engine"
	"github.com/reorderly/backend-go/internal/service"
)

var testToday = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestRouter(t *testing.T, authEnabled bool, verifier *auth.Verifier) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Server: config.ServerConfig{AllowedOrigins: []string{"*"}},
		Auth:   config.AuthConfig{Enabled: authEnabled},
		App:    config.AppConfig{MaxUploadMB: 4, DefaultHorizonDays: 30},
	}

	recService := service.NewRecommendationService(
		engine.New(engine.WithClock(func() time.Time { return testToday })),
	)

	return api.NewRouter(cfg, &api.Services{Recommendations: recService}, verifier)
}

func uploadRequest(t *testing.T, target, csvBody string, headers map[string]string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "history.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(csvBody))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return req
}

// Two SKUs: A1 is about to stock out (RED), B2 has no sales (GREEN).
const sampleCSV = `SKU,Date,UnitsSold,OnHand,LeadTimeDays
A1,2025-06-13,2,10,5
A1,2025-06-14,2,10,5
A1,2025-06-15,2,10,5
B2,2025-06-14,0,40,3
B2,2025-06-15,0,40,3
`

func TestHealth(t *testing.T) {
	router := newTestRouter(t, false, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestRecommendations_Upload(t *testing.T) {
	router := newTestRouter(t, false, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "/api/v1/recommendations", sampleCSV, nil))

	require.Equal(t, http.StatusOK, w.Code)

	var recs []domain.Recommendation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &recs))
	require.Len(t, recs, 2)

	// RED sorts before GREEN.
	assert.Equal(t, "A1", recs[0].SKU)
	assert.Equal(t, domain.StatusRed, recs[0].Status)
	assert.Equal(t, "B2", recs[1].SKU)
	assert.Equal(t, domain.StatusGreen, recs[1].Status)
	assert.Nil(t, recs[1].ReorderBy)
}

func TestRecommendations_HorizonParam(t *testing.T) {
	router := newTestRouter(t, false, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "/api/v1/recommendations?horizon_days=10", sampleCSV, nil))

	require.Equal(t, http.StatusOK, w.Code)

	var recs []domain.Recommendation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &recs))
	require.Len(t, recs, 2)
	// avg daily sales 2 over a 10 day horizon
	assert.Equal(t, 20.0, recs[0].Forecast30d)
}

func TestRecommendations_MissingColumns(t *testing.T) {
	router := newTestRouter(t, false, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "/api/v1/recommendations", "SKU,Date\nA1,2025-06-15\n", nil))

	require.Equal(t, http.StatusBadRequest, w.Code)

	var body struct {
		Error          string   `json:"error"`
		MissingColumns []string `json:"missing_columns"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []string{"UnitsSold", "OnHand", "LeadTimeDays"}, body.MissingColumns)
}

func TestRecommendations_FileRequired(t *testing.T) {
	router := newTestRouter(t, false, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/recommendations", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ----- authenticated variant -----

const (
	testKid    = "api-test-key"
	testIssuer = "https://issuer.example.com"
)

func newAuthFixtures(t *testing.T) (*auth.Verifier, string) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	eBytes := []byte{byte(key.E >> 16), byte(key.E >> 8), byte(key.E)}
	doc := map[string]interface{}{
		"keys": []map[string]string{{
			"kty": "RSA",
			"kid": testKid,
			"n":   base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(eBytes),
		}},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(doc))
	}))
	t.Cleanup(srv.Close)

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.RegisteredClaims{
		Issuer:    testIssuer,
		Subject:   "user_123",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	})
	token.Header["kid"] = testKid
	signed, err := token.SignedString(key)
	require.NoError(t, err)

	return auth.NewVerifier(srv.URL, testIssuer, time.Hour), signed
}

func TestRecommendations_AuthRequired(t *testing.T) {
	verifier, token := newAuthFixtures(t)
	router := newTestRouter(t, true, verifier)

	t.Run("no token", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, uploadRequest(t, "/api/v1/recommendations", sampleCSV, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("missing org header", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, uploadRequest(t, "/api/v1/recommendations", sampleCSV, map[string]string{
			"Authorization": "Bearer " + token,
		}))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, uploadRequest(t, "/api/v1/recommendations", sampleCSV, map[string]string{
			"Authorization": "Bearer not.a.token",
			"X-Org-Id":      "org_42",
		}))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, uploadRequest(t, "/api/v1/recommendations", sampleCSV, map[string]string{
			"Authorization": "Bearer " + token,
			"X-Org-Id":      "org_42",
		}))
		require.Equal(t, http.StatusOK, w.Code)

		var recs []domain.Recommendation
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &recs))
		assert.Len(t, recs, 2)
	})
}
