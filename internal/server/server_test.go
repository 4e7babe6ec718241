package server

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/voice-biomarker/internal/analysis"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	engine := analysis.NewAnalysisEngine(&analysis.EngineConfig{
		SampleRate:     22050,
		EnableConcepts: true,
	})
	return New(Config{
		Address: ":0",
		Engine:  engine,
	})
}

// encodeTestWAV builds a 16-bit PCM WAV of a 200Hz tone
func encodeTestWAV(seconds float64, sampleRate int) []byte {
	n := int(seconds * float64(sampleRate))
	var pcm bytes.Buffer
	for i := 0; i < n; i++ {
		v := int16(0.6 * 32767 * math.Sin(2*math.Pi*200*float64(i)/float64(sampleRate)))
		binary.Write(&pcm, binary.LittleEndian, v)
	}

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+pcm.Len()))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*2))
	binary.Write(&buf, binary.LittleEndian, uint16(2))
	binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(pcm.Len()))
	buf.Write(pcm.Bytes())
	return buf.Bytes()
}

func postAnalyze(t *testing.T, srv *Server, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Status            string `json:"status"`
		ClassifierTrained bool   `json:"classifier_trained"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.False(t, resp.ClassifierTrained, "classifier trains lazily")
}

func TestAnalyzeEndpoint(t *testing.T) {
	srv := testServer(t)

	wav := encodeTestWAV(2.0, 22050)
	rec := postAnalyze(t, srv, map[string]string{
		"audio": base64.StdEncoding.EncodeToString(wav),
	})

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success  bool `json:"success"`
		Analysis struct {
			RiskScore float64 `json:"risk_score"`
			Features  struct {
				PitchMean float64 `json:"pitch_mean"`
			} `json:"features"`
			Metrics struct {
				Trend string `json:"trend"`
			} `json:"metrics"`
			ClinicalConcepts map[string]float64 `json:"clinical_concepts"`
		} `json:"analysis"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.True(t, resp.Success)
	assert.GreaterOrEqual(t, resp.Analysis.RiskScore, 0.0)
	assert.LessOrEqual(t, resp.Analysis.RiskScore, 1.0)
	assert.InDelta(t, 200, resp.Analysis.Features.PitchMean, 10)
	assert.NotEmpty(t, resp.Analysis.Metrics.Trend)
	assert.NotEmpty(t, resp.Analysis.ClinicalConcepts)
}

func TestAnalyzeEndpointAcceptsDataURL(t *testing.T) {
	srv := testServer(t)

	wav := encodeTestWAV(1.0, 22050)
	rec := postAnalyze(t, srv, map[string]string{
		"audio": "data:audio/wav;base64," + base64.StdEncoding.EncodeToString(wav),
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAnalyzeEndpointMissingAudio(t *testing.T) {
	srv := testServer(t)

	rec := postAnalyze(t, srv, map[string]string{})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "no audio data provided", resp.Error)
}

func TestAnalyzeEndpointMalformedJSON(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/analyze",
		bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeEndpointBadBase64(t *testing.T) {
	srv := testServer(t)

	rec := postAnalyze(t, srv, map[string]string{"audio": "!!!not-base64!!!"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeEndpointNotAWAV(t *testing.T) {
	srv := testServer(t)

	rec := postAnalyze(t, srv, map[string]string{
		"audio": base64.StdEncoding.EncodeToString([]byte("just some plain bytes here")),
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnknownRoute(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/nope", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAnalyzeMethodNotAllowed(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/analyze", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
