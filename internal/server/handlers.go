package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/RyanBlaney/voice-biomarker/internal/analysis"
	"github.com/RyanBlaney/voice-biomarker/pkg/audio"
	"github.com/RyanBlaney/voice-biomarker/pkg/logging"
)

// analyzeRequest is the JSON payload for POST /api/analyze. Audio is a
// base64-encoded WAV, optionally prefixed as a data URL.
type analyzeRequest struct {
	Audio string `json:"audio"`
}

type analyzeResponse struct {
	Success  bool                     `json:"success"`
	Analysis *analysis.AnalysisResult `json:"analysis,omitempty"`
	Error    string                   `json:"error,omitempty"`
}

type healthResponse struct {
	Status            string `json:"status"`
	ClassifierTrained bool   `json:"classifier_trained"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Audio == "" {
		s.writeJSON(w, http.StatusBadRequest, analyzeResponse{
			Success: false,
			Error:   "no audio data provided",
		})
		return
	}

	// Browsers send data URLs; strip the prefix
	payload := req.Audio
	if idx := strings.IndexByte(payload, ','); idx >= 0 {
		payload = payload[idx+1:]
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, analyzeResponse{
			Success: false,
			Error:   "invalid base64 audio payload",
		})
		return
	}

	data, err := audio.DecodeWAV(bytes.NewReader(raw))
	if err != nil {
		s.logger.Error(err, "Audio decode failed")
		s.writeJSON(w, http.StatusBadRequest, analyzeResponse{
			Success: false,
			Error:   "could not decode audio: " + err.Error(),
		})
		return
	}

	result, err := s.engine.Analyze(r.Context(), data.PCM, data.SampleRate)
	if err != nil {
		s.logger.Error(err, "Analysis failed", logging.Fields{
			"samples":     len(data.PCM),
			"sample_rate": data.SampleRate,
		})
		s.writeJSON(w, http.StatusInternalServerError, analyzeResponse{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	s.writeJSON(w, http.StatusOK, analyzeResponse{
		Success:  true,
		Analysis: result,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, healthResponse{
		Status:            "healthy",
		ClassifierTrained: s.engine.Healthy(),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error(err, "Failed to encode response")
	}
}
