package skate

import (
	"context"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"
)

const httpEvalTimeout = 30 * time.Second

// HTTPHandler serves the same ops as the socket protocol:
//
//	POST /eval     body is the expression text, or {"expr": "..."} as JSON
//	GET  /env      every binding
//	GET  /traces   recent traces; ?n= limits the count
//
// Responses carry the socket protocol's response object as JSON.
func (s *Server) HTTPHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/eval", s.httpEval)
	mux.HandleFunc("/env", s.httpEnv)
	mux.HandleFunc("/traces", s.httpTraces)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, http.StatusOK, manual(""))
	})
	return mux
}

func (s *Server) httpEval(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxMsgSize))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	expr := string(body)
	if isJSON(r) {
		var req struct {
			Expr string `json:"expr"`
		}
		if err := json.Unmarshal(body, &req); err != nil {
			http.Error(w, "invalid JSON body", http.StatusBadRequest)
			return
		}
		expr = req.Expr
	}

	ctx, cancel := context.WithTimeout(r.Context(), httpEvalTimeout)
	defer cancel()
	resp := s.HandleRequest(ctx, map[string]any{"op": "eval", "expr": expr})
	writeJSON(w, statusFor(resp), resp)
}

func (s *Server) httpEnv(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	resp := s.HandleRequest(r.Context(), map[string]any{"op": "env"})
	writeJSON(w, statusFor(resp), resp)
}

func (s *Server) httpTraces(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	msg := map[string]any{"op": "traces"}
	if raw := r.URL.Query().Get("n"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "n must be an integer", http.StatusBadRequest)
			return
		}
		msg["n"] = float64(n)
	}
	resp := s.HandleRequest(r.Context(), msg)
	writeJSON(w, statusFor(resp), resp)
}

// isJSON reports whether the request body is declared as JSON, parameters
// such as charset included.
func isJSON(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}

// statusFor maps failed requests, evaluation errors included, to 422.
func statusFor(resp map[string]any) int {
	if ok, _ := resp["ok"].(bool); ok {
		return http.StatusOK
	}
	return http.StatusUnprocessableEntity
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
