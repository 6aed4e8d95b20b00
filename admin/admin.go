// Package admin exposes pool health over HTTP as JSON, adapted from the
// teacher's http package's {code, data} JSON envelope convention.
package admin

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/bolt-go/bolt/internal/logger"
)

// ContentTypeJSON is the response Content-Type for every handler here.
const ContentTypeJSON = "application/json"

// envelope is the standard {code, data} response body, matching the
// teacher's http package convention.
type envelope struct {
	Code int         `json:"code"`
	Data interface{} `json:"data"`
}

// StatsSource supplies the values the /stats handler reports; pool.Manager
// implementations are expected to satisfy an adapter around this, kept
// minimal so admin does not need to import pool directly (avoiding a
// cycle: pool already depends on client and metrics).
type StatsSource interface {
	IdleCount() int
	InUseCount() int
}

// WriteData writes data wrapped in the standard envelope with code 0.
func WriteData(w http.ResponseWriter, data interface{}) {
	writeEnvelope(w, 0, data)
}

// WriteError writes err's message wrapped in the standard envelope with a
// non-zero code.
func WriteError(w http.ResponseWriter, code int, err error) {
	logger.Error(nil, "admin request failed", zap.Int("code", code), zap.Error(err))
	writeEnvelope(w, code, err.Error())
}

func writeEnvelope(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", ContentTypeJSON)
	if code != 0 {
		w.WriteHeader(http.StatusInternalServerError)
	}
	if err := json.NewEncoder(w).Encode(envelope{Code: code, Data: data}); err != nil {
		logger.Error(nil, "admin encode failed", zap.Error(err))
	}
}

// StatsHandler serves the pool's idle/in-use counts as JSON.
func StatsHandler(source StatsSource) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteData(w, map[string]int{
			"idle":   source.IdleCount(),
			"in_use": source.InUseCount(),
			"total":  source.IdleCount() + source.InUseCount(),
		})
	})
}

// VersionHandler serves a static version string, mirroring the teacher's
// WriteVersion convenience handler.
func VersionHandler(version string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteData(w, fmt.Sprintf("bolt-go %s", version))
	})
}
