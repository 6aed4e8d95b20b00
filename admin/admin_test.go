package admin_test

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bolt-go/bolt/admin"
)

type fakeStats struct {
	idle, inUse int
}

func (f fakeStats) IdleCount() int  { return f.idle }
func (f fakeStats) InUseCount() int { return f.inUse }

func TestStatsHandlerReportsCounts(t *testing.T) {
	h := admin.StatsHandler(fakeStats{idle: 3, inUse: 2})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/stats", nil))

	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		Code int `json:"code"`
		Data map[string]int `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 0, body.Code)
	require.Equal(t, 3, body.Data["idle"])
	require.Equal(t, 2, body.Data["in_use"])
	require.Equal(t, 5, body.Data["total"])
}

func TestVersionHandlerReportsVersion(t *testing.T) {
	h := admin.VersionHandler("0.1.0")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/version", nil))

	var body struct {
		Data string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Contains(t, body.Data, "0.1.0")
}
