package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestCanonicalPath(t *testing.T) {
	require.Equal(t, "/api/prices", canonicalPath("/api/prices"))
	require.Equal(t, "/api/prices/:token", canonicalPath("/api/prices/eth"))
	require.Equal(t, "other", canonicalPath("/wp-admin"))
}

func TestRecorders(t *testing.T) {
	before := testutil.ToFloat64(upstreamFetches.WithLabelValues("celo", "timeout"))
	RecordUpstreamFetch("celo", "timeout", 10*time.Second)
	require.Equal(t, before+1, testutil.ToFloat64(upstreamFetches.WithLabelValues("celo", "timeout")))

	RecordCacheLookup("celo", true)
	RecordHTTPRequest(http.MethodGet, "/api/prices/celo", 0, time.Millisecond)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.Contains(rec.Body.String(), "tokenprices_cache_lookups_total"))
}
