package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turnaplay/teamreg/internal/domain"
)

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(InviteTransitions.WithLabelValues(InviteAccepted))
	RecordInviteTransition(InviteAccepted)
	assert.Equal(t, before+1, testutil.ToFloat64(InviteTransitions.WithLabelValues(InviteAccepted)))

	before = testutil.ToFloat64(DomainErrors.WithLabelValues(string(domain.KindCapacityExceeded)))
	RecordDomainError(domain.KindCapacityExceeded)
	assert.Equal(t, before+1, testutil.ToFloat64(DomainErrors.WithLabelValues(string(domain.KindCapacityExceeded))))

	before = testutil.ToFloat64(StatusRecomputeFailures)
	RecordRecomputeFailure()
	assert.Equal(t, before+1, testutil.ToFloat64(StatusRecomputeFailures))
}

func TestHandler(t *testing.T) {
	ObserveRequest(http.MethodGet, "/teams/{id}", "200", time.Now())

	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, "teamreg_http_request_duration_seconds"))
	assert.True(t, strings.Contains(body, `route="/teams/{id}"`))
}
