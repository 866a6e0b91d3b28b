package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formwizard/pkg/wizard"
)

func TestHooksRecordEvents(t *testing.T) {
	m := New()
	hooks := m.Hooks()

	hooks.OnStepChange(0, 1)
	hooks.OnStepChange(0, 1)
	hooks.OnValidationFailed(&wizard.ValidationError{Step: 1})
	hooks.OnSubmit(wizard.Submission{})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.StepTransitions.WithLabelValues("0", "1")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ValidationFailures.WithLabelValues("1")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Submissions))
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.Sessions.Inc()

	instrumented := m.Instrument(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	instrumented.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "formwizard_sessions_started_total 1"), body)
	assert.Contains(t, body, `formwizard_http_requests_total{code="418",method="get"} 1`)
}
