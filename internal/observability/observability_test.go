package observability

import (
	"context"
	"errors"
	"testing"

	"docvault/internal/models"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestOutcome(t *testing.T) {
	assert.Equal(t, "ok", Outcome(nil))
	assert.Equal(t, models.CodePendingApproval, Outcome(models.NewForbiddenError(models.CodePendingApproval, "wait")))
	assert.Equal(t, models.CodeInternal, Outcome(errors.New("boom")))
}

func TestTrackQuery(t *testing.T) {
	before := testutil.CollectAndCount(DatabaseQueryLatency)
	TrackQuery("observability_test", "nothing")()
	assert.Equal(t, before+1, testutil.CollectAndCount(DatabaseQueryLatency))
}

func TestNewSpan_RecordsError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := Tracer
	Tracer = provider.Tracer("test")
	t.Cleanup(func() { Tracer = previous })

	span, ctx := NewSpan(context.Background(), "RegistrationService.Decide", attribute.String("registration.id", "req-1"))
	require.NotNil(t, ctx)
	assert.NotEmpty(t, span.TraceID())
	span.SetError(nil)
	span.SetError(errors.New("boom"))
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "RegistrationService.Decide", ended[0].Name())
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Contains(t, ended[0].Attributes(), attribute.String("registration.id", "req-1"))
}

func TestInitTracing_Disabled(t *testing.T) {
	shutdown, err := InitTracing(TracingConfig{ServiceName: "docvault-test"})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
