package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/mocktracer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/customeros/docingest/internal/logger"
	"github.com/customeros/docingest/internal/utils"
)

func TestSetDefaultServiceSpanTags(t *testing.T) {
	tracer := mocktracer.New()
	span := tracer.StartSpan("test")

	ctx := utils.WithRunContext(context.Background(), "org-1", "cfg-1", "run-1")
	SetDefaultServiceSpanTags(ctx, span)
	span.Finish()

	finished := tracer.FinishedSpans()
	require.Len(t, finished, 1)
	tags := finished[0].Tags()
	assert.Equal(t, "org-1", tags[SpanTagOrganization])
	assert.Equal(t, "cfg-1", tags[SpanTagConfiguration])
	assert.Equal(t, "run-1", tags[SpanTagRunId])
	assert.Equal(t, SpanTagComponentService, tags[SpanTagComponent])
}

func TestTraceErr(t *testing.T) {
	tracer := mocktracer.New()
	span := tracer.StartSpan("test")

	TraceErr(span, errors.New("boom"))
	TraceErr(span, nil)
	TraceErr(nil, errors.New("ignored"))
	span.Finish()

	finished := tracer.FinishedSpans()
	require.Len(t, finished, 1)
	assert.Equal(t, true, finished[0].Tags()["error"])
	assert.Len(t, finished[0].Logs(), 1)
}

func TestRecoverAndLogToJaeger(t *testing.T) {
	tracer := mocktracer.New()
	previous := opentracing.GlobalTracer()
	opentracing.SetGlobalTracer(tracer)
	defer opentracing.SetGlobalTracer(previous)

	func() {
		defer RecoverAndLogToJaeger(logger.NewNopLogger())
		panic("job exploded")
	}()

	finished := tracer.FinishedSpans()
	require.Len(t, finished, 1)
	assert.Equal(t, "panic-recovery", finished[0].OperationName)
}

func TestRecoverAndReport(t *testing.T) {
	tracer := mocktracer.New()
	previous := opentracing.GlobalTracer()
	opentracing.SetGlobalTracer(tracer)
	defer opentracing.SetGlobalTracer(previous)

	var reported any
	func() {
		defer RecoverAndReport(logger.NewNopLogger(), func(recovered any) {
			reported = recovered
		})
		panic("run exploded")
	}()

	assert.Equal(t, "run exploded", reported)
	require.Len(t, tracer.FinishedSpans(), 1)

	called := false
	func() {
		defer RecoverAndReport(logger.NewNopLogger(), func(any) { called = true })
	}()
	assert.False(t, called)
}
