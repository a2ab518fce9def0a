// Package observability provides OpenTelemetry tracing and metrics for the
// transcription pipeline.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("scribe"))
//	defer tp.Shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, observability.SpanChunkTranscribe)
//	defer span.End()
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("scribe"))
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(observability.Meter("scribe"))
//	metrics.RecordJob(ctx, "youtube", "completed", elapsed)
//
// A nil *Metrics is valid and records nothing.
package observability
