package notify

import (
	"context"
	"fmt"

	apperrors "github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/logger"
	"github.com/kbukum/scribe/observability"
)

// Alerter reports operator-worthy errors exactly once per error chain.
type Alerter struct {
	sinks   []AlertSink
	metrics *observability.Metrics
	log     *logger.Logger
}

// NewAlerter creates an Alerter. metrics may be nil.
func NewAlerter(sinks []AlertSink, metrics *observability.Metrics, log *logger.Logger) *Alerter {
	return &Alerter{sinks: sinks, metrics: metrics, log: log.WithComponent("notify.alerter")}
}

// ReportOnce alerts err unless it is a client error or was already
// reported, and returns err marked as reported. where names the failing
// operation.
func (a *Alerter) ReportOnce(ctx context.Context, err error, where string) error {
	if !apperrors.ShouldAlert(err) {
		return err
	}
	code := string(apperrors.ErrCodeInternal)
	if appErr, ok := apperrors.AsAppError(err); ok {
		code = string(appErr.Code)
	}
	message := fmt.Sprintf("The error: %s, in %s", err.Error(), where)

	log := a.log.WithContext(ctx)
	log.Error("alert", logger.Fields(
		logger.FieldOperation, where,
		"code", code,
		logger.FieldError, err.Error(),
	))
	for _, s := range a.sinks {
		if sErr := s.Alert(ctx, message); sErr != nil {
			log.Warn("alert delivery failed", logger.Fields(logger.FieldError, sErr.Error()))
		}
	}
	a.metrics.RecordAlert(ctx, code)
	return apperrors.MarkReported(err)
}
