package service

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/sakif/symvora/internal/apperror"
	"github.com/sakif/symvora/internal/diagnosis"
	"github.com/sakif/symvora/internal/validation"
)

// DiagnosisService validates a symptom description and forwards it to the
// configured model. It keeps no record of the request; history lives on
// the client.
type DiagnosisService struct {
	diagnoser diagnosis.Diagnoser
	logger    *slog.Logger
}

// NewDiagnosisService wires a DiagnosisService.
func NewDiagnosisService(d diagnosis.Diagnoser, logger *slog.Logger) *DiagnosisService {
	return &DiagnosisService{diagnoser: d, logger: logger}
}

// Analyze returns the model's advice for symptoms. Blank input is
// ErrValidation; any model failure is ErrUpstream carrying the failure
// text, which the client then shows as "Error: <text>".
func (s *DiagnosisService) Analyze(ctx context.Context, userID, symptoms string) (string, error) {
	if err := validation.Symptoms(symptoms); err != nil {
		return "", err
	}
	symptoms = strings.TrimSpace(symptoms)

	start := time.Now()
	advice, err := s.diagnoser.Diagnose(ctx, symptoms)
	if err != nil {
		s.logger.Warn("diagnosis failed",
			slog.String("userID", userID),
			slog.Duration("elapsed", time.Since(start)),
			slog.String("error", err.Error()),
		)
		return "", apperror.Upstream(upstreamMessage(err), err)
	}

	s.logger.Info("diagnosis completed",
		slog.String("userID", userID),
		slog.Int("symptomsLength", len(symptoms)),
		slog.Duration("elapsed", time.Since(start)),
	)
	return advice, nil
}

func upstreamMessage(err error) string {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return "timeout"
	case errors.Is(err, diagnosis.ErrEmptyResponse):
		return "No response from the model"
	default:
		return apperror.MessageOf(err)
	}
}
