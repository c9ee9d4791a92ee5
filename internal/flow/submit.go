package flow

import (
	"context"
	"log/slog"
	"strings"

	"github.com/sakif/symvora/internal/apperror"
	"github.com/sakif/symvora/internal/navigation"
	"github.com/sakif/symvora/internal/validation"
)

// Submit starts one symptom check and returns without waiting for it.
//
// Blank text is rejected before anything else happens. Otherwise the
// controller shows AnalyzingText, sets Loading, and asks the diagnoser on
// a separate goroutine. When the answer (or the failure) comes back, the
// loop replaces the result text, stores exactly one history entry, clears
// Loading and publishes the text as a NoticeResult notification.
func (c *Controller) Submit(symptoms string) error {
	if err := validation.Symptoms(symptoms); err != nil {
		c.notify(NoticeError, apperror.MessageOf(err))
		return err
	}

	var result error
	err := c.do(func() {
		st := c.Snapshot()
		if st.Screen != navigation.Symptoms {
			result = apperror.Forbidden("Symptom checks are only available on the Symptoms screen")
			return
		}
		if st.Loading {
			result = ErrBusy
			return
		}

		c.update(func(s *State) {
			s.Loading = true
			s.Result = AnalyzingText
		})

		c.wg.Add(1)
		go c.diagnose(c.runCtx, symptoms)
	})
	if err != nil {
		return err
	}
	return result
}

// diagnose runs off the loop and hands the outcome back to it.
func (c *Controller) diagnose(ctx context.Context, symptoms string) {
	defer c.wg.Done()

	advice, err := c.diag.Diagnose(ctx, symptoms)
	if ctx.Err() != nil {
		c.logger.Debug("diagnosis result dropped", slog.String("reason", "controller stopping"))
		return
	}

	if doErr := c.do(func() { c.applyDiagnosis(symptoms, advice, err) }); doErr != nil {
		c.logger.Debug("diagnosis result dropped", slog.String("reason", doErr.Error()))
	}
}

// applyDiagnosis records the outcome of one submission. Loop goroutine only.
func (c *Controller) applyDiagnosis(symptoms, advice string, err error) {
	if err != nil {
		msg := strings.TrimSpace(apperror.MessageOf(err))
		if msg == "" {
			msg = "unknown error"
		}
		text := "Error: " + msg

		c.history.AddEntry(symptoms, text)
		c.update(func(s *State) {
			s.Result = text
			s.Loading = false
		})
		c.logger.Warn("symptom check failed", slog.String("error", err.Error()))
		c.notify(NoticeError, "Error analyzing symptoms: "+msg)
		c.notify(NoticeResult, text)
		return
	}

	c.history.AddEntry(symptoms, advice)
	c.update(func(s *State) {
		s.Result = advice
		s.Loading = false
	})
	c.logger.Info("symptom check completed", slog.Int("responseLength", len(advice)))
	c.notify(NoticeInfo, "Symptoms analyzed and saved to history")
	c.notify(NoticeResult, advice)
}
