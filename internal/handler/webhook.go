package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"github.com/lozynskaa/CityScape-diplom-sub000/internal/dto"
	"github.com/lozynskaa/CityScape-diplom-sub000/internal/metrics"
	"github.com/lozynskaa/CityScape-diplom-sub000/internal/pay"
	"github.com/lozynskaa/CityScape-diplom-sub000/internal/service"
)

// WebhookHandler runs the same four-stage pipeline for every provider
// variant: verify, classify, apply, acknowledge. Verification failure
// short-circuits with 401 before anything can mutate.
type WebhookHandler struct {
	ledger service.LedgerService
}

func NewWebhookHandler(ledger service.LedgerService) *WebhookHandler {
	return &WebhookHandler{
		ledger: ledger,
	}
}

func (h *WebhookHandler) Handle(provider pay.Provider) echo.HandlerFunc {
	name := provider.Name()

	return func(c echo.Context) error {
		start := time.Now()
		metrics.WebhookEventsReceived.WithLabelValues(name).Inc()

		body, err := io.ReadAll(c.Request().Body)
		if err != nil {
			metrics.WebhookEventsRejected.WithLabelValues(name, "body").Inc()
			return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "unreadable body"})
		}

		verified, err := provider.Verify(c.Request().Header, body)
		if err != nil {
			metrics.WebhookEventsRejected.WithLabelValues(name, "signature").Inc()
			log.WithError(err).WithField("provider", name).Warn("webhook rejected")
			return c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "signature verification failed"})
		}

		ev, err := provider.Classify(verified)
		if err != nil {
			metrics.WebhookEventsRejected.WithLabelValues(name, "payload").Inc()
			log.WithError(err).WithField("provider", name).Warn("webhook payload not classifiable")
			return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "malformed payload"})
		}

		if ev != nil {
			if err := h.ledger.Apply(c.Request().Context(), ev); err != nil {
				// Transient persistence failure: a non-2xx makes the
				// provider redeliver, and the conditional updates keep the
				// redelivery safe.
				log.WithError(err).WithFields(log.Fields{
					"provider": name,
					"kind":     ev.Kind,
				}).Error("apply webhook event")
				return echo.NewHTTPError(http.StatusInternalServerError, "event not recorded")
			}
			metrics.WebhookEventsApplied.WithLabelValues(name, string(ev.Kind)).Inc()
		}

		metrics.WebhookProcessingDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

		if acker, ok := provider.(pay.Acknowledger); ok {
			return c.JSON(http.StatusOK, acker.Ack(ev))
		}
		return c.JSON(http.StatusOK, dto.AckResponse{Received: true})
	}
}
