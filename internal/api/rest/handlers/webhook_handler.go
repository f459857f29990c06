package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/Dhoini/course-marketplace/internal/domain"
	"github.com/Dhoini/course-marketplace/internal/service"
	"github.com/Dhoini/course-marketplace/pkg/logger"
	"github.com/Dhoini/course-marketplace/pkg/res"
	"github.com/gin-gonic/gin"
)

// MaxWebhookBodyBytes предельный размер тела вебхука
const MaxWebhookBodyBytes = 65536

// SignatureHeader заголовок с подписью Stripe
const SignatureHeader = "Stripe-Signature"

// EventVerifier проверяет подпись и разбирает событие провайдера
type EventVerifier interface {
	Verify(payload []byte, sigHeader string) (domain.ProviderEvent, error)
}

// WebhookHandler обработчик вебхуков платежного провайдера
type WebhookHandler struct {
	verifier EventVerifier
	service  service.WebhookService
	log      *logger.Logger
}

// NewWebhookHandler создает новый обработчик вебхуков
func NewWebhookHandler(verifier EventVerifier, svc service.WebhookService, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		verifier: verifier,
		service:  svc,
		log:      log,
	}
}

// HandleProviderWebhook обрабатывает POST /payments/provider/webhook
func (h *WebhookHandler) HandleProviderWebhook(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxWebhookBodyBytes)
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.log.Warnw("Webhook body too large", "limit", tooLarge.Limit)
		}
		res.Error(c, domain.BadRequest("Webhook Error: "+err.Error()), h.log)
		return
	}

	event, err := h.verifier.Verify(payload, c.GetHeader(SignatureHeader))
	if err != nil {
		res.Error(c, err, h.log)
		return
	}

	outcome, err := h.service.HandleEvent(c.Request.Context(), event)
	if err != nil {
		res.Error(c, err, h.log)
		return
	}

	if outcome == domain.WebhookOutcomeIgnored {
		res.OK(c, "Unhandled event type", gin.H{})
		return
	}
	res.OK(c, "Webhook handled successfully", gin.H{})
}
