package handlers

import (
	"github.com/Dhoini/course-marketplace/internal/api/rest/middleware"
	"github.com/Dhoini/course-marketplace/internal/domain"
	"github.com/Dhoini/course-marketplace/internal/service"
	"github.com/Dhoini/course-marketplace/pkg/logger"
	"github.com/Dhoini/course-marketplace/pkg/req"
	"github.com/Dhoini/course-marketplace/pkg/res"
	"github.com/gin-gonic/gin"
)

// EnrollmentHandler обработчик записи на курс через оплату
type EnrollmentHandler struct {
	checkout service.CheckoutService
	log      *logger.Logger
}

// NewEnrollmentHandler создает новый обработчик записи
func NewEnrollmentHandler(checkout service.CheckoutService, log *logger.Logger) *EnrollmentHandler {
	return &EnrollmentHandler{
		checkout: checkout,
		log:      log,
	}
}

// Enroll создает сессию оплаты курса для студента
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	caller := middleware.CallerFrom(c)
	if !caller.Is(domain.RoleStudent) {
		res.Error(c, domain.Forbidden("User not authenticated or not a student"), h.log)
		return
	}

	// Тело необязательно: без URL используются адреса по умолчанию
	body, err := req.Bind[enrollRequest](c, true)
	if err != nil {
		res.Error(c, domain.BadRequest("Invalid request body"), h.log)
		return
	}
	if err := req.IsValid(body); err != nil {
		res.Error(c, domain.BadRequest(req.Describe(err)), h.log)
		return
	}

	session, err := h.checkout.InitiateEnrollment(c.Request.Context(), caller, c.Param("courseId"), body.SuccessURL, body.CancelURL)
	if err != nil {
		res.Error(c, err, h.log)
		return
	}

	res.Created(c, "Payment session created successfully", session)
}
