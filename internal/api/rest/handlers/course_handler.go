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

// CourseHandler обработчик каталога курсов
type CourseHandler struct {
	service service.CourseService
	log     *logger.Logger
}

// NewCourseHandler создает новый обработчик курсов
func NewCourseHandler(svc service.CourseService, log *logger.Logger) *CourseHandler {
	return &CourseHandler{
		service: svc,
		log:     log,
	}
}

// ListCourses возвращает все курсы
func (h *CourseHandler) ListCourses(c *gin.Context) {
	courses, err := h.service.ListCourses(c.Request.Context())
	if err != nil {
		res.Error(c, err, h.log)
		return
	}

	h.log.Debugw("Returned courses", "count", len(courses))
	res.OK(c, "Courses retrieved successfully", toCourseResponses(courses))
}

// CreateCourse создает курс от имени преподавателя
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	caller := middleware.CallerFrom(c)
	// Роль проверяется до разбора тела, чтобы чужой запрос получил 403
	if !caller.Is(domain.RoleTutor) {
		res.Error(c, domain.Forbidden("Unauthorized"), h.log)
		return
	}

	body, err := req.Bind[createCourseRequest](c, false)
	if err != nil {
		h.log.Warnw("Invalid course payload", "error", err)
		res.Error(c, domain.BadRequest("Invalid request body"), h.log)
		return
	}

	course, err := h.service.CreateCourse(c.Request.Context(), caller, body.toDomain())
	if err != nil {
		res.Error(c, err, h.log)
		return
	}

	res.Created(c, "Course created successfully", toCourseResponse(course))
}
