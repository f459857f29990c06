package handlers

import (
	"github.com/Dhoini/course-marketplace/internal/api/rest/middleware"
	"github.com/Dhoini/course-marketplace/internal/service"
	"github.com/Dhoini/course-marketplace/pkg/logger"
	"github.com/Dhoini/course-marketplace/pkg/res"
	"github.com/gin-gonic/gin"
)

// UserHandler обработчик данных конкретного пользователя
type UserHandler struct {
	courses     service.CourseService
	enrollments service.EnrollmentService
	log         *logger.Logger
}

// NewUserHandler создает новый обработчик пользователя
func NewUserHandler(courses service.CourseService, enrollments service.EnrollmentService, log *logger.Logger) *UserHandler {
	return &UserHandler{
		courses:     courses,
		enrollments: enrollments,
		log:         log,
	}
}

// ListTutorCourses возвращает курсы преподавателя; доступно только ему самому
func (h *UserHandler) ListTutorCourses(c *gin.Context) {
	courses, err := h.courses.ListCoursesByTutor(c.Request.Context(), middleware.CallerFrom(c), c.Param("userId"))
	if err != nil {
		res.Error(c, err, h.log)
		return
	}
	res.OK(c, "Courses retrieved successfully", toCourseResponses(courses))
}

// ListEnrollments возвращает курсы, на которые записан студент
func (h *UserHandler) ListEnrollments(c *gin.Context) {
	courses, err := h.enrollments.ListEnrollments(c.Request.Context(), middleware.CallerFrom(c), c.Param("userId"))
	if err != nil {
		res.Error(c, err, h.log)
		return
	}
	res.OK(c, "Enrolled courses retrieved successfully", toCourseResponses(courses))
}
