package rest

import (
	"time"

	"github.com/Dhoini/course-marketplace/internal/api/rest/handlers"
	"github.com/Dhoini/course-marketplace/internal/api/rest/middleware"
	"github.com/Dhoini/course-marketplace/internal/metrics"
	"github.com/Dhoini/course-marketplace/internal/service"
	"github.com/Dhoini/course-marketplace/pkg/logger"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies сервисы и инфраструктура, нужные маршрутизатору
type Dependencies struct {
	Courses        service.CourseService
	Checkout       service.CheckoutService
	Enrollments    service.EnrollmentService
	Webhooks       service.WebhookService
	Verifier       handlers.EventVerifier
	TokenValidator middleware.TokenValidator
	Metrics        metrics.MarketplaceMetrics
	Registry       *prometheus.Registry
	HealthChecks   map[string]handlers.Pinger
	AllowedOrigins []string
}

// SetupRouter настраивает маршрутизатор Gin с маршрутами и middleware
func SetupRouter(deps Dependencies, log *logger.Logger) *gin.Engine {
	r := gin.New()

	r.Use(middleware.LoggerMiddleware(log))
	r.Use(gin.Recovery())
	r.Use(middleware.MetricsMiddleware(deps.Metrics))
	if len(deps.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     deps.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	health := handlers.NewHealthHandler(deps.HealthChecks)
	r.GET("/health", health.HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))

	// Вебхук не использует JWT: подлинность подтверждает подпись провайдера
	webhookHandler := handlers.NewWebhookHandler(deps.Verifier, deps.Webhooks, log)
	r.POST("/payments/provider/webhook", webhookHandler.HandleProviderWebhook)

	courseHandler := handlers.NewCourseHandler(deps.Courses, log)
	enrollmentHandler := handlers.NewEnrollmentHandler(deps.Checkout, log)
	userHandler := handlers.NewUserHandler(deps.Courses, deps.Enrollments, log)

	// Каталог публичный: просроченный токен не мешает просмотру
	r.GET("/courses", courseHandler.ListCourses)

	api := r.Group("/", middleware.Authenticate(deps.TokenValidator, log))
	{
		courses := api.Group("/courses")
		{
			courses.POST("", courseHandler.CreateCourse)
			courses.POST("/:courseId/enroll", enrollmentHandler.Enroll)
		}

		users := api.Group("/users/:userId")
		{
			users.GET("/courses", userHandler.ListTutorCourses)
			users.GET("/enrollments", userHandler.ListEnrollments)
		}
	}

	return r
}
