package handlers

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"FormKeeper/internal/config"
	"FormKeeper/internal/middleware"
	"FormKeeper/internal/service"
)

type Handler struct {
	Router chi.Router
}

// NewHandler разводящий для хендлеров
func NewHandler(
	userService *service.UserService,
	submissionService *service.SubmissionService,
	logger *zap.SugaredLogger,
	config *config.Config,
) *Handler {
	r := chi.NewRouter()

	r.Use(middleware.WithGzip)
	r.Use(middleware.WithLogging)
	r.Use(middleware.WithAuth(config.AuthSecret))

	// Handlers
	userHandler := NewUserHandler(userService, logger, config)
	submissionHandler := NewSubmissionHandler(submissionService, userService, logger, config)

	// User routes
	r.Post("/api/user/register", userHandler.Register)
	r.Post("/api/user/login", userHandler.Login)
	r.Get("/login/key", userHandler.AccessKey)

	// Submission routes: сессионная cookie либо ключ доступа в пути
	r.Post("/submission", submissionHandler.Receive)
	r.Post("/submission/key/{accessKey}", submissionHandler.Receive)
	r.Post("/submission/key/{accessKey}/{editTargetID}", submissionHandler.Receive)
	r.Post("/submission/{editTargetID}", submissionHandler.Receive)

	r.Get("/api/submissions", submissionHandler.List)

	return &Handler{Router: r}
}
