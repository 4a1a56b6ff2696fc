package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appsvc "todo-api/internal/app"
	"todo-api/internal/bootstrap"
	"todo-api/internal/repository"
	"todo-api/internal/transport/http/handler"
	"todo-api/internal/transport/http/middleware"
	"todo-api/internal/transport/http/response"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.Logger(app.Logger),
		middleware.Recovery(app.Logger),
		middleware.SecureHeaders(app.Config.IsDevelopment()),
		middleware.CORS(app.Config.CORS.AllowedOrigins),
		middleware.ErrorHandler(app.Logger),
	)

	userRepo := repository.NewUserRepository(app.DB)
	todoRepo := repository.NewTodoRepository(app.DB)
	authService := appsvc.NewAuthService(
		userRepo,
		todoRepo,
		app.Config.Auth.JWTSecret,
		app.Config.JWTExpiration(),
		app.Config.Auth.BcryptCost,
	)
	todoService := appsvc.NewTodoService(todoRepo)

	healthHandler := handler.NewHealthHandler(app)
	authHandler := handler.NewAuthHandler(authService)
	todoHandler := handler.NewTodoHandler(todoService)

	router.GET("/health", healthHandler.Check)

	api := router.Group("/api")
	authGroup := api.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/me", middleware.AuthJWT(authService), authHandler.Me)

	todoGroup := api.Group("/todos")
	todoGroup.Use(middleware.AuthJWT(authService))
	todoGroup.GET("", todoHandler.List)
	todoGroup.POST("", todoHandler.Create)
	todoGroup.GET("/:id", todoHandler.Get)
	todoGroup.PUT("/:id", todoHandler.Update)
	todoGroup.DELETE("/:id", todoHandler.Delete)

	router.NoRoute(func(c *gin.Context) {
		response.Error(c, http.StatusNotFound, "Route not found", nil)
	})

	return router
}
