package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/quizroom-backend/internal/config"
	"github.com/stemsi/quizroom-backend/internal/handler"
	"github.com/stemsi/quizroom-backend/internal/logger"
	"github.com/stemsi/quizroom-backend/internal/middleware"
	"github.com/stemsi/quizroom-backend/internal/response"
	"github.com/stemsi/quizroom-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth     *handler.AuthHandler
	User     *handler.UserHandler
	Question *handler.QuestionHandler
	Quiz     *handler.QuizHandler
	Room     *handler.RoomHandler
	Health   *handler.HealthHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
	log zerolog.Logger,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	// Cookies are only sent cross-origin when origins are listed.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
		corsConfig.AllowCredentials = true
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(response.RequestIDMiddleware())
	router.Use(logger.GinMiddleware(log, response.ContextKeyRequestID))
	router.Use(middleware.Brotli())

	router.GET("/health", handlers.Health.Health)

	requireAuth := middleware.RequireAuth(authService, log)
	authLimiter := middleware.NewRateLimiter(cfg.AuthRateLimitPerMinute, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/register", authLimiter.Middleware(), handlers.Auth.Register)
		auth.POST("/login", authLimiter.Middleware(), handlers.Auth.Login)

		auth.POST("/logout", requireAuth, handlers.Auth.Logout)
		auth.GET("/me", requireAuth, handlers.Auth.Me)
	}

	api := router.Group("/api/v1")
	api.Use(requireAuth)

	// ─── 2. Users ──────────────────────────────────────────────────────
	users := api.Group("/users")
	{
		users.GET("", handlers.User.ListUsers)
		users.GET("/me/rooms", handlers.User.MyRooms)
	}

	// ─── 3. Question Bank ──────────────────────────────────────────────
	questions := api.Group("/questions")
	{
		questions.POST("", handlers.Question.CreateQuestion)
		questions.GET("", handlers.Question.ListQuestions)
		questions.GET("/:id", middleware.CacheControl(60), handlers.Question.GetQuestion)
	}

	// ─── 4. Individual Quiz ────────────────────────────────────────────
	quiz := api.Group("/quiz")
	quiz.Use(middleware.NoStore())
	{
		quiz.GET("/start", handlers.Quiz.StartQuiz)
		quiz.POST("/submit", handlers.Quiz.SubmitQuiz)
		quiz.GET("/results", handlers.Quiz.ListResults)
	}

	// ─── 5. Rooms ──────────────────────────────────────────────────────
	rooms := api.Group("/rooms")
	rooms.Use(middleware.NoStore())
	{
		rooms.GET("", handlers.Room.ListRooms)
		rooms.POST("", handlers.Room.CreateRoom)
		rooms.GET("/:id", handlers.Room.GetRoom)
		rooms.DELETE("/:id", handlers.Room.DeleteRoom)
		rooms.GET("/:id/leaderboard", handlers.Room.Leaderboard)

		rooms.POST("/:id/join", handlers.Room.JoinRoom)
		rooms.POST("/:id/start", handlers.Room.StartRoom)
		rooms.POST("/:id/restart", handlers.Room.RestartRoom)
		rooms.POST("/:id/finish", handlers.Room.FinishRoom)
		rooms.POST("/:id/submit", handlers.Room.SubmitAnswers)
	}

	return router
}
