package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/skillcap/assessment-api/config"
	"github.com/skillcap/assessment-api/database"
	adminctrl "github.com/skillcap/assessment-api/internal/controller/admin"
	userctrl "github.com/skillcap/assessment-api/internal/controller/user"
	"github.com/skillcap/assessment-api/internal/logger"
	"github.com/skillcap/assessment-api/internal/model"
	"github.com/skillcap/assessment-api/internal/repository"
	"github.com/skillcap/assessment-api/internal/service"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// @title Skill Assessment API
// @version 1.0
// @description API for skill assessments: MCQ attempts with server-side scoring, AI question generation, and progress tracking.
// @host localhost:8080
// @BasePath /api
// @schemes http https
func main() {
	logger.Init()

	app := fx.New(
		fx.Provide(
			config.NewConfig,
			database.NewDatabase,
			NewGinEngine,
		),

		fx.Provide(
			repository.NewCourseRepository,
			repository.NewAssessmentRepository,
			repository.NewQuestionRepository,
			repository.NewAttemptRepository,
			repository.NewResponseRepository,
			repository.NewResultRepository,
		),

		fx.Provide(
			service.NewScorerService,
			service.NewGeminiLLMService,
			service.NewResultService,
			service.NewAttemptService,
			service.NewAssessmentService,
			service.NewAdminAssessmentService,
			service.NewProgressService,
		),

		fx.Provide(
			userctrl.NewDashboardController,
			adminctrl.NewAdminAssessmentController,
		),

		fx.Invoke(RegisterRoutesAndStartServer),
		fx.Invoke(AutoMigrateDB),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")
}

func NewGinEngine() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("user_agent", param.Request.UserAgent()).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return ""
	}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Swagger UI at /swagger/index.html
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// RegisterRoutesAndStartServer configures API routes and manages the server
// lifecycle through fx hooks.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	dashboardCtrl *userctrl.DashboardController,
	adminCtrl *adminctrl.AdminAssessmentController,
) {
	api := router.Group("/api")
	{
		api.GET("/getAssessments", dashboardCtrl.GetAssessments)
		api.GET("/assessments/by_course/:course", dashboardCtrl.GetAssessmentsByCourse)
		api.GET("/assessments/:id/questions", dashboardCtrl.GetAssessmentQuestions)
		api.POST("/startAssessment", dashboardCtrl.StartAssessment)
		api.POST("/submitAssessment", dashboardCtrl.SubmitAssessment)
		api.GET("/attempts/:id/result", dashboardCtrl.GetAttemptResult)
		api.POST("/attempts/:id/cancel", dashboardCtrl.CancelAttempt)
		api.GET("/getProgress", dashboardCtrl.GetProgress)
	}

	adminAPI := router.Group("/api/admin")
	{
		adminAPI.POST("/assessments", adminCtrl.CreateAssessment)
		adminAPI.GET("/assessments/stats", adminCtrl.GetStats)
		adminAPI.GET("/assessments/:id", adminCtrl.GetAssessment)
		adminAPI.POST("/assessments/:id/generate", adminCtrl.GenerateQuestions)
		adminAPI.POST("/assessments/:id/publish", adminCtrl.PublishAssessment)
	}

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Skill Assessment API server starting on port %s", cfg.Server.Port)
			log.Info().Msgf("Swagger UI available at http://localhost:%s/swagger/index.html", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	})
}

func AutoMigrateDB(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	err := db.AutoMigrate(
		&model.Course{},
		&model.Assessment{},
		&model.Question{},
		&model.Attempt{},
		&model.Response{},
		&model.Result{},
	)
	if err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}
	log.Info().Msg("Database migration completed successfully.")
	return nil
}
