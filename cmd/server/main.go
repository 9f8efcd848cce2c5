package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron"

	config "github.com/reachway/reachway/configs"
	"github.com/reachway/reachway/internal/api/handlers"
	job "github.com/reachway/reachway/internal/jobs"
	"github.com/reachway/reachway/internal/platform"
	"github.com/reachway/reachway/internal/queue"
	"github.com/reachway/reachway/internal/repository"
	"github.com/reachway/reachway/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	asynqClient := asynq.NewClient(redisConn)
	defer asynqClient.Close()

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		BodyLimit:    100 * 1024 * 1024, // 100 MB
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigin,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	socialAccountRepo := repository.NewSocialAccountRepository(db)
	publishIntentRepo := repository.NewPublishIntentRepository(db)

	registry := platform.NewDefaultRegistry(nil, cfg.RedditUserAgent)

	mediaService := service.NewMediaService(*cfg)
	queueClient := queue.NewClient(asynqClient)
	publishService := service.NewPublishService(*cfg, socialAccountRepo, postRepo, publishIntentRepo, registry, mediaService, queueClient)
	accountService := service.NewAccountService(*cfg, socialAccountRepo, registry)
	analyticsService := service.NewAnalyticsService(*cfg, socialAccountRepo, postRepo, registry)
	dashboardService := service.NewDashboardService(socialAccountRepo, postRepo)
	redditService := service.NewRedditService(*cfg, socialAccountRepo)
	tiktokService := service.NewTiktokService(*cfg, socialAccountRepo)
	userService := service.NewUserService(userRepo)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	oauth := handlers.NewOAuthHandler(*cfg, redditService, tiktokService)
	app.Get("/auth/reddit", oauth.RedditAuth)
	app.Get("/auth/reddit/callback", oauth.RedditCallback)
	app.Get("/auth/tiktok", oauth.TiktokAuth)
	app.Get("/auth/tiktok/callback", oauth.TiktokCallback)

	api := app.Group("/api")

	user := handlers.NewUserHandler(userService)
	api.Post("/users", user.CreateUser)
	api.Get("/users", user.GetUser)

	publish := handlers.NewPublishHandler(publishService, mediaService)
	api.Post("/publish", publish.PublishPost)
	api.Post("/save-post", publish.PublishPost)
	api.Get("/posts", publish.ListPosts)
	api.Post("/posts/remove", publish.RemovePost)

	account := handlers.NewAccountHandler(accountService)
	api.Post("/accounts", account.CreateAccount)
	api.Post("/accounts/update", account.UpdateAccount)
	api.Get("/accounts", account.ListAccounts)
	api.Get("/accounts/test", account.TestConnection)
	api.Post("/accounts/active", account.SetActive)
	api.Post("/accounts/remove", account.RemoveAccount)

	multi := api.Group("/multi-platform")
	multi.Post("/post", publish.PublishPost)
	multi.Get("/accounts/:user_id", account.ListAccounts)
	multi.Post("/accounts", account.CreateAccount)
	multi.Put("/accounts/:account_id", account.UpdateAccount)
	multi.Delete("/accounts/:account_id", account.RemoveAccount)
	multi.Post("/accounts/:account_id/test", account.TestConnection)

	analytics := handlers.NewAnalyticsHandler(analyticsService, dashboardService)
	api.Get("/analytics/post", analytics.GetPostAnalytics)
	api.Get("/analytics/post/:post_id", analytics.GetPostAnalytics)
	api.Put("/analytics/post/:post_id", analytics.UpdatePostAnalytics)
	api.Post("/analytics/post/sync", analytics.SyncPostAnalytics)
	api.Post("/analytics/sync", analytics.SyncAllAnalytics)
	api.Post("/analytics/sync/all", analytics.SyncAllAnalytics)
	api.Post("/analytics/sync/post/:post_id", analytics.SyncPostAnalytics)
	api.Get("/analytics/dashboard", analytics.GetDashboard)
	api.Post("/accounts/sync", analytics.SyncAccounts)
	api.Get("/dashboard", analytics.GetDashboard)
	api.Get("/dashboard/multi-platform", analytics.GetDashboard)

	api.Get("/reddit/auth/url", oauth.RedditAuthURL)
	api.Post("/reddit/auth/callback", oauth.RedditCallback)
	api.Get("/reddit/subreddits", oauth.RedditSubreddits)
	api.Get("/reddit/subreddits/:account_id", oauth.RedditSubreddits)
	api.Post("/reddit/post", publish.PublishPost)
	api.Get("/tiktok/auth/url", oauth.TiktokAuthURL)
	api.Post("/tiktok/auth/callback", oauth.TiktokCallback)
	api.Post("/tiktok/post", publish.PublishPost)

	// queue worker
	queueW := queue.NewQueue(*cfg, postRepo, socialAccountRepo, registry)

	// cron jobs
	schedulerJob := job.NewSchedulerJob(postRepo, publishIntentRepo, queueW)
	refreshTokenJob := job.NewTokenRefreshJob(socialAccountRepo, tiktokService)
	accountSyncJob := job.NewAccountSyncJob(userRepo, analyticsService)

	c := cron.New()
	c.AddFunc("@every 00h01m00s", schedulerJob.Run)
	c.AddFunc("@every 00h10m00s", refreshTokenJob.RefreshTokens)
	c.AddFunc("@every 01h00m00s", accountSyncJob.SyncAccounts)
	c.Start()

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 10,
		})

		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypeFinalizePost, queueW.HandleFinalizePostTask)

		log.Println("Starting the Asynq server...")
		if err := server.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(":3000"); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Println("Server is running on http://localhost:3000")

	gracefulShutdown(app, db)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}
