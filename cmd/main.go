package main

import (
  "fmt"
  "os"
  "path/filepath"

  "github.com/dbrainio/presenton/internal/clients/redis"
  "github.com/dbrainio/presenton/internal/db"
  "github.com/dbrainio/presenton/internal/handlers"
  "github.com/dbrainio/presenton/internal/logger"
  "github.com/dbrainio/presenton/internal/repos"
  "github.com/dbrainio/presenton/internal/server"
  "github.com/dbrainio/presenton/internal/services"
  "github.com/dbrainio/presenton/internal/utils"
)

func main() {
  // Logger
  logMode := os.Getenv("LOG_MODE")
  if logMode == "" {
    logMode = "development"
  }
  log, err := logger.New(logMode)
  if err != nil {
    fmt.Printf("Failed to init logger: %v\n", err)
    os.Exit(1)
  }
  defer log.Sync()

  // Env
  log.Info("Loading environment variables from main...")
  appDataDir := utils.GetEnv("APP_DATA_DIRECTORY", "./data", log)
  imagesDir := filepath.Join(appDataDir, "images")

  // Postgres
  postgresService, err := db.NewPostgresService(log)
  if err != nil {
    log.Error("Postgres init failed", "error", err)
    os.Exit(1)
  }
  if err = postgresService.AutoMigrateAll(); err != nil {
    log.Warn("Postgres auto migration failed", "error", err)
  }
  thePG := postgresService.DB()

  // Repos
  log.Info("Setting up Repos from main...")
  presentationRepo := repos.NewPresentationRepo(thePG, log)
  slideRepo := repos.NewSlideRepo(thePG, log)
  imageAssetRepo := repos.NewImageAssetRepo(thePG, log)

  // Services
  log.Info("Setting up Services from main...")
  locker, err := redis.NewPresentationLocker(log)
  if err != nil {
    log.Error("Could not init PresentationLocker", "error", err)
    os.Exit(1)
  }
  bucketService := services.NewBucketService(log)
  generator, err := services.NewOpenAIGenerator(log)
  if err != nil {
    log.Error("Could not init OpenAIGenerator", "error", err)
    os.Exit(1)
  }
  var imageProvider services.ImageProvider
  imageProvider, err = services.NewPexelsProvider(log)
  if err != nil {
    log.Warn("Image provider disabled", "error", err)
    imageProvider = nil
  }
  assetCoordinator := services.NewAssetCoordinator(log, imageProvider, bucketService, imagesDir)
  slideCollectionManager := services.NewSlideCollectionManager(
    thePG,
    log,
    presentationRepo,
    slideRepo,
    imageAssetRepo,
    assetCoordinator,
    generator,
    locker,
  )
  presentationService := services.NewPresentationService(thePG, log, presentationRepo, slideRepo)

  // Handlers
  log.Info("Setting up handlers from main...")
  slideHandler := handlers.NewSlideHandler(log, slideCollectionManager)
  presentationHandler := handlers.NewPresentationHandler(presentationService)

  // Router
  log.Info("Setting up router from main...")
  router := server.NewRouter(server.RouterConfig{
    SlideHandler:        slideHandler,
    PresentationHandler: presentationHandler,
  })

  port := utils.GetEnv("PORT", "8080", log)
  fmt.Printf("Server listening on :%s\n", port)
  if err := router.Run(":" + port); err != nil {
    log.Warn("Server failed", "error", err)
  }
}
