package server

import (
  "github.com/gin-gonic/gin"
  "github.com/gin-contrib/cors"
  "github.com/dbrainio/presenton/internal/handlers"
)

type RouterConfig struct {
  SlideHandler        *handlers.SlideHandler
  PresentationHandler *handlers.PresentationHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
  router := gin.Default()

  // Cors
  router.Use(cors.New(cors.Config{
    AllowOrigins: []string{
      "http://localhost:80",
      "http://localhost:3000",
      "http://localhost:5173",
    },
    AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
    AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
    AllowCredentials: true,
  }))

  router.GET("/healthcheck", handlers.HealthCheck)

  api := router.Group("/api")
  {
    // Presentation
    api.POST("/presentation", cfg.PresentationHandler.CreatePresentation)
    api.GET("/presentation/:id", cfg.PresentationHandler.GetPresentation)
    // Slide
    api.POST("/slide/create", cfg.SlideHandler.CreateSlide)
    api.POST("/slide/edit", cfg.SlideHandler.EditSlide)
    api.POST("/slide/edit-html", cfg.SlideHandler.EditSlideHTML)
    api.POST("/slide/delete", cfg.SlideHandler.DeleteSlide)
  }

  return router
}
