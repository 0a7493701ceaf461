package api

import (
	"fmt"
	"net/http"

	"courtbase/internal/cache"
	"courtbase/internal/config"
	"courtbase/internal/database"
	"courtbase/internal/handlers"
	"courtbase/internal/logger"
	"courtbase/internal/messaging"
	"courtbase/internal/middleware"
	"courtbase/internal/repository"
	"courtbase/internal/search"
	"courtbase/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server представляет HTTP сервер API
type Server struct {
	router   *gin.Engine
	config   *config.Config
	db       *database.DB
	nats     *messaging.NATSClient
	valkey   *cache.ValkeyClient
	services *service.Services
	repos    *repository.Repositories
}

// NewServer создает новый экземпляр сервера
func NewServer(cfg *config.Config) *Server {
	log := logger.Get()

	// Устанавливаем режим Gin
	gin.SetMode(cfg.GinMode)

	// Подключаемся к базе данных
	db, err := database.Connect(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	// Запускаем миграции
	if err := db.RunMigrations(); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	// Подключаемся к NATS
	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		logger.Fatal("Failed to connect to NATS", "error", err)
	}

	// Кеш не обязателен: без Valkey работаем напрямую с БД
	valkeyClient, err := cache.NewValkeyClient(cfg.Valkey)
	if err != nil {
		log.Warn("Valkey unavailable, running without cache", "error", err)
		valkeyClient = nil
	}

	// Поисковый индекс тоже опционален: без него поиск уходит в Postgres
	var esClient *search.Client
	if cfg.Elasticsearch.Enabled {
		esClient, err = search.NewClient(cfg.Elasticsearch)
		if err != nil {
			log.Warn("Elasticsearch unavailable, falling back to SQL search", "error", err)
			esClient = nil
		}
	}

	// Создаем репозитории
	repos := repository.NewRepositories(db)

	// Создаем сервисы
	services := service.NewServices(repos, natsClient, esClient, valkeyClient, cfg.PublicBaseURL)

	// Создаем роутер
	router := gin.New()

	// Применяем middleware
	router.Use(middleware.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())
	router.Use(middleware.Metrics())

	// Создаем сервер
	server := &Server{
		router:   router,
		config:   cfg,
		db:       db,
		nats:     natsClient,
		valkey:   valkeyClient,
		services: services,
		repos:    repos,
	}

	// Настраиваем роуты
	server.setupRoutes()

	return server
}

// setupRoutes настраивает все API роуты
func (s *Server) setupRoutes() {
	h := handlers.NewHandlers(s.services, s.valkey)

	// API routes
	api := s.router.Group("/api")
	// Обязательная Basic Auth для всех API роутов
	api.Use(middleware.BasicAuth(s.repos.Customers, s.valkey))
	{
		// Facilities endpoints
		facilities := api.Group("/facilities")
		{
			facilities.POST("", h.CreateFacility)
			facilities.GET("", h.ListFacilities)
			facilities.GET("/:id", h.GetFacility)
			facilities.PATCH("/:id", h.UpdateFacility)
			facilities.DELETE("/:id", h.ArchiveFacility)
			facilities.GET("/:id/availability", h.GetAvailability)
		}

		// Equipment endpoints
		equipment := api.Group("/equipment")
		{
			equipment.POST("", h.CreateEquipment)
			equipment.GET("", h.ListEquipment)
			equipment.GET("/:id", h.GetEquipment)
		}

		// Bookings endpoints
		bookings := api.Group("/bookings")
		{
			bookings.POST("", h.CreateBooking)
			bookings.GET("", h.ListBookings)
			bookings.GET("/:id", h.GetBooking)
			bookings.PATCH("/:id", h.UpdateBooking)
			bookings.PATCH("/:id/confirm", h.ConfirmBooking)
			bookings.PATCH("/:id/complete", h.CompleteBooking)
			bookings.PATCH("/:id/cancel", h.CancelBooking)
			bookings.PATCH("/:id/reset", h.ResetBooking)
			bookings.GET("/:id/occurrences", h.ListBookingOccurrences)
		}

		// Memberships endpoints
		memberships := api.Group("/memberships")
		{
			memberships.POST("", h.CreateMembership)
			memberships.GET("", h.ListMemberships)
			memberships.GET("/:id", h.GetMembership)
			memberships.PATCH("/:id/pay", h.PayMembership)
			memberships.PATCH("/:id/renew", h.RenewMembership)
			memberships.PATCH("/:id/cancel", h.CancelMembership)
		}

		// Waitlist endpoints
		waitlist := api.Group("/waitlist")
		{
			waitlist.POST("", h.JoinWaitlist)
			waitlist.GET("", h.ListWaitlist)
			waitlist.PATCH("/:id/book", h.BookWaitlistEntry)
		}
	}

	// Health check and metrics endpoints
	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// healthCheck обрабатывает health check запросы
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "courtbase-api",
		"version": "1.0.0",
	})
}

// Run запускает HTTP сервер
func (s *Server) Run() error {
	addr := fmt.Sprintf(":%s", s.config.Port)
	return s.router.Run(addr)
}

// GetRouter возвращает роутер для тестирования
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// Cleanup закрывает соединения
func (s *Server) Cleanup() error {
	log := logger.Get()

	if s.nats != nil {
		if err := s.nats.Close(); err != nil {
			log.Error("Error closing NATS connection", "error", err)
		}
	}

	if s.valkey != nil {
		if err := s.valkey.Close(); err != nil {
			log.Error("Error closing Valkey connection", "error", err)
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			log.Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}
