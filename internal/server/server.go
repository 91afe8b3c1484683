// Package server wires everything together: database, upload store,
// services, handlers, middleware, routes, and the HTTP lifecycle. It is the
// composition root; no other package creates cross-layer dependencies.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/HealthyWithVictor/storefront/internal/auth"
	"github.com/HealthyWithVictor/storefront/internal/handler"
	"github.com/HealthyWithVictor/storefront/internal/middleware"
	sqliteRepo "github.com/HealthyWithVictor/storefront/internal/repository/sqlite"
	"github.com/HealthyWithVictor/storefront/internal/service"
	"github.com/HealthyWithVictor/storefront/internal/upload"
)

// Config holds everything main reads from the environment.
type Config struct {
	Port          int
	DBPath        string
	UploadDir     string
	JWTSecret     string
	AdminUsername string
	AdminPassword string
	CORSOrigins   []string // empty = allow all (development)
}

// Server owns the router and the resources that need closing on shutdown.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New builds the full dependency chain:
//
//	sqlite.DB + upload.Store
//	  → image set manager
//	  → catalog / admin / comment / account services
//	  → handlers → routes
//
// It also bootstraps the admin account so a fresh database is immediately
// manageable.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

func (s *Server) setupRoutes() error {
	store, err := upload.NewStore(s.config.UploadDir)
	if err != nil {
		return err
	}

	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return err
	}
	passwords := auth.NewPasswordService()

	imageSet := service.NewImageSetManager(s.db, store, s.logger)
	catalogSvc := service.NewCatalogService(s.db, s.db, s.db, s.db, s.logger)
	adminSvc := service.NewAdminService(s.db, s.db, imageSet, s.logger)
	commentSvc := service.NewCommentService(s.db, s.db, s.db, s.logger)
	accountSvc := service.NewAccountService(s.db, passwords, tokens, s.logger)

	// A fresh database gets its admin before the first request arrives.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := accountSvc.EnsureAdmin(ctx, s.config.AdminUsername, s.config.AdminPassword); err != nil {
		return fmt.Errorf("bootstrapping admin account: %w", err)
	}

	catalogHandler := handler.NewCatalogHandler(catalogSvc, s.logger)
	adminHandler := handler.NewAdminHandler(adminSvc, s.logger)
	commentHandler := handler.NewCommentHandler(commentSvc, s.logger)
	accountHandler := handler.NewAccountHandler(accountSvc, s.logger)

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	corsOpts := cors.Options{
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}
	if len(s.config.CORSOrigins) > 0 {
		corsOpts.AllowedOrigins = s.config.CORSOrigins
	} else {
		corsOpts.AllowOriginFunc = func(string) bool { return true }
	}
	s.router.Use(cors.New(corsOpts).Handler)

	// Uploaded images are served straight off the upload directory under the
	// same prefix the database rows reference.
	fileServer := http.FileServer(http.Dir(store.Dir()))
	s.router.Handle("/"+upload.URLPrefix+"/*", http.StripPrefix("/"+upload.URLPrefix+"/", fileServer))

	s.router.Route("/api", func(r chi.Router) {
		// Public storefront.
		r.Get("/products", catalogHandler.HandleListProducts)
		r.Get("/products/{id}", catalogHandler.HandleProductDetail)
		r.Get("/categories", catalogHandler.HandleListCategories)

		r.Post("/auth/register", accountHandler.HandleRegister)
		r.Post("/auth/login", accountHandler.HandleLogin)
		r.Post("/auth/logout", accountHandler.HandleLogout)

		// Authenticated guests.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))
			r.Post("/products/{id}/comments", commentHandler.HandleAddComment)
			r.Delete("/comments/{id}", commentHandler.HandleDeleteComment)
		})

		// Admin panel.
		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.RequireAdmin(tokens))
			r.Post("/categories", adminHandler.HandleCreateCategory)
			r.Put("/categories/{id}", adminHandler.HandleRenameCategory)
			r.Delete("/categories/{id}", adminHandler.HandleDeleteCategory)
			r.Post("/products", adminHandler.HandleCreateProduct)
			r.Put("/products/{id}", adminHandler.HandleUpdateProduct)
			r.Delete("/products/{id}", adminHandler.HandleDeleteProduct)
			r.Delete("/images/{id}", adminHandler.HandleDeleteImage)
		})
	})

	return nil
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting, drain in-flight requests, close the database
// (flushing the WAL).
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
			slog.String("uploads", s.config.UploadDir),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
