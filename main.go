package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nova/badge"
	"nova/db"
	"nova/kioskfeed"
	"nova/members"
	"nova/pay"
	"nova/ratelim"
	"nova/reservations"
	"nova/routes"
	"nova/scans"
	"nova/sessions"

	"github.com/joho/godotenv"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
)

// securityHeaders applies a set of recommended HTTP security headers.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "frame-ancestors 'none'")
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Permissions-Policy", "geolocation=(), microphone=(), camera=()")
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, private")
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs each request method, path, remote address, and duration.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		duration := time.Since(start)
		log.Printf("%s %s from %s – %v", r.Method, r.RequestURI, r.RemoteAddr, duration)
	})
}

// Index is a simple health check handler.
func Index(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	fmt.Fprint(w, "200")
}

func setupRouter(rateLimiter *ratelim.RateLimiter, hub *kioskfeed.Hub) *httprouter.Router {
	router := httprouter.New()
	router.GET("/health", Index)

	badgeIndex := badge.NewIndex(badge.RedisCache{})
	resolver := &badge.Resolver{
		Index: badgeIndex,
		Store: badge.MongoMembers{Col: db.UserCollection},
	}
	sessionManager := sessions.NewManager(sessions.MongoStore{Col: db.SessionsCollection})

	kiosk := &sessions.KioskHandler{
		Resolver: resolver,
		Manager:  sessionManager,
		Recorder: scans.MongoRecorder{},
		Notifier: hub,
	}
	memberHandler := &members.Handler{Index: badgeIndex}
	sessionHandler := &sessions.Handler{Manager: sessionManager}
	reservationHandler := &reservations.Handler{
		Checker: &reservations.Checker{
			Store: reservations.MongoReservations{Col: db.ReservationsCollection},
		},
	}

	routes.AddAuthRoutes(router, rateLimiter)
	routes.AddKioskRoutes(router, kiosk, hub, rateLimiter)
	routes.AddMemberRoutes(router, memberHandler, rateLimiter)
	routes.AddSessionRoutes(router, sessionHandler)
	routes.AddReservationRoutes(router, reservationHandler, rateLimiter)
	routes.AddInventoryRoutes(router)
	routes.AddRoleRoutes(router)
	routes.AddPayRoutes(router)
	routes.AddScanRoutes(router)
	routes.AddStaticRoutes(router)

	return router
}

func main() {
	// load .env if present
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found; using system environment")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = ":8080"
	} else if port[0] != ':' {
		port = ":" + port
	}

	// indexes back the single-open-session guarantee and idempotent renewals;
	// refuse to serve without them
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.EnsureIndexes(ctx); err != nil {
		cancel()
		log.Fatalf("❌ Index creation failed: %v", err)
	}
	if err := pay.InitIdempotencyIndexes(ctx); err != nil {
		cancel()
		log.Fatalf("❌ Idempotency index creation failed: %v", err)
	}
	cancel()

	rateLimiter := ratelim.NewRateLimiter()

	hub := kioskfeed.NewHub()
	go hub.Run()

	router := setupRouter(rateLimiter, hub)

	// apply middleware: CORS → security headers → logging → router
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // lock down in production
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "Idempotency-Key"},
		AllowCredentials: true,
	}).Handler(router)

	handler := loggingMiddleware(securityHeaders(corsHandler))

	server := &http.Server{
		Addr:              port,
		Handler:           handler,
		ReadTimeout:       7 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	server.RegisterOnShutdown(func() {
		log.Println("🛑 Shutting down kiosk feed...")
		hub.Stop()
	})

	go func() {
		log.Printf("🚀 Server listening on %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ ListenAndServe error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("🛑 Shutdown signal received; shutting down gracefully...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("❌ Graceful shutdown failed: %v", err)
	}

	log.Println("✅ Server stopped cleanly")
}
