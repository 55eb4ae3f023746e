package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/linkpulse/linkpulse/internal/cache"
	"github.com/linkpulse/linkpulse/internal/config"
	"github.com/linkpulse/linkpulse/internal/db"
	"github.com/linkpulse/linkpulse/internal/geo"
	"github.com/linkpulse/linkpulse/internal/handlers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer database.Close()

	resolver, err := geo.NewResolver(cfg.GeoPrimaryURL, cfg.GeoSecondaryURL, cfg.GeoIPPath)
	if err != nil {
		log.Printf("geo: %v (local geoip lookups disabled)", err)
		resolver, _ = geo.NewResolver(cfg.GeoPrimaryURL, cfg.GeoSecondaryURL, "")
	}
	defer resolver.Close()

	linkCache, err := cache.New(cfg.CacheSize)
	if err != nil {
		log.Fatalf("cache: %v", err)
	}

	r := handlers.NewRouter(database, cfg, linkCache, resolver)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("linkpulse listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	<-stop
	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
	log.Println("goodbye")
}
