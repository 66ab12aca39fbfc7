package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	httpapi "lodge-backend/internal/api/http"
	"lodge-backend/internal/config"
	"lodge-backend/internal/logger"
	"lodge-backend/internal/service"
	"lodge-backend/internal/store"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Lodge Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "host", cfg.Server.Host, "port", cfg.Server.Port)
	logger.Info("Store configuration", "type", cfg.Store.Type, "project_id", cfg.Store.ProjectID)

	ctx := context.Background()

	// Initialize the document store
	var base store.RecordStore
	switch cfg.Store.Type {
	case "firestore":
		fs, err := store.NewFirestoreStore(ctx, cfg.Store.ProjectID, cfg.Store.CredentialsFile)
		if err != nil {
			logger.Error("Failed to connect to Firestore", "error", err)
			log.Fatalf("Failed to connect to Firestore: %v", err)
		}
		base = fs
	default:
		logger.Info("Using in-memory store; data will not survive a restart")
		base = store.NewMemoryStore()
	}
	defer base.Close()

	// Wrap with the read-through TTL cache
	st := store.NewCachedStore(base, time.Duration(cfg.Cache.TTLSeconds)*time.Second)
	logger.Info("Read cache enabled", "ttl_seconds", cfg.Cache.TTLSeconds)

	// Initialize Services
	clock := service.SystemClock()
	serialSvc := service.NewSerialService(st)
	roomSvc := service.NewRoomService(st, clock, serialSvc, cfg.Serial.Enabled)
	transferSvc := service.NewTransferService(st, clock)
	bookingSvc := service.NewBookingService(st, clock, serialSvc, cfg.Serial.Enabled)
	settlementSvc := service.NewSettlementService(st, clock)
	expenseSvc := service.NewExpenseService(st, clock)

	// Set up the HTTP server
	handler := httpapi.NewHandler(roomSvc, transferSvc, bookingSvc, settlementSvc, expenseSvc, serialSvc, st)
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)

	logger.Info("HTTP server listening", "address", addr)
	if err := http.ListenAndServe(addr, handler.Router()); err != nil {
		logger.Error("HTTP server error", "error", err)
		log.Fatalf("Failed to serve: %v", err)
	}
}
