package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"hotel-addons/config"
	"hotel-addons/controllers"
	"hotel-addons/events"
	"hotel-addons/routes"
	"hotel-addons/services"
	"hotel-addons/store"
)

func main() {
	// Load .env (optional)
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  .env not found or couldn't load it; continuing with environment variables")
	}
	cfg := config.Load()

	if err := config.ConnectDatabase(cfg.SeedData); err != nil {
		log.Fatalf("❌ Database connect failed: %v", err)
	}
	db := config.DB
	if db == nil {
		log.Fatal("❌ config.DB is nil after ConnectDatabase()")
	}
	log.Println("✅ Database connection established and migrations applied.")

	// Event sinks: broker (SSE) เสมอ, Redis/Kafka เมื่อตั้ง env ไว้
	broker := events.NewBroker()
	publishers := events.Fanout{broker}

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			log.Printf("⚠️ Redis %s unreachable, events still published: %v", cfg.RedisAddr, err)
		} else {
			log.Printf("✅ Redis connected (%s), channel %s", cfg.RedisAddr, cfg.RedisChannel)
		}
		cancel()
		publishers = append(publishers, events.NewRedisPublisher(redisClient, cfg.RedisChannel))
	}

	var kafkaPub *events.KafkaPublisher
	if cfg.KafkaBroker != "" {
		kafkaPub = events.NewKafkaPublisher(events.NewKafkaWriter(cfg.KafkaBroker, cfg.KafkaTopic))
		publishers = append(publishers, kafkaPub)
		log.Printf("✅ Kafka writer ready (%s, topic %s)", cfg.KafkaBroker, cfg.KafkaTopic)
	}

	// Stores and registries
	catalogStore := store.NewGormCatalogStore(db)
	addonStore := store.NewGormAddonStore(db)
	customers := store.NewGormCustomerRegistry(db)
	reservations := store.NewGormReservationRegistry(db)
	currencies := store.NewGormCurrencyTable(db)
	taxes := store.NewGormTaxCatalog(db)

	// Services
	catalogService := services.NewCatalogService(catalogStore, currencies, taxes)
	addonService := services.NewAddonService(addonStore, catalogStore, publishers)
	invoiceService := services.NewInvoiceService(addonStore, taxes, cfg.DefaultTaxRate)
	sessionService := services.NewOrderSessionService(
		catalogService, addonService, customers, reservations,
		cfg.DefaultCurrency, cfg.CashSalePrefix,
	)
	sessionService.SessionTTL = cfg.SessionTTL

	// ล้าง wizard session ที่ค้าง
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@every 10m", func() { sessionService.Sweep() }); err != nil {
		log.Fatalf("❌ schedule session sweep: %v", err)
	}
	scheduler.Start()
	log.Println("✅ Session sweeper scheduled (every 10m)")

	router := routes.SetupRouter(routes.Controllers{
		Catalog:     controllers.NewCatalogController(catalogService),
		Addons:      controllers.NewAddonController(addonService, invoiceService, broker),
		Sessions:    controllers.NewOrderSessionController(sessionService),
		Reference:   controllers.NewReferenceController(currencies, taxes, reservations, customers),
		CorsOrigins: cfg.CorsOrigins,
	})

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		// 0 = ไม่ตัด SSE stream (/api/service-addons/events)
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("🚀 Server starting on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ ListenAndServe(): %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("⚠️  Shutdown signal received, shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("❌ Server forced to shutdown: %v", err)
	}

	<-scheduler.Stop().Done()

	if kafkaPub != nil {
		if err := kafkaPub.Close(); err != nil {
			log.Printf("⚠️ kafka writer close: %v", err)
		}
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	log.Println("✅ Server stopped gracefully")
}
