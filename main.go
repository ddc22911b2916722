package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tourdesk/internal/cache"
	intconfig "tourdesk/internal/config"
	intdb "tourdesk/internal/db"
	"tourdesk/internal/events"
	router "tourdesk/internal/http"
	"tourdesk/internal/http/handlers"
	"tourdesk/internal/realtime"
	"tourdesk/internal/repositories"
	"tourdesk/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	env, err := intconfig.LoadEnv()
	if err != nil {
		log.Fatalf("Gagal membaca konfigurasi: %v", err)
	}
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := intconfig.ConnectDB(env.DB)
	if err != nil {
		log.Fatalf("Gagal koneksi database: %v", err)
	}
	defer intconfig.CloseDB()

	if err := intdb.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("Gagal menyiapkan schema: %v", err)
	}

	auth := services.AuthService{
		Operators: repositories.OperatorRepository{DB: db},
		Secret:    []byte(env.JWTSecret),
		TTL:       env.JWTTTL,
	}
	if err := auth.BootstrapAdmin(ctx, env.AdminEmail, env.AdminPassword); err != nil {
		log.Fatalf("Gagal membuat admin awal: %v", err)
	}

	calendar := &cache.CalendarCache{TTL: env.CalendarCacheTTL}
	var idem redis.Cmdable
	rdb, err := cache.NewClient(ctx, env.RedisAddr)
	if err != nil {
		log.Printf("warning: redis tidak tersedia, cache kalender nonaktif: %v", err)
	}
	if rdb != nil {
		defer rdb.Close()
		calendar.Client = rdb
		idem = rdb
	}

	publisher, err := events.NewPublisher(events.Settings{
		Broker:       env.Broker,
		KafkaBrokers: env.KafkaBrokers,
		KafkaTopic:   env.KafkaTopic,
		AMQPURL:      env.AMQPURL,
		AMQPExchange: env.AMQPExchange,
	})
	if err != nil {
		log.Fatalf("Gagal menyiapkan broker: %v", err)
	}
	defer publisher.Close()

	relay := events.Relay{
		Outbox:    repositories.OutboxRepository{DB: db},
		Tx:        intdb.TxManager{DB: db},
		Publisher: publisher,
		Interval:  env.OutboxInterval,
	}
	go relay.Run(ctx)

	hub := realtime.NewHub(func(token string) (int64, string, error) {
		rc, err := auth.Verify(token)
		return rc.OperatorID, rc.Role, err
	}, env.CORSAllowedOrigins)
	go hub.Run(ctx)

	hd := &handlers.Handler{DB: db, Auth: auth, Calendar: calendar, Hub: hub}
	r := router.NewRouter(env, hd, idem)
	handlers.SetRouter(r)

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("Server berjalan di http://localhost%s", env.AppAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Gagal menjalankan server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Mematikan server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown server gagal: %v", err)
	}

	log.Println("Server berhenti dengan aman.")
}
