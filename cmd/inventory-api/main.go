package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MikeMC777/inventory-api/internal/auth"
	"github.com/MikeMC777/inventory-api/internal/category"
	"github.com/MikeMC777/inventory-api/internal/config"
	"github.com/MikeMC777/inventory-api/internal/events"
	"github.com/MikeMC777/inventory-api/internal/mail"
	"github.com/MikeMC777/inventory-api/internal/order"
	"github.com/MikeMC777/inventory-api/internal/postgres"
	"github.com/MikeMC777/inventory-api/internal/product"
	"github.com/MikeMC777/inventory-api/internal/redisx"
	"github.com/MikeMC777/inventory-api/internal/user"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	mailer, err := mail.NewSMTPMailer(mail.SMTPConfig{
		Host:        cfg.EmailHost,
		Port:        cfg.EmailPort,
		User:        cfg.EmailUser,
		Password:    cfg.EmailPassword,
		From:        cfg.EmailFrom,
		FrontendURL: cfg.FrontendURL,
	})
	if err != nil {
		log.Fatalf("mailer: %v", err)
	}

	tokens := auth.NewManager(cfg.JWTSecret, cfg.TokenTTL)
	users := user.NewService(user.NewPGRepo(pool), mailer, tokens)

	var guard order.IdemGuard
	if cfg.RedisAddr != "" {
		guard = redisx.NewGuard(redisx.New(cfg.RedisAddr))
	}

	var producer *events.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = events.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopicOrder, "inventory-api", 256)
		producer.Start(ctx)
	}

	r := buildRouter(deps{
		tokens:     tokens,
		users:      users,
		categories: category.NewPGRepo(pool),
		products:   product.NewPGRepo(pool),
		engine:     order.NewEngine(order.NewPGLedger(pool), guard),
		orders:     order.NewPGRepo(pool),
		producer:   producer,
	})

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r}
	go func() {
		log.Printf("inventory-api listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	if producer != nil {
		producer.WaitClosed()
	}
}
