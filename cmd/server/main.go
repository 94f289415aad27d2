package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"

	"github.com/quizhub/quiz_platform/internal/config"
	"github.com/quizhub/quiz_platform/internal/db"
	"github.com/quizhub/quiz_platform/internal/events"
	"github.com/quizhub/quiz_platform/internal/handlers"
	"github.com/quizhub/quiz_platform/internal/logging"
	"github.com/quizhub/quiz_platform/internal/middleware"
	"github.com/quizhub/quiz_platform/internal/repo"
	"github.com/quizhub/quiz_platform/internal/service"
	"github.com/quizhub/quiz_platform/internal/service/search"
	"github.com/quizhub/quiz_platform/internal/tokens"
	transport "github.com/quizhub/quiz_platform/internal/transport/http"
)

func main() {
	cfg := config.Load()
	cfg.MustValidate()

	logger := logging.New(cfg.LogLevel)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	database, err := db.Open(initCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	gormRepo := &repo.GormRepo{DB: database}

	issuer := &tokens.Issuer{
		AccessSecret:  cfg.AccessSecret,
		RefreshSecret: cfg.RefreshSecret,
		AccessTTL:     cfg.AccessTTL,
		RefreshTTL:    cfg.RefreshTTL,
		ResetTTL:      cfg.ResetTTL,
	}

	authSvc := &service.AuthService{Repo: gormRepo, Issuer: issuer}

	var producer *events.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = events.NewProducer(cfg.KafkaBrokers)
		defer producer.Close()
	}

	var esClient *elasticsearch.Client
	if cfg.ESURL != "" {
		esClient, err = search.NewClient(cfg.ESURL, cfg.ESUser, cfg.ESPassword)
		if err != nil {
			logger.Warn("elasticsearch unavailable, exam search disabled", "error", err)
			esClient = nil
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second
	e.HTTPErrorHandler = transport.NewErrorHandler(logger)
	e.Use(transport.RequestLogger(logger))

	transport.Register(e, &transport.Deps{
		Auth: middleware.NewAuth(gormRepo, issuer),

		Accounts:       &handlers.AccountHandler{DB: database, Svc: authSvc, Producer: producer},
		Users:          &handlers.UserHandler{DB: database},
		Admins:         &handlers.AdminHandler{DB: database},
		Exams:          &handlers.ExamHandler{DB: database, ES: esClient, Producer: producer},
		Questions:      &handlers.QuestionHandler{DB: database},
		Answers:        &handlers.AnswerHandler{DB: database},
		Ratings:        &handlers.RatingHandler{DB: database},
		Comments:       &handlers.CommentHandler{DB: database},
		Groups:         &handlers.GroupHandler{DB: database},
		GroupMembers:   &handlers.GroupMemberHandler{DB: database},
		Attempts:       &handlers.AttemptHandler{DB: database},
		AttemptDetails: &handlers.AttemptDetailHandler{DB: database},
	})

	go func() {
		addr := fmt.Sprintf(":%d", cfg.ServerPort)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("echo start: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("echo shutdown", "error", err)
	}
}
