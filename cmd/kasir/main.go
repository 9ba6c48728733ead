package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kasir/internal/config"
	"kasir/internal/handler"
	"kasir/internal/infra/db"
	infraRepo "kasir/internal/infra/repository"
	"kasir/internal/logger"
	"kasir/internal/server"
	"kasir/internal/usecase"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

func main() {
	if err := run(); err != nil {
		slog.Error("kasir stopped", slog.Any("err", err))
		os.Exit(1)
	}
}

func run() error {
	//.envは任意
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(logger.Options{
		Service:   "kasir",
		Env:       cfg.AppEnv,
		Level:     cfg.LogLevel,
		AddSource: cfg.AppEnv != "prod",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//DB接続
	gormDB, err := db.Connect(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(gormDB); err != nil {
			log.Error("close db", slog.Any("err", err))
		}
	}()

	if err := db.Migrate(gormDB, cfg.ResetSchema, log); err != nil {
		return err
	}
	if cfg.SeedCatalog {
		if _, err := db.SeedCatalog(ctx, gormDB, log); err != nil {
			return err
		}
	}

	//Repository（GORM実装）生成
	feed := infraRepo.NewChangeFeed()
	productRepo := infraRepo.NewProductGormRepository(gormDB, feed)
	transactionRepo := infraRepo.NewTransactionGormRepository(gormDB, feed)
	txManager := infraRepo.NewTxManagerGorm(gormDB, feed)

	//Usecase生成
	engine := usecase.NewCartEngine(txManager, &realClock{}, &uuidGenerator{}, log)
	productUC := usecase.NewProductUsecase(productRepo, feed, engine, log)
	transactionUC := usecase.NewTransactionUsecase(transactionRepo, feed, log)

	//終了時：カートが確保している在庫をDBを閉じる前に戻す
	defer func() {
		discardCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := engine.Discard(discardCtx); err != nil {
			log.Error("discard cart on shutdown", slog.Any("err", err))
		}
	}()

	//Handler・Server生成
	e := server.New(log,
		handler.NewProductHandler(productUC),
		handler.NewCartHandler(engine),
		handler.NewTransactionHandler(transactionUC),
	)

	//Server起動
	return server.Start(ctx, e, cfg.HTTPAddr, log)
}
