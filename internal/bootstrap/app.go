package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"docuchat/internal/config"
	"docuchat/internal/model"
	mysqlClient "docuchat/internal/platform/mysql"
	rabbitmqClient "docuchat/internal/platform/rabbitmq"
	redisClient "docuchat/internal/platform/redis"
	"docuchat/internal/repository"
	"docuchat/internal/storage"
	"docuchat/internal/worker"
)

// App holds the process-wide dependencies, constructed once at startup and
// passed explicitly into the pipelines.
type App struct {
	Config        *config.Config
	MySQL         *gorm.DB
	Redis         *redis.Client
	MQConn        *amqp.Connection
	Blob          storage.BlobStore
	MessageWorker *worker.MessagePersistWorker

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	mysqlDB, err := mysqlClient.New(ctx, cfg.MySQLDSN())
	if err != nil {
		return nil, err
	}
	if err := mysqlDB.AutoMigrate(&model.Analysis{}, &model.ChatSession{}, &model.ChatMessage{}); err != nil {
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}

	redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}

	mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL)
	if err != nil {
		return nil, err
	}

	blob, err := storage.NewMinIO(ctx, cfg.MinIO)
	if err != nil {
		return nil, err
	}

	messageRepo := repository.NewChatMessageRepository(mysqlDB)
	messageWorker := worker.NewMessagePersistWorker(mqConn, messageRepo, cfg.RabbitMQ.MessagePersistQueue)
	if err := messageWorker.Start(ctx); err != nil {
		return nil, fmt.Errorf("start message worker failed: %w", err)
	}

	return &App{
		Config:        cfg,
		MySQL:         mysqlDB,
		Redis:         redisCli,
		MQConn:        mqConn,
		Blob:          blob,
		MessageWorker: messageWorker,
		StartedAt:     time.Now(),
	}, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MessageWorker != nil {
		a.MessageWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MySQL != nil {
		sqlDB, err := a.MySQL.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}
