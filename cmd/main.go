package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/pot-code/focus-tracker/internal/activity"
	infra "github.com/pot-code/focus-tracker/internal/infrastructure"
	"github.com/pot-code/focus-tracker/internal/infrastructure/driver"
	"github.com/pot-code/focus-tracker/internal/infrastructure/event"
	"github.com/pot-code/focus-tracker/internal/infrastructure/logging"
	"github.com/pot-code/focus-tracker/internal/infrastructure/uuid"
	"github.com/pot-code/focus-tracker/internal/interfaces/rest"
	"github.com/pot-code/focus-tracker/internal/user"
	"go.uber.org/zap"
)

type stores struct {
	users      user.UserRepository
	activities activity.ActivityRepository
	probes     []driver.Pinger
	close      func(ctx context.Context) error
}

func main() {
	log.SetFlags(log.Lshortfile | log.Ldate | log.Ltime)
	option, err := infra.InitConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := logging.NewLogger(&logging.Config{
		FilePath: option.Logging.FilePath,
		Level:    option.Logging.Level,
		AppID:    option.AppID,
		Env:      option.Env,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %s\n", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	location, _ := option.Location() // validated by LoadConfig
	dbConfig := &driver.DBConfig{
		User:     option.Database.User,
		Password: option.Database.Password,
		MaxConn:  option.Database.MaxConn,
		Protocol: option.Database.Protocol,
		Driver:   option.Database.Driver,
		Host:     option.Database.Host,
		Port:     option.Database.Port,
		Query:    option.Database.Query,
		Schema:   option.Database.Schema,
	}
	st, err := openStores(ctx, dbConfig)
	if err != nil {
		logger.Fatal("Failed to open storage", zap.Error(err), zap.String("db.driver", dbConfig.Driver))
	}
	defer st.close(context.Background())
	logger.Debug("Storage connected", zap.String("db.driver", dbConfig.Driver),
		zap.String("db.schema", dbConfig.Schema),
		zap.String("db.host", dbConfig.Host),
	)

	var kv driver.KeyValueDB
	if option.KVStore.Host == "" {
		logger.Warn("No kv host configured, revoked tokens are kept in memory")
		kv = driver.NewMemoryKV()
	} else {
		kv = driver.NewRedisClient(option.KVStore.Host, option.KVStore.Port, option.KVStore.Password)
	}
	defer kv.Close()

	hub := event.NewHub(16)
	publishers := event.Multi{hub}
	if len(option.Kafka.Brokers) > 0 {
		kafka := event.NewKafkaPublisher(option.Kafka.Brokers, option.Kafka.Topic)
		defer kafka.Close()
		publishers = append(publishers, kafka)
		logger.Info("Publishing activity events", zap.Strings("kafka.brokers", option.Kafka.Brokers),
			zap.String("kafka.topic", option.Kafka.Topic))
	}

	UUIDGenerator := uuid.NewNanoIDGenerator(option.Security.IDLength)
	UserUseCase := user.NewUserUseCase(st.users, UUIDGenerator,
		option.Security.MaxLoginAttempts,
		option.Security.RetryTimeout)
	ActivityUseCase := activity.NewActivityUseCase(st.activities, UUIDGenerator, publishers, location)

	app := rest.NewServer(&rest.Dependencies{
		Option:          option,
		Logger:          logger,
		KV:              kv,
		Probes:          append(st.probes, kv),
		Hub:             hub,
		UserUseCase:     UserUseCase,
		ActivityUseCase: ActivityUseCase,
	})
	if err := rest.Serve(ctx, app, option); err != nil {
		logger.Error("Server stopped", zap.Error(err))
	}
}

func openStores(ctx context.Context, cfg *driver.DBConfig) (*stores, error) {
	if cfg.Driver == "mongo" {
		db, err := driver.NewMongoDatabase(ctx, cfg)
		if err != nil {
			return nil, err
		}
		users := user.NewUserMongoRepository(db.Collection("users"))
		activities := activity.NewActivityMongoRepository(db.Collection("activities"))
		if err := users.EnsureIndexes(ctx); err != nil {
			return nil, err
		}
		if err := activities.EnsureIndexes(ctx); err != nil {
			return nil, err
		}
		return &stores{
			users:      users,
			activities: activities,
			probes:     []driver.Pinger{db},
			close:      db.Close,
		}, nil
	}

	conn, err := driver.GetDBConnection(cfg)
	if err != nil {
		return nil, err
	}
	return &stores{
		users:      user.NewUserSQLRepository(conn),
		activities: activity.NewActivitySQLRepository(conn),
		probes:     []driver.Pinger{conn},
		close:      conn.Close,
	}, nil
}
