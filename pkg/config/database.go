package config

import (
	"context"
	"fmt"
	"time"

	"github.com/anonto42/socialnet/backend/pkg/logger"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DB holds the database connections
type DB struct {
	SQL   *gorm.DB
	Mongo *mongo.Client
	Redis *redis.Client // nil when REDIS_ADDR is unset
}

// InitDB opens every store the configuration asks for.
func InitDB(ctx context.Context, cfg *Config, log zerolog.Logger) (*DB, error) {
	dsn := cfg.PostgresURL
	if cfg.DBDriver == "sqlite" {
		dsn = cfg.SQLitePath
	}
	sqlDB, err := OpenGorm(cfg.DBDriver, dsn, cfg.IsDevelopment())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.DBDriver, err)
	}
	log.Info().Str("driver", cfg.DBDriver).Msg("connected to relational database")

	db := &DB{SQL: sqlDB}

	db.Mongo, err = initMongo(ctx, cfg.MongoURI)
	if err != nil {
		db.CloseDB(log)
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	log.Info().Msg("connected to MongoDB")

	if cfg.RedisAddr != "" {
		db.Redis, err = initRedis(ctx, cfg)
		if err != nil {
			db.CloseDB(log)
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		log.Info().Str("addr", cfg.RedisAddr).Msg("connected to Redis")
	}

	return db, nil
}

// OpenGorm opens a GORM connection with driver errors translated into
// gorm sentinel errors such as gorm.ErrDuplicatedKey.
func OpenGorm(driver, dsn string, verbose bool) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	level := gormlogger.Warn
	if verbose {
		level = gormlogger.Info
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.NewGormLogger(*logger.L(), level, 200*time.Millisecond),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if driver == "sqlite" {
		// one connection keeps in-memory databases shared and writes serialized
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(50)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}
	if err = sqlDB.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

func initMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err = client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	return client, nil
}

func initRedis(ctx context.Context, cfg *Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

// CloseDB closes the database connections
func (db *DB) CloseDB(log zerolog.Logger) {
	if db.SQL != nil {
		if sqlDB, err := db.SQL.DB(); err != nil {
			log.Error().Err(err).Msg("error getting sql.DB from GORM")
		} else if err := sqlDB.Close(); err != nil {
			log.Error().Err(err).Msg("error closing relational database")
		}
	}

	if db.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Mongo.Disconnect(ctx); err != nil {
			log.Error().Err(err).Msg("error closing MongoDB connection")
		}
	}

	if db.Redis != nil {
		if err := db.Redis.Close(); err != nil {
			log.Error().Err(err).Msg("error closing Redis connection")
		}
	}
	log.Info().Msg("database connections closed")
}
