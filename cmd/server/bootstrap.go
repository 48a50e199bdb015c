package main

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"referral-outreach/backend/config"
	"referral-outreach/backend/internal/repository"
	"referral-outreach/backend/internal/service"
	"referral-outreach/backend/pkg/blobstore"
	"referral-outreach/backend/pkg/database"
	"referral-outreach/backend/pkg/jwt"
	applogger "referral-outreach/backend/pkg/logger"
	"referral-outreach/backend/pkg/redis"
	"referral-outreach/backend/pkg/transport"
)

// app 命令共用的运行时依赖
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *gorm.DB
	sqlDB  *sql.DB
	rdb    *redis.Client
	jwtMgr *jwt.Manager
	svc    *service.Service
}

func bootstrap(ctx context.Context, path string) (*app, error) {
	// 1. 加载配置
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("加载配置失败: %w", err)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("初始化日志失败: %w", err)
	}

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 连接数据库并执行迁移
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level == "debug", logger)
	if err != nil {
		return nil, fmt.Errorf("数据库连接失败: %w", err)
	}
	logger.Info("数据库连接成功")

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	a := &app{cfg: cfg, logger: logger, db: db, sqlDB: sqlDB}

	deps := service.Deps{
		SchemaVersion: func() (uint, bool, error) {
			return database.MigrationVersion(sqlDB)
		},
	}

	// 4. 连接 Redis（可选：失败时降级运行，Token 黑名单、限流与导入锁不可用）
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，降级运行", zap.Error(err))
	} else {
		a.rdb = rdb
		deps.Locker = rdb
		deps.Revoker = rdb
	}

	// 5. 对象存储与发件队列（未配置时对应功能返回 503）
	if cfg.Backup.Enabled() {
		store, err := blobstore.NewS3Store(ctx, &cfg.Backup, logger)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("初始化 S3 存储失败: %w", err)
		}
		deps.Store = store
	} else {
		logger.Warn("未配置 backup.bucket，备份与传单附件功能不可用")
	}

	if cfg.Outbox.Enabled() {
		sender, err := transport.NewSQSSender(ctx, &cfg.Outbox, cfg.Backup.Region, cfg.Backup.Endpoint, logger)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("初始化发件队列失败: %w", err)
		}
		deps.Sender = sender
	} else {
		logger.Warn("未配置 outbox.queue_name，传单发送功能不可用")
	}

	// 6. 依赖注入: Repository → Service
	a.jwtMgr = jwt.NewManager(&cfg.Auth)
	repo := repository.NewRepository(db)
	a.svc = service.NewService(cfg, repo, a.jwtMgr, deps, logger)

	return a, nil
}

// Close 释放数据库与 Redis 连接
func (a *app) Close() {
	if a.sqlDB != nil {
		a.sqlDB.Close()
	}
	if a.rdb != nil {
		a.rdb.Close()
	}
	a.logger.Sync()
}
