package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"referral-outreach/backend/internal/api/handler"
	"referral-outreach/backend/internal/api/router"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "outreach",
	Short:         "转诊外联 CRM 后端",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "启动 HTTP API 服务",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "配置文件路径（默认 ./config.yaml）")
	rootCmd.AddCommand(serveCmd, importCmd, repairFaxCmd, backupCmd, restoreCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func runServe() error {
	// 1~6. 配置、日志、数据库、Redis、外部存储与 Service
	a, err := bootstrap(context.Background(), configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	logger := a.logger
	cfg := a.cfg

	// 7. 初始化 Handler 与路由
	h := handler.NewHandler(a.svc, cfg.Server.MaxUploadSize)
	engine := router.Setup(cfg, h, a.jwtMgr, a.rdb, logger)

	// 8. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// 9. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))
	case err := <-errCh:
		logger.Error("HTTP 服务器异常", zap.Error(err))
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	logger.Info("服务器已关闭")
	return nil
}
