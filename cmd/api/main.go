package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	_ "github.com/xiebiao/jpashop/docs" // Swagger文档
	"github.com/xiebiao/jpashop/pkg/tracing"
)

// @title           jpashop API
// @version         1.0
// @description     会员、商品、订单管理，以及订单列表的多种加载方式对比
// @host            localhost:8080
// @BasePath        /

// main 主程序入口
// 依赖注入由Wire生成(wire_gen.go)，这里只负责启动和优雅退出
func main() {
	app, cleanup, err := InitializeApp()
	if err != nil {
		log.Fatalf("初始化应用失败: %v", err)
	}
	defer cleanup()

	if err := run(app); err != nil {
		app.Logger.WithError(err).Error("服务异常退出")
	}
}

// run 启动HTTP服务，收到SIGINT/SIGTERM后优雅关闭
func run(app *App) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := app.Config
	logger := app.Logger

	if cfg.Tracing.Enabled {
		shutdown, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.Endpoint)
		if err != nil {
			return err
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				logger.WithError(err).Warn("关闭TracerProvider失败")
			}
		}()
		logger.WithField("endpoint", cfg.Tracing.Endpoint).Info("链路追踪已启用")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      app.Engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithFields(log.Fields{
			"addr":    srv.Addr,
			"mode":    cfg.Server.Mode,
			"swagger": fmt.Sprintf("http://localhost%s/swagger/index.html", srv.Addr),
		}).Info("服务启动成功")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info("收到退出信号，开始优雅关闭")
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("启动服务失败: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("关闭服务失败: %w", err)
	}
	logger.Info("服务已停止")
	return nil
}
