package main

import (
	"ai_teaching_backend/internal/mock"
	"ai_teaching_backend/pkg/logger"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func mockCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "mock",
		Short: "启动模拟课程接口，响应形状在数组、data、嵌套三种之间轮换",
		RunE: func(cmd *cobra.Command, args []string) error {
			gin.SetMode(gin.ReleaseMode)
			srv := &http.Server{Addr: addr, Handler: mock.NewServer().Router()}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.ListenAndServe()
			}()
			brand.Fprintf(cmd.OutOrStdout(), "mock API listening on %s\n", addr)
			fmt.Fprintln(cmd.OutOrStdout(), subtle.Sprint("  GET /api/student/courses  /api/chapters?courseId=  /api/knowledge-points?courseId=  (?shape=array|data|nested)"))

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Log.Warn("mock server shutdown", zap.Error(err))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8081", "监听地址")
	return cmd
}
