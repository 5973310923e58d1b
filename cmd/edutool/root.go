package main

import (
	"ai_teaching_backend/internal/config"
	"ai_teaching_backend/pkg/database"
	"ai_teaching_backend/pkg/logger"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	brand  = color.New(color.FgHiGreen, color.Bold)
	subtle = color.New(color.FgHiBlack)
	good   = color.New(color.FgGreen)
	bad    = color.New(color.FgRed)
	warn   = color.New(color.FgYellow)
)

type globalOptions struct {
	configDir string
	verbose   bool
}

func rootCmd() *cobra.Command {
	opts := &globalOptions{}
	cmd := &cobra.Command{
		Use:           "edutool",
		Short:         "AI 教学平台运维工具",
		Long:          brand.Sprint("edutool") + " 初始化演示数据、清理与校验课程、渲染知识图谱",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.InitConsole(opts.verbose)
		},
	}
	cmd.PersistentFlags().StringVar(&opts.configDir, "config", "configs", "配置文件目录")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "输出调试日志")

	cmd.AddCommand(
		seedCmd(opts),
		cleanupCmd(opts),
		verifyCmd(opts),
		mockCmd(),
		renderCmd(),
	)

	return cmd
}

// openDB 加载配置并连接数据库，表结构不存在时自动迁移
func openDB(opts *globalOptions) (*gorm.DB, error) {
	cfg, err := config.LoadConfig(opts.configDir)
	if err != nil {
		return nil, fmt.Errorf("加载配置失败: %w", err)
	}
	db, err := database.Open(&cfg.Database, opts.verbose)
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}
	return db, nil
}
