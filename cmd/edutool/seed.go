package main

import (
	"ai_teaching_backend/internal/service"
	"ai_teaching_backend/pkg/logger"
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newBar(w io.Writer, total int, desc string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(desc),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func seedCmd(opts *globalOptions) *cobra.Command {
	var code string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "写入演示用户、课程、章节和知识点（可重复执行）",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(opts)
			if err != nil {
				return err
			}

			bar := newBar(cmd.ErrOrStderr(), service.SeedSteps(), "seeding")
			svc := service.NewSeedService(db)
			svc.OnStep = func(step string) {
				bar.Describe(step)
				_ = bar.Add(1)
			}

			report, err := svc.Seed(code)
			_ = bar.Finish()
			if err != nil {
				return fmt.Errorf("写入演示数据失败: %w", err)
			}
			logger.Log.Debug("seed finished", zap.Any("report", report))

			out := cmd.OutOrStdout()
			good.Fprintf(out, "✓ 演示数据已就绪\n")
			fmt.Fprintf(out, "  %s %s\n", subtle.Sprintf("%-16s", "course"), report.CourseID)
			fmt.Fprintf(out, "  %s %d\n", subtle.Sprintf("%-16s", "chapters"), report.Chapters)
			fmt.Fprintf(out, "  %s %d\n", subtle.Sprintf("%-16s", "knowledge points"), report.KnowledgePoints)
			fmt.Fprintf(out, "  %s %d\n", subtle.Sprintf("%-16s", "new rows"), report.Created)
			fmt.Fprintf(out, "  %s teacher1@example.com / teacher123\n", subtle.Sprintf("%-16s", "teacher"))
			fmt.Fprintf(out, "  %s student1@example.com / student123\n", subtle.Sprintf("%-16s", "student"))
			return nil
		},
	}
	cmd.Flags().StringVar(&code, "code", service.DefaultSeedCourseCode, "课程代码")
	return cmd
}
