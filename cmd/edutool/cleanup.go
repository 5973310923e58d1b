package main

import (
	"ai_teaching_backend/internal/service"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func printCounts(w io.Writer, counts []service.TableCount) {
	for _, c := range counts {
		n := subtle.Sprint(c.Count)
		if c.Count > 0 {
			n = warn.Sprint(c.Count)
		}
		fmt.Fprintf(w, "  %-28s %s\n", c.Table, n)
	}
}

func cleanupCmd(opts *globalOptions) *cobra.Command {
	var code string
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "按依赖顺序删除课程及其章节、知识点、选课和进度",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(opts)
			if err != nil {
				return err
			}

			bar := newBar(cmd.ErrOrStderr(), service.CleanupSteps, "cleanup")
			svc := service.NewSeedService(db)
			svc.OnStep = func(step string) {
				bar.Describe(step)
				_ = bar.Add(1)
			}

			counts, err := svc.Cleanup(code)
			_ = bar.Finish()
			if err != nil {
				return fmt.Errorf("清理课程 %s 失败: %w", code, err)
			}

			out := cmd.OutOrStdout()
			if service.Empty(counts) {
				warn.Fprintf(out, "! 课程 %s 不存在，无需清理\n", code)
				return nil
			}
			good.Fprintf(out, "✓ 课程 %s 已删除\n", code)
			printCounts(out, counts)
			return nil
		},
	}
	cmd.Flags().StringVar(&code, "code", service.DefaultSeedCourseCode, "课程代码")
	return cmd
}

func verifyCmd(opts *globalOptions) *cobra.Command {
	var (
		code        string
		expectEmpty bool
	)
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "统计课程相关各表的行数",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(opts)
			if err != nil {
				return err
			}
			counts, err := service.NewSeedService(db).Verify(code)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			brand.Fprintf(out, "课程 %s\n", code)
			printCounts(out, counts)

			if expectEmpty && !service.Empty(counts) {
				return fmt.Errorf("课程 %s 仍有残留数据", code)
			}
			if expectEmpty {
				good.Fprintln(out, "✓ 已清理干净")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&code, "code", service.DefaultSeedCourseCode, "课程代码")
	cmd.Flags().BoolVar(&expectEmpty, "expect-empty", false, "存在残留数据时以非零状态退出")
	return cmd
}
