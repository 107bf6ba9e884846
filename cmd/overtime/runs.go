package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"overtime/internal/config"
	"overtime/internal/store"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "查看最近的计算历史",
	RunE:  runRuns,
}

func init() {
	runsCmd.Flags().IntVarP(&runsLimit, "limit", "n", 20, "显示条数")
}

func runRuns(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	if _, err := config.EnsureDataDir(cfg); err != nil {
		return fmt.Errorf("创建数据目录失败: %w", err)
	}
	st, err := store.New(config.GetDataPath(cfg, "", config.DatabaseFile))
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.ListRuns(runsLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "暂无计算记录")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "时间\t文件\t状态\t员工\t错误\t加班合计")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%.2f\n",
			r.CreatedAt.Local().Format("2006-01-02 15:04"), r.Filename, r.Status, r.Employees, r.ErrorCount, r.TotalHours)
	}
	return w.Flush()
}
