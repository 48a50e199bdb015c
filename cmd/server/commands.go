package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var importedBy string

var importCmd = &cobra.Command{
	Use:   "import <file.xlsx>",
	Short: "从 Excel 表格导入诊所、医生与联系记录",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("读取文件失败: %w", err)
		}

		a, err := bootstrap(cmd.Context(), configPath)
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.svc.Import.Import(cmd.Context(), filepath.Base(args[0]), data, importedBy)
		if err != nil {
			return err
		}
		a.logger.Info("导入完成",
			zap.Int("practices", result.PracticesImported),
			zap.Int("providers", result.ProvidersImported),
			zap.Int("skipped", result.SkippedRows),
			zap.Int("errors", len(result.Errors)),
		)
		return printJSON(result)
	},
}

var repairFaxCmd = &cobra.Command{
	Use:   "repair-fax-emails",
	Short: "按传真号码重新生成全部诊所的传真邮箱",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd.Context(), configPath)
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.svc.Practice.RepairFaxEmails(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "导出全量快照到 S3",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd.Context(), configPath)
		if err != nil {
			return err
		}
		defer a.Close()

		key, err := a.svc.Backup.Backup(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(key)
		return nil
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore <key>",
	Short: "从 S3 快照恢复数据（仅限没有诊所数据的空库）",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd.Context(), configPath)
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.svc.Backup.Restore(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

func init() {
	importCmd.Flags().StringVar(&importedBy, "by", "cli", "记录在导入批次上的操作人")
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
