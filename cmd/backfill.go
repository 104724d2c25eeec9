/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>

*/
package cmd

import (
	"fmt"
	"log"

	"github.com/mautops/planflow-gin/internal/api"
	"github.com/mautops/planflow-gin/internal/config"
	"github.com/mautops/planflow-gin/internal/database"
	"github.com/mautops/planflow-gin/internal/service"
	"github.com/spf13/cobra"
)

// backfillCmd represents the backfill command
var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Backfill approval history from legacy assignments",
	Long: `Backfill the approval history ledger from the legacy approvalworkflow
assignment table. Assignments recorded before the ledger existed are
converted into history entries, with step numbers inferred from each
plan's assignment update order.

The command is idempotent: plan and approver combinations that already
have a ledger entry are skipped, so it can be re-run safely.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1. 加载配置
		configPath, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// 2. 连接数据库
		db, err := database.Connect(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to connect database: %w", err)
		}
		defer func() {
			sqlDB, _ := db.DB()
			if sqlDB != nil {
				sqlDB.Close()
			}
		}()

		// 3. 执行回填
		log.Println("Running approval history backfill...")
		backfill := service.NewBackfillService(db, api.GetLogger())
		result, err := backfill.Run()
		if err != nil {
			return fmt.Errorf("failed to run backfill: %w", err)
		}

		log.Printf("Backfill completed: %d assignments scanned, %d entries created, %d skipped, %d plans missing",
			result.AssignmentsScanned, result.EntriesCreated, result.EntriesSkipped, result.PlansMissing)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(backfillCmd)

	// 添加配置标志
	backfillCmd.Flags().String("config", "", "Config file path (default: search in current directory, ./config, or $HOME/.planflow-gin)")
}
