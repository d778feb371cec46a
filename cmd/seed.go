package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/sellerops/wbsync/internal/config"
	"github.com/sellerops/wbsync/internal/db"
	"github.com/sellerops/wbsync/internal/model"
	"github.com/sellerops/wbsync/internal/repository"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with demo tenants",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		sqlDB, err := db.NewMySQLConnection(cfg.MySQL.DSN, db.MySQLOpts{
			MaxOpenConns:    cfg.MySQL.MaxOpenConns,
			MaxIdleConns:    cfg.MySQL.MaxIdleConns,
			ConnMaxLifetime: cfg.MySQL.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.MySQL.ConnMaxIdleTime,
			PingTimeout:     cfg.MySQL.PingTimeout,
		})
		if err != nil {
			return fmt.Errorf("mysql connect: %w", err)
		}
		defer sqlDB.Close()

		log.Println(">> Seeding demo tenants...")

		repo := repository.NewTenantsRepository(sqlDB)
		tenants := []model.Tenant{
			{Name: "demo-cabinet-1", Token: "demo-token-1"},
			{Name: "demo-cabinet-2", Token: "demo-token-2"},
		}
		for _, t := range tenants {
			if err := repo.Upsert(context.Background(), t); err != nil {
				return fmt.Errorf("seed tenant %q: %w", t.Name, err)
			}
		}

		log.Println(">> Seed completed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
