package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/anoixa/memory-lane/config"
	"github.com/anoixa/memory-lane/database"
	"github.com/anoixa/memory-lane/database/models"
)

// migrateCmd 数据库迁移命令
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Database migration tools",
	Long: `Apply the schema to the configured database and exit.

Use "migrate copy" to move data from one database to another (e.g., SQLite to PostgreSQL).`,
	Run: func(cmd *cobra.Command, args []string) {
		factory, err := database.NewFactory(config.Get())
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer func() { _ = factory.Close() }()

		if err := factory.AutoMigrate(); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
	},
}

// migrateCopyCmd 在两个数据库之间复制数据
var migrateCopyCmd = &cobra.Command{
	Use:   "copy",
	Short: "Copy all data from a source database to a target database",
	Long: `Copy users, memory lanes, events and images from source to target database.

Examples:
  # Migrate from SQLite to PostgreSQL
  memory-lane migrate copy --from-type sqlite --from-dsn ./data/memory-lane.db \
    --to-type postgres --to-dsn "host=localhost user=postgres password=secret dbname=memory_lane port=5432"

  # Replace rows that already exist in the target
  memory-lane migrate copy ... --on-conflict=overwrite`,
	Run: func(cmd *cobra.Command, args []string) {
		opts := copyOptions{}
		opts.fromType, _ = cmd.Flags().GetString("from-type")
		opts.toType, _ = cmd.Flags().GetString("to-type")
		opts.fromDSN, _ = cmd.Flags().GetString("from-dsn")
		opts.toDSN, _ = cmd.Flags().GetString("to-dsn")
		opts.batchSize, _ = cmd.Flags().GetInt("batch-size")
		opts.onConflict, _ = cmd.Flags().GetString("on-conflict")
		skipConfirm, _ := cmd.Flags().GetBool("yes")

		if err := opts.validate(); err != nil {
			log.Fatalf("Invalid arguments: %v", err)
		}
		if !skipConfirm && !confirm(cmd, opts) {
			fmt.Fprintln(cmd.OutOrStdout(), "Migration cancelled.")
			return
		}

		source, err := openDatabase(opts.fromType, opts.fromDSN)
		if err != nil {
			log.Fatalf("Failed to connect to source database: %v", err)
		}
		defer closeDatabase(source)

		target, err := openDatabase(opts.toType, opts.toDSN)
		if err != nil {
			log.Fatalf("Failed to connect to target database: %v", err)
		}
		defer closeDatabase(target)

		stats, err := copyDatabase(cmd.Context(), source, target, opts)
		printMigrateStats(cmd, stats)
		if err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		log.Info("Migration completed successfully!")
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateCopyCmd)

	migrateCopyCmd.Flags().String("from-type", "", "Source database type (sqlite, postgres, mysql)")
	migrateCopyCmd.Flags().String("to-type", "", "Target database type (sqlite, postgres, mysql)")
	migrateCopyCmd.Flags().String("from-dsn", "", "Source database DSN/connection string")
	migrateCopyCmd.Flags().String("to-dsn", "", "Target database DSN/connection string")
	migrateCopyCmd.Flags().Bool("yes", false, "Skip confirmation prompt")
	migrateCopyCmd.Flags().Int("batch-size", 100, "Batch size for data migration")
	migrateCopyCmd.Flags().String("on-conflict", "skip", "Conflict resolution strategy: skip (default), overwrite, error")
}

type copyOptions struct {
	fromType, toType string
	fromDSN, toDSN   string
	batchSize        int
	onConflict       string
}

func (o *copyOptions) validate() error {
	switch o.onConflict {
	case "skip", "overwrite", "error":
	default:
		return fmt.Errorf("invalid on-conflict strategy: %s (must be skip, overwrite, or error)", o.onConflict)
	}
	if o.fromType == "" || o.toType == "" {
		return errors.New("both --from-type and --to-type are required")
	}
	if o.fromDSN == "" || o.toDSN == "" {
		return errors.New("both --from-dsn and --to-dsn are required")
	}
	if o.fromType == o.toType && o.fromDSN == o.toDSN {
		return errors.New("source and target databases are the same")
	}
	if o.batchSize <= 0 {
		o.batchSize = 100
	}
	return nil
}

func confirm(cmd *cobra.Command, opts copyOptions) bool {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nWarning: this will copy all data from %s (%s) to %s (%s).\n",
		opts.fromType, maskDSN(opts.fromDSN), opts.toType, maskDSN(opts.toDSN))
	fmt.Fprintf(out, "Conflict resolution strategy: %s\n", opts.onConflict)
	fmt.Fprint(out, "Do you want to continue? [y/N]: ")

	response, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	response = strings.TrimSpace(response)
	return response == "y" || response == "Y"
}

// migrateStats 迁移统计
type migrateStats struct {
	users  int64
	lanes  int64
	events int64
	images int64
}

// copyDatabase 按外键顺序复制所有表
func copyDatabase(ctx context.Context, source, target *gorm.DB, opts copyOptions) (*migrateStats, error) {
	stats := &migrateStats{}

	log.Info("Migrating database schema...")
	if err := target.WithContext(ctx).AutoMigrate(models.All()...); err != nil {
		return stats, fmt.Errorf("failed to migrate schema: %w", err)
	}

	steps := []struct {
		name string
		run  func() (int64, error)
		dst  *int64
	}{
		{"users", func() (int64, error) { return copyTable[models.User](ctx, source, target, opts) }, &stats.users},
		{"memory lanes", func() (int64, error) { return copyTable[models.MemoryLane](ctx, source, target, opts) }, &stats.lanes},
		{"events", func() (int64, error) { return copyTable[models.Event](ctx, source, target, opts) }, &stats.events},
		{"images", func() (int64, error) { return copyTable[models.Image](ctx, source, target, opts) }, &stats.images},
	}

	for _, step := range steps {
		log.Infof("Migrating %s...", step.name)
		n, err := step.run()
		*step.dst = n
		if err != nil {
			return stats, fmt.Errorf("%s migration failed: %w", step.name, err)
		}
		log.Infof("Migrated %d %s", n, step.name)
	}
	return stats, nil
}

// copyTable 分批读取源表并写入目标表，关联由各自的表单独复制
func copyTable[T any](ctx context.Context, source, target *gorm.DB, opts copyOptions) (int64, error) {
	var copied int64
	var rows []T

	result := source.WithContext(ctx).FindInBatches(&rows, opts.batchSize, func(tx *gorm.DB, batch int) error {
		insert := target.WithContext(ctx).Omit(clause.Associations)
		switch opts.onConflict {
		case "skip":
			insert = insert.Clauses(clause.OnConflict{DoNothing: true})
		case "overwrite":
			insert = insert.Clauses(clause.OnConflict{UpdateAll: true})
		}

		res := insert.Create(&rows)
		if res.Error != nil {
			return res.Error
		}
		copied += res.RowsAffected
		return nil
	})
	return copied, result.Error
}

// openDatabase 打开数据库连接
func openDatabase(dbType, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch dbType {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres", "postgresql":
		dialector = postgres.Open(dsn)
	case "mysql":
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", dbType)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	// 设置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

func closeDatabase(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// maskDSN 隐藏敏感信息
func maskDSN(dsn string) string {
	if len(dsn) > 50 {
		return dsn[:50] + "..."
	}
	return dsn
}

// printMigrateStats 打印迁移统计
func printMigrateStats(cmd *cobra.Command, stats *migrateStats) {
	if stats == nil {
		return
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	fmt.Fprintln(out, "========================================")
	fmt.Fprintln(out, "       Migration Statistics")
	fmt.Fprintln(out, "========================================")
	fmt.Fprintf(out, "Users migrated:        %d\n", stats.users)
	fmt.Fprintf(out, "Memory lanes migrated: %d\n", stats.lanes)
	fmt.Fprintf(out, "Events migrated:       %d\n", stats.events)
	fmt.Fprintf(out, "Images migrated:       %d\n", stats.images)
	fmt.Fprintln(out, "========================================")
}
