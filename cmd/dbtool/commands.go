package main

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"transport-ops-service/internal/adapters/events"
	"transport-ops-service/internal/adapters/export"
	"transport-ops-service/internal/adapters/repositories"
	"transport-ops-service/internal/config"
	"transport-ops-service/internal/domain"
	"transport-ops-service/internal/platform/db"
	"transport-ops-service/internal/platform/logger"
	"transport-ops-service/internal/ports"
	"transport-ops-service/internal/services"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	cfg         *config.Config
	databaseURL string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "dbtool",
		Short:         "Database maintenance for the transport ops service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := logger.Init(logger.Config{Debug: cfg.LogDebug, JSON: cfg.LogJSON, Dir: cfg.LogDir}); err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			if opts.databaseURL == "" {
				opts.databaseURL = cfg.DatabaseURL
			}
			opts.cfg = cfg
			return nil
		},
	}
	root.PersistentFlags().StringVar(&opts.databaseURL, "database-url", "", "Postgres URL (default $DATABASE_URL)")

	root.AddCommand(
		newMigrateCmd(opts),
		newSeedCmd(opts),
		newSyncWeekCmd(opts),
		newExportPayrollCmd(opts),
	)
	return root
}

func (o *rootOptions) open() (*sql.DB, error) {
	if strings.TrimSpace(o.databaseURL) == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	return db.Open(o.databaseURL)
}

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := opts.open()
			if err != nil {
				return err
			}
			defer conn.Close()

			logger.Info("initializing database schema")
			if err := repositories.InitSchema(cmd.Context(), conn); err != nil {
				return fmt.Errorf("schema initialization failed: %w", err)
			}
			logger.Info("schema ready")
			return nil
		},
	}
}

func newSeedCmd(opts *rootOptions) *cobra.Command {
	var seedPath string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the schema and load drivers and jobs from a JSON seed file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if seedPath == "" {
				seedPath = opts.cfg.SeedPath
			}

			conn, err := opts.open()
			if err != nil {
				return err
			}
			defer conn.Close()

			if err := repositories.InitSchema(cmd.Context(), conn); err != nil {
				return fmt.Errorf("schema initialization failed: %w", err)
			}
			logger.Info("seeding database", "path", seedPath)
			if err := repositories.SeedFromJSON(cmd.Context(), conn, seedPath); err != nil {
				return fmt.Errorf("seeding failed: %w", err)
			}
			logger.Info("seeding complete")
			return nil
		},
	}
	cmd.Flags().StringVar(&seedPath, "file", "", "seed file (default $SEED_PATH)")
	return cmd
}

func newSyncWeekCmd(opts *rootOptions) *cobra.Command {
	var week string

	cmd := &cobra.Command{
		Use:   "sync-week",
		Short: "Mark days with completed jobs as worked for one week",
		RunE: func(cmd *cobra.Command, args []string) error {
			monday, err := weekFlag(week)
			if err != nil {
				return err
			}

			conn, err := opts.open()
			if err != nil {
				return err
			}
			defer conn.Close()

			publisher, err := openPublisher(opts.cfg)
			if err != nil {
				return err
			}
			defer publisher.Close()

			svc := &services.SyncService{
				Entries: repositories.NewPostgresDayEntryStore(conn),
				Jobs:    repositories.NewPostgresJobRepository(conn),
				Events:  publisher,
			}
			report, err := svc.SyncWeek(cmd.Context(), monday)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "week %s: %d signals, %d created, %d skipped\n",
				domain.WeekLabel(report.WeekStart), report.Signals, report.Created, report.Skipped)
			return nil
		},
	}
	cmd.Flags().StringVar(&week, "week", "", "any date in the target week, YYYY-MM-DD (default: current week)")
	return cmd
}

func newExportPayrollCmd(opts *rootOptions) *cobra.Command {
	var (
		week     string
		outDir   string
		bucket   string
		s3Prefix string
	)

	cmd := &cobra.Command{
		Use:   "export-payroll",
		Short: "Write a week's payroll workbook to disk and optionally S3",
		RunE: func(cmd *cobra.Command, args []string) error {
			monday, err := weekFlag(week)
			if err != nil {
				return err
			}
			if bucket == "" {
				bucket = opts.cfg.S3Bucket
			}
			if outDir == "" {
				outDir = opts.cfg.ExportDir
			}
			if s3Prefix == "" {
				s3Prefix = opts.cfg.S3Prefix
			}

			conn, err := opts.open()
			if err != nil {
				return err
			}
			defer conn.Close()

			svc := &services.PayrollService{
				Drivers: repositories.NewPostgresDriverRepository(conn),
				Entries: repositories.NewPostgresDayEntryStore(conn),
				Payroll: repositories.NewPostgresPayrollStore(conn),
			}
			summaries, err := svc.Week(cmd.Context(), monday)
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			if err := export.WritePayrollWorkbook(&buf, monday, summaries); err != nil {
				return err
			}
			name := export.WorkbookName(monday)

			if outDir != "" {
				if err := os.MkdirAll(outDir, 0o755); err != nil {
					return err
				}
				path := filepath.Join(outDir, name)
				if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
					return fmt.Errorf("write %s: %w", path, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "wrote", path)
			}

			if bucket != "" {
				uploader, err := export.NewS3Uploader(cmd.Context(), opts.cfg.S3Region, bucket, s3Prefix)
				if err != nil {
					return err
				}
				key, err := uploader.Upload(cmd.Context(), name, buf.Bytes())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "uploaded s3://%s/%s\n", bucket, key)
			}

			if outDir == "" && bucket == "" {
				return errors.New("nothing to do: set --out and/or --s3-bucket")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&week, "week", "", "any date in the target week, YYYY-MM-DD (default: current week)")
	cmd.Flags().StringVar(&outDir, "out", "", "directory to write the workbook to (default $EXPORT_DIR)")
	cmd.Flags().StringVar(&bucket, "s3-bucket", "", "bucket to upload the workbook to (default $S3_BUCKET)")
	cmd.Flags().StringVar(&s3Prefix, "s3-prefix", "", "key prefix inside the bucket (default $S3_PREFIX or payroll)")
	return cmd
}

// weekFlag resolves --week to its Monday, defaulting to the current week.
func weekFlag(v string) (time.Time, error) {
	if strings.TrimSpace(v) == "" {
		return domain.WeekStart(time.Now().UTC()), nil
	}
	return domain.ParseWeekStart(v)
}

func openPublisher(cfg *config.Config) (ports.EventPublisher, error) {
	if brokers := cfg.Brokers(); len(brokers) > 0 {
		return events.NewSaramaPublisher(brokers, cfg.KafkaTopic)
	}
	return events.NoopPublisher{}, nil
}

func runWithContext(ctx context.Context, args []string) error {
	root := newRootCmd()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}
