package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/username/worktime/internal/calendar"
	"github.com/username/worktime/internal/config"
	"github.com/username/worktime/internal/store"
	"github.com/username/worktime/internal/worktime"
)

var (
	configPath  string
	storageType string
	cfg         *config.Config
	logger      *zap.Logger
	out         io.Writer = os.Stdout
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "worktime",
		Short:         "Weekly work-time tracker",
		Long:          "Log work hours per day, track remaining hours against the Chinese working calendar and keep the last 12 weeks",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(configPath)
			if err != nil {
				return err
			}
			if storageType != "" {
				cfg.Storage.Type = storageType
				if err := cfg.Validate(); err != nil {
					return fmt.Errorf("invalid config: %w", err)
				}
			}

			if cfg.Log.File != "" {
				logger = initFileLogger(cfg.Log.File, cfg.Log.Level)
			} else {
				logger, err = initLogger(cfg.Log.Level)
				if err != nil {
					return err
				}
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (default ./config.yaml or ~/.worktime/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&storageType, "storage", "", "Override storage type: file, memory, sqlite or redis")

	rootCmd.AddCommand(
		weekCmd(),
		listCmd(),
		addCmd(),
		editCmd(),
		rmCmd(),
		deleteWeekCmd(),
		clearCmd(),
		cleanCmd(),
		holidayCmd(),
		linkCmd(),
		serveCmd(),
	)

	return rootCmd
}

// app holds the components shared by commands
type app struct {
	store    *store.Store
	primary  *calendar.HolidayCNCalendar
	holidays *calendar.Holidays
	service  *worktime.Service
}

func newApp(cfg *config.Config) (*app, error) {
	backend, err := openBackend(cfg.Storage)
	if err != nil {
		return nil, err
	}
	st := store.New(backend, logger)

	primary := calendar.NewHolidayCNCalendar(cfg.Calendar.YearURL, cfg.Calendar.CacheDir, cfg.Calendar.GetCacheTTL(), logger)
	fallback := calendar.NewChineseDaysCalendar(logger)
	if cfg.Calendar.FallbackFile != "" {
		if err := fallback.LoadFile(cfg.Calendar.FallbackFile); err != nil {
			logger.Warn("Failed to load fallback calendar file, continuing with embedded data",
				zap.String("file", cfg.Calendar.FallbackFile),
				zap.Error(err))
		}
	}
	holidays := calendar.NewDefaultHolidays(primary, fallback, logger)

	return &app{
		store:    st,
		primary:  primary,
		holidays: holidays,
		service:  worktime.NewService(st, holidays, logger),
	}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		logger.Warn("Failed to close storage", zap.Error(err))
	}
}

func openBackend(c config.StorageConfig) (store.Backend, error) {
	switch c.Type {
	case config.StorageMemory:
		return store.NewMemoryBackend(), nil
	case config.StorageSQLite:
		return store.OpenSQLiteBackend(c.SQLitePath)
	case config.StorageRedis:
		return store.NewRedisBackend(c.Redis.Addr, c.Redis.Password, c.Redis.DB, c.Redis.Prefix)
	case config.StorageFile:
		return store.NewFileBackend(c.Dir)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", c.Type)
	}
}

func initLogger(level string) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.Encoding = "console"

	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err == nil {
		config.Level = zap.NewAtomicLevelAt(zapLevel)
	}

	l, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return l, nil
}

func initFileLogger(logFile string, level string) *zap.Logger {
	logWriter := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    100, // MB
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(logWriter),
		zapLevel,
	)

	return zap.New(core)
}
