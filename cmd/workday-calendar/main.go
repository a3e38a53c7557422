package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/username/workday-calendar/internal/calendar"
	"github.com/username/workday-calendar/internal/config"
	"github.com/username/workday-calendar/internal/daemon"
	"github.com/username/workday-calendar/internal/httpapi"
	"github.com/username/workday-calendar/internal/metrics"
	"github.com/username/workday-calendar/internal/store"
	"github.com/username/workday-calendar/pkg/apperrors"
)

var (
	configPath string
	logger     = zap.NewNop()
	out        io.Writer = os.Stdout
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "workday-calendar",
		Short:        "Taiwan holiday and workday lookup",
		Long:         "Resolve dates against the published Taiwan government calendar: holidays, makeup workdays and upcoming days off",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg, err := config.Load(configPath)
			if err != nil {
				initLogger(config.LogConfig{})
				return
			}
			if cfg.Log.File != "" {
				logger = initFileLogger(cfg.Log)
				return
			}
			initLogger(cfg.Log)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path")

	rootCmd.AddCommand(checkCmd(), workdayCmd(), upcomingCmd(), yearCmd(), serveCmd())

	return rootCmd
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <date>",
		Short: "Show calendar data for a date (YYYYMMDD or YYYY-MM-DD)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSafely(func() error {
				svc, err := buildService()
				if err != nil {
					return err
				}
				defer svc.Close()
				return printJSON(svc.resolver.ResolveDate(cmd.Context(), args[0]))
			})
		},
	}
}

func workdayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "workday <date>",
		Short: "Report whether a date is a working day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSafely(func() error {
				svc, err := buildService()
				if err != nil {
					return err
				}
				defer svc.Close()
				return printJSON(svc.resolver.IsWorkday(cmd.Context(), args[0]))
			})
		},
	}
}

func upcomingCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "upcoming",
		Short: "List the next holidays from today",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSafely(func() error {
				svc, err := buildService()
				if err != nil {
					return err
				}
				defer svc.Close()
				return printJSON(svc.resolver.UpcomingHolidays(cmd.Context(), limit))
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", calendar.DefaultUpcomingLimit, "Maximum number of holidays")

	return cmd
}

func yearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "year <yyyy>",
		Short: "Dump every record published for a year",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := strconv.Atoi(args[0])
			if err != nil || len(args[0]) != 4 {
				return fmt.Errorf("year must be four digits, got %q", args[0])
			}
			return runSafely(func() error {
				svc, err := buildService()
				if err != nil {
					return err
				}
				defer svc.Close()
				data := svc.resolver.YearHolidays(cmd.Context(), year)
				if data == nil {
					data = calendar.YearDataSet{}
				}
				return printJSON(data)
			})
		},
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API with background cache refresh",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			if cfg.HTTP.ReleaseMode {
				gin.SetMode(gin.ReleaseMode)
			}

			m := metrics.New()
			svc, err := buildServiceWith(cfg, m)
			if err != nil {
				return err
			}
			defer svc.Close()
			loc, _ := cfg.Calendar.Location()

			router := httpapi.NewRouter(svc.resolver, m, logger)
			d := daemon.NewDaemon(router, svc.cache, daemon.Options{
				Addr:            cfg.HTTP.Addr,
				ReadTimeout:     cfg.HTTP.GetReadTimeout(),
				WriteTimeout:    cfg.HTTP.GetWriteTimeout(),
				RefreshInterval: cfg.Calendar.GetRefreshInterval(),
				Location:        loc,
			}, logger)

			return d.Start()
		},
	}
}

// service is the wired resolver plus the resources it holds
type service struct {
	resolver *calendar.Resolver
	cache    *calendar.CachedSource
	shared   *store.RedisStore
}

// Close releases the shared cache connection, if any
func (s *service) Close() {
	if s.shared == nil {
		return
	}
	if err := s.shared.Close(); err != nil {
		logger.Warn("Failed to close redis connection", zap.Error(err))
	}
}

func buildService() (*service, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return buildServiceWith(cfg, nil)
}

// buildServiceWith wires remote source, optional file fallback, cache and
// optional Redis store into a resolver.
func buildServiceWith(cfg *config.Config, m *metrics.Metrics) (*service, error) {
	loc, err := cfg.Calendar.Location()
	if err != nil {
		return nil, err
	}

	var source calendar.Source = calendar.NewRemoteSource(
		cfg.Calendar.SourceURL,
		cfg.Calendar.GetTimeout(),
		logger,
		calendar.WithRateLimit(cfg.Calendar.RateLimit, cfg.Calendar.RateBurst),
		calendar.WithRemoteMetrics(m),
	)

	if cfg.Calendar.FallbackPath != "" {
		fallback := calendar.NewFileSource(cfg.Calendar.FallbackPath, m, logger)
		source = calendar.NewCompositeSource(source, fallback, logger)
	}

	svc := &service{}
	cacheOpts := []calendar.CacheOption{calendar.WithCacheMetrics(m)}
	if cfg.Redis.Enabled {
		client, err := store.NewRedisClient(cfg.Redis)
		if err != nil {
			// the shared cache is an optimisation; run without it
			logger.Warn("Redis unavailable, continuing without shared cache", zap.Error(err))
		} else {
			svc.shared = store.NewRedisStore(client, cfg.Redis.GetTTL(), logger)
			cacheOpts = append(cacheOpts, calendar.WithYearStore(svc.shared))
		}
	}

	svc.cache = calendar.NewCachedSource(source, cfg.Calendar.GetCacheTTL(), logger, cacheOpts...)
	svc.resolver = calendar.NewResolver(svc.cache, logger, calendar.WithLocation(loc))

	return svc, nil
}

// runSafely turns a panic into a JSON INTERNAL_ERROR payload on stdout
func runSafely(fn func() error) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			appErr := apperrors.FromPanic(recovered)
			logger.Error("Command panicked", zap.Error(appErr.Err), zap.Stack("stack"))
			err = printJSON(map[string]*apperrors.Error{"error": appErr})
		}
	}()
	return fn()
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	return nil
}

func initLogger(cfg config.LogConfig) {
	zapConfig := zap.NewProductionConfig()
	if cfg.Format == "console" {
		zapConfig.Encoding = "console"
	}
	zapConfig.EncoderConfig.TimeKey = "timestamp"
	zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapConfig.Level = zap.NewAtomicLevelAt(parseLevel(cfg.Level))

	var err error
	logger, err = zapConfig.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
}

func initFileLogger(cfg config.LogConfig) *zap.Logger {
	logWriter := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    100, // MB
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	encoder := zapcore.NewJSONEncoder(encoderConfig)
	if cfg.Format == "console" {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(logWriter), parseLevel(cfg.Level))

	return zap.New(core)
}

func parseLevel(level string) zapcore.Level {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		return zapcore.InfoLevel
	}
	return zapLevel
}
