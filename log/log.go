package log

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	cdkmmr "github.com/0xPolygon/cdk-mmr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const rotatingSinkScheme = "lumberjack"

// Logger is a wrapper providing logging facilities.
type Logger struct {
	x *zap.SugaredLogger
}

// root logger
var root atomic.Pointer[Logger]

var (
	registerSinkOnce sync.Once
	rotation         atomic.Pointer[RotationConfig]
)

func GetDefaultLogger() *Logger {
	l := root.Load()
	if l != nil {
		return l
	}
	// default level: debug
	zapLogger, _, err := NewLogger(
		Config{
			Environment: EnvironmentDevelopment,
			Level:       "debug",
			Outputs:     []string{"stderr"},
		})
	if err != nil {
		panic(err)
	}
	root.Store(&Logger{x: zapLogger})
	return root.Load()
}

// Init the logger with defined level. outputs defines the outputs where the
// logs will be sent. By default outputs contains "stdout", which prints the
// logs at the output of the process. To add a log file as output, the path
// should be added at the outputs array. To avoid printing the logs but storing
// them on a file, can use []string{"pathtofile.log"}
func Init(cfg Config) {
	zapLogger, _, err := NewLogger(cfg)
	if err != nil {
		panic(err)
	}
	root.Store(&Logger{x: zapLogger})
}

// NewLogger creates the logger with defined level. outputs defines the outputs where the
// logs will be sent. By default, outputs contains "stdout", which prints the
// logs at the output of the process. To add a log file as output, the path
// should be added at the outputs array. To avoid printing the logs but storing
// them on a file, can use []string{"pathtofile.log"}
func NewLogger(cfg Config) (*zap.SugaredLogger, *zap.AtomicLevel, error) {
	var level zap.AtomicLevel
	err := level.UnmarshalText([]byte(cfg.Level))
	if err != nil {
		return nil, nil, fmt.Errorf("error on setting log level: %w", err)
	}

	var zapCfg zap.Config

	switch cfg.Environment {
	case EnvironmentProduction:
		zapCfg = zap.NewProductionConfig()
	default:
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zapCfg.Level = level
	zapCfg.OutputPaths, err = outputPaths(cfg)
	if err != nil {
		return nil, nil, err
	}
	zapCfg.InitialFields = map[string]interface{}{
		"version": cdkmmr.Version,
		"pid":     os.Getpid(),
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, nil, err
	}
	defer logger.Sync() //nolint:errcheck

	// skip 2 callers: one for our wrapper methods and one for the package functions
	withOptions := logger.WithOptions(zap.AddCallerSkip(2)) //nolint:mnd
	return withOptions.Sugar(), &level, nil
}

// outputPaths routes file outputs through the rotating sink when rotation is enabled
func outputPaths(cfg Config) ([]string, error) {
	if len(cfg.Outputs) == 0 {
		return []string{"stderr"}, nil
	}
	if cfg.Rotation.MaxSize <= 0 {
		return cfg.Outputs, nil
	}
	var err error
	registerSinkOnce.Do(func() {
		err = zap.RegisterSink(rotatingSinkScheme, newRotatingSink)
	})
	if err != nil {
		return nil, fmt.Errorf("error registering rotating log sink: %w", err)
	}
	rotationCfg := cfg.Rotation
	rotation.Store(&rotationCfg)

	paths := make([]string, 0, len(cfg.Outputs))
	for _, output := range cfg.Outputs {
		if output == "stdout" || output == "stderr" || strings.Contains(output, "://") {
			paths = append(paths, output)
			continue
		}
		paths = append(paths, rotatingSinkScheme+":"+output)
	}
	return paths, nil
}

type rotatingSink struct {
	*lumberjack.Logger
}

func (rotatingSink) Sync() error {
	return nil
}

func newRotatingSink(u *url.URL) (zap.Sink, error) {
	filename := u.Opaque
	if filename == "" {
		filename = u.Path
	}
	if filename == "" {
		return nil, fmt.Errorf("missing file name in log output %s", u.String())
	}
	var cfg RotationConfig
	if r := rotation.Load(); r != nil {
		cfg = *r
	}
	return rotatingSink{
		Logger: &lumberjack.Logger{
			Filename:   filename,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		},
	}, nil
}

// WithFields returns a new Logger (derived from the root one) with additional
// fields as per keyValuePairs.  The root Logger instance is not affected.
func WithFields(keyValuePairs ...interface{}) *Logger {
	l := GetDefaultLogger().WithFields(keyValuePairs...)

	// since we are returning a new instance, remove one caller from the
	// stack, because we'll be calling the retruned Logger methods
	// directly, not the package functions.
	x := l.x.WithOptions(zap.AddCallerSkip(-1))
	l.x = x
	return l
}

// WithFields returns a new Logger with additional fields as per keyValuePairs.
// The original Logger instance is not affected.
func (l *Logger) WithFields(keyValuePairs ...interface{}) *Logger {
	return &Logger{
		x: l.x.With(keyValuePairs...),
	}
}

// GetSugaredLogger is a getter function that returns instance of already built zap.SugaredLogger.
func (l *Logger) GetSugaredLogger() *zap.SugaredLogger {
	return l.x
}
