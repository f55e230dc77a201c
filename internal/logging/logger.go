package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Settings controls where the file logs go and how they rotate. Zero values
// fall back to the defaults below so a partially filled config still works.
type Settings struct {
	Directory  string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

func (s Settings) withDefaults() Settings {
	if s.Directory == "" {
		s.Directory = "logs"
	}
	if s.MaxSizeMB <= 0 {
		s.MaxSizeMB = 10
	}
	if s.MaxBackups <= 0 {
		s.MaxBackups = 3
	}
	if s.MaxAgeDays <= 0 {
		s.MaxAgeDays = 7
	}
	return s
}

// fileLevels lists the levels that get their own rotating file. Each core
// writes exactly one level, so a noisy debug stream never buries the errors.
var fileLevels = []zapcore.Level{
	zapcore.DebugLevel,
	zapcore.InfoLevel,
	zapcore.WarnLevel,
	zapcore.ErrorLevel,
}

// Init builds the application logger: one rotating JSON file per level plus
// a colored console stream.
func Init(s Settings) (*zap.Logger, error) {
	s = s.withDefaults()

	if err := os.MkdirAll(s.Directory, 0755); err != nil {
		return nil, fmt.Errorf("could not create log directory: %w", err)
	}

	encoderConfig := zapcore.EncoderConfig{
		MessageKey:   "message",
		LevelKey:     "level",
		TimeKey:      "time",
		CallerKey:    "caller",
		EncodeLevel:  zapcore.CapitalLevelEncoder,
		EncodeTime:   zapcore.ISO8601TimeEncoder,
		EncodeCaller: zapcore.ShortCallerEncoder,
	}

	cores := make([]zapcore.Core, 0, len(fileLevels)+1)
	for _, level := range fileLevels {
		cores = append(cores, newFileCore(s, level, encoderConfig))
	}
	cores = append(cores, newConsoleCore())

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()), nil
}

// newFileCore writes a single level to a rotating file named like
// '2025-07-30-info.log'.
func newFileCore(s Settings, level zapcore.Level, encoderConfig zapcore.EncoderConfig) zapcore.Core {
	fileName := filepath.Join(s.Directory, fmt.Sprintf("%s-%s.log", time.Now().Format("2006-01-02"), level.String()))

	writer := zapcore.AddSync(&lumberjack.Logger{
		Filename:   fileName,
		MaxSize:    s.MaxSizeMB,
		MaxBackups: s.MaxBackups,
		MaxAge:     s.MaxAgeDays,
		Compress:   s.Compress,
	})

	// Exact-level match only; the other levels have their own cores.
	levelEnabler := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return l == level
	})

	return zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), writer, levelEnabler)
}

// newConsoleCore writes everything from Debug up to stdout in a
// human-readable format.
func newConsoleCore() zapcore.Core {
	levelEnabler := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return l >= zapcore.DebugLevel
	})

	consoleEncoderConfig := zap.NewDevelopmentEncoderConfig()
	consoleEncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder

	return zapcore.NewCore(
		zapcore.NewConsoleEncoder(consoleEncoderConfig),
		zapcore.AddSync(os.Stdout),
		levelEnabler,
	)
}
