package utils

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	logLevelDebugStringConstant          = "DEBUG"
	logLevelInfoStringConstant           = "INFO"
	logLevelWarningStringConstant        = "WARNING"
	logLevelErrorStringConstant          = "ERROR"
	logLevelCriticalStringConstant       = "CRITICAL"
	logDestinationStdoutStringConstant   = "stdout"
	logDestinationStderrStringConstant   = "stderr"
	encodedLevelDebugConstant            = "debug"
	encodedLevelInfoConstant             = "info"
	encodedLevelWarningConstant          = "warning"
	encodedLevelErrorConstant            = "error"
	encodedLevelCriticalConstant         = "critical"
	loggerNameKeyConstant                = "logger"
	levelKeyConstant                     = "level"
	messageKeyConstant                   = "event"
	isoTimestampKeyConstant              = "timestamp_iso_utc"
	epochTimestampKeyConstant            = "timestamp_epoch_time"
	stacktraceKeyConstant                = "stack"
	destinationOpenErrorTemplateConstant = "unable to open log destination %s: %w"
	nanosecondsPerSecondConstant         = float64(time.Second)
)

// LogLevel enumerates supported logging granularities.
type LogLevel string

// Exported log level constants for reuse across packages.
const (
	LogLevelDebug    LogLevel = LogLevel(logLevelDebugStringConstant)
	LogLevelInfo     LogLevel = LogLevel(logLevelInfoStringConstant)
	LogLevelWarning  LogLevel = LogLevel(logLevelWarningStringConstant)
	LogLevelError    LogLevel = LogLevel(logLevelErrorStringConstant)
	LogLevelCritical LogLevel = LogLevel(logLevelCriticalStringConstant)
)

// LogDestination identifies where log lines are written: stdout, stderr, or a file path.
type LogDestination string

// Exported log destination constants for the standard streams.
const (
	LogDestinationStdout LogDestination = LogDestination(logDestinationStdoutStringConstant)
	LogDestinationStderr LogDestination = LogDestination(logDestinationStderrStringConstant)
)

// LoggerSettings describes the requested logger behavior.
type LoggerSettings struct {
	Level       LogLevel
	Destination LogDestination
	Name        string
}

// LoggerFactory builds the process-wide zap.Logger and caches it after the first successful build.
type LoggerFactory struct {
	mutex        sync.Mutex
	cachedLogger *zap.Logger
	closeOutputs func()
}

var logLevelMapping = map[LogLevel]zapcore.Level{
	LogLevelDebug:    zapcore.DebugLevel,
	LogLevelInfo:     zapcore.InfoLevel,
	LogLevelWarning:  zapcore.WarnLevel,
	LogLevelError:    zapcore.ErrorLevel,
	LogLevelCritical: zapcore.DPanicLevel,
}

var encodedLevelMapping = map[zapcore.Level]string{
	zapcore.DebugLevel:  encodedLevelDebugConstant,
	zapcore.InfoLevel:   encodedLevelInfoConstant,
	zapcore.WarnLevel:   encodedLevelWarningConstant,
	zapcore.ErrorLevel:  encodedLevelErrorConstant,
	zapcore.DPanicLevel: encodedLevelCriticalConstant,
	zapcore.PanicLevel:  encodedLevelCriticalConstant,
	zapcore.FatalLevel:  encodedLevelCriticalConstant,
}

// NewLoggerFactory constructs a new logger factory.
func NewLoggerFactory() *LoggerFactory {
	return &LoggerFactory{}
}

// ParseLogLevel normalizes a textual level. Unset or unrecognized values resolve to LogLevelCritical.
func ParseLogLevel(levelValue string) LogLevel {
	candidateLevel := LogLevel(strings.ToUpper(strings.TrimSpace(levelValue)))
	if _, levelExists := logLevelMapping[candidateLevel]; levelExists {
		return candidateLevel
	}
	return LogLevelCritical
}

// ParseLogDestination normalizes a textual destination. Unset values resolve to LogDestinationStdout.
func ParseLogDestination(destinationValue string) LogDestination {
	trimmedValue := strings.TrimSpace(destinationValue)
	if len(trimmedValue) == 0 {
		return LogDestinationStdout
	}
	return LogDestination(trimmedValue)
}

// CreateLogger produces a JSON zap.Logger honoring the requested settings.
// The first successfully built logger is cached and returned by subsequent calls.
func (factory *LoggerFactory) CreateLogger(settings LoggerSettings) (*zap.Logger, error) {
	factory.mutex.Lock()
	defer factory.mutex.Unlock()

	if factory.cachedLogger != nil {
		return factory.cachedLogger, nil
	}

	destination := ParseLogDestination(string(settings.Destination))
	writeSyncer, closeOutputs, openError := zap.Open(string(destination))
	if openError != nil {
		return nil, fmt.Errorf(destinationOpenErrorTemplateConstant, destination, openError)
	}

	zapLogLevel := logLevelMapping[ParseLogLevel(string(settings.Level))]

	encoder := zapcore.NewJSONEncoder(newEncoderConfiguration())
	core := epochTimestampCore{Core: zapcore.NewCore(encoder, writeSyncer, zap.NewAtomicLevelAt(zapLogLevel))}

	logger := zap.New(core, zap.AddStacktrace(zapcore.DPanicLevel), zap.ErrorOutput(writeSyncer))
	if len(settings.Name) > 0 {
		logger = logger.Named(settings.Name)
	}

	factory.cachedLogger = logger
	factory.closeOutputs = closeOutputs

	return logger, nil
}

// Close releases file destinations opened by CreateLogger.
func (factory *LoggerFactory) Close() {
	factory.mutex.Lock()
	defer factory.mutex.Unlock()

	if factory.closeOutputs != nil {
		factory.closeOutputs()
		factory.closeOutputs = nil
	}
}

func newEncoderConfiguration() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		MessageKey:     messageKeyConstant,
		LevelKey:       levelKeyConstant,
		TimeKey:        isoTimestampKeyConstant,
		NameKey:        loggerNameKeyConstant,
		StacktraceKey:  stacktraceKeyConstant,
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    encodeLevelName,
		EncodeTime:     encodeUTCTimestamp,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeName:     zapcore.FullNameEncoder,
	}
}

func encodeLevelName(level zapcore.Level, encoder zapcore.PrimitiveArrayEncoder) {
	if encodedLevel, levelKnown := encodedLevelMapping[level]; levelKnown {
		encoder.AppendString(encodedLevel)
		return
	}
	encoder.AppendString(level.String())
}

func encodeUTCTimestamp(timestamp time.Time, encoder zapcore.PrimitiveArrayEncoder) {
	encoder.AppendString(timestamp.UTC().Format(time.RFC3339Nano))
}

// epochTimestampCore appends the epoch timestamp to every entry alongside the ISO timestamp.
type epochTimestampCore struct {
	zapcore.Core
}

func (core epochTimestampCore) With(fields []zapcore.Field) zapcore.Core {
	return epochTimestampCore{Core: core.Core.With(fields)}
}

func (core epochTimestampCore) Check(entry zapcore.Entry, checkedEntry *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if core.Enabled(entry.Level) {
		return checkedEntry.AddCore(entry, core)
	}
	return checkedEntry
}

func (core epochTimestampCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	epochSeconds := float64(entry.Time.UnixNano()) / nanosecondsPerSecondConstant
	extendedFields := make([]zapcore.Field, 0, len(fields)+1)
	extendedFields = append(extendedFields, zap.Float64(epochTimestampKeyConstant, epochSeconds))
	extendedFields = append(extendedFields, fields...)
	return core.Core.Write(entry, extendedFields)
}
