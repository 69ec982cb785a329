package logger

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger 封装 zap，提供交易域的结构化日志入口。
type Logger struct {
	*zap.Logger
	config Config
}

// Config 日志配置
type Config struct {
	Level      string   `yaml:"level"`       // debug, info, warn, error
	Outputs    []string `yaml:"outputs"`     // stdout, file
	OutputFile string   `yaml:"output_file"` // 日志文件路径
	Format     string   `yaml:"format"`      // json 或 console
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Level:   "info",
		Outputs: []string{"stdout"},
		Format:  "console",
	}
}

// New 创建 Logger 实例
func New(cfg Config) (*Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %s: %w", cfg.Level, err)
	}

	var encoderConfig zapcore.EncoderConfig
	if cfg.Format == "console" {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	} else {
		encoderConfig = zap.NewProductionEncoderConfig()
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	cores := []zapcore.Core{}

	if contains(cfg.Outputs, "stdout") {
		var encoder zapcore.Encoder
		if cfg.Format == "console" {
			encoder = zapcore.NewConsoleEncoder(encoderConfig)
		} else {
			encoder = zapcore.NewJSONEncoder(encoderConfig)
		}
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), level))
	}

	if contains(cfg.Outputs, "file") && cfg.OutputFile != "" {
		fileWriter, err := os.OpenFile(cfg.OutputFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("open log file failed: %w", err)
		}
		encoder := zapcore.NewJSONEncoder(encoderConfig)
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(fileWriter), level))
	}

	core := zapcore.NewTee(cores...)
	zapLogger := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))

	return &Logger{Logger: zapLogger, config: cfg}, nil
}

// Nop 返回丢弃一切输出的 Logger（测试/可选注入用）。
func Nop() *Logger {
	return &Logger{Logger: zap.NewNop()}
}

// LogOpportunity 记录一次套利探测命中。
func (l *Logger) LogOpportunity(pair, side string, price float64, volume int) {
	l.Info("opportunity",
		zap.String("pair", pair),
		zap.String("side", side),
		zap.Float64("price", price),
		zap.Int("volume", volume))
}

// LogOrder 记录发出的 IOC 报单。
func (l *Logger) LogOrder(instrument, side string, price float64, volume int) {
	l.Info("order_inserted",
		zap.String("instrument", instrument),
		zap.String("side", side),
		zap.Float64("price", price),
		zap.Int("volume", volume))
}

// LogHedge 记录对冲/中和动作。
func (l *Logger) LogHedge(instrument, side string, volume, residual int) {
	l.Info("hedge",
		zap.String("instrument", instrument),
		zap.String("side", side),
		zap.Int("volume", volume),
		zap.Int("residual", residual))
}

// LogRisk 记录被风控拦下的报单。
func (l *Logger) LogRisk(instrument, side string, volume int, reason error) {
	l.Warn("order_blocked",
		zap.String("instrument", instrument),
		zap.String("side", side),
		zap.Int("volume", volume),
		zap.Error(reason))
}

// Close 刷新并关闭日志器。
func (l *Logger) Close() error {
	return l.Sync()
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
