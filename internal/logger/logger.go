package logger

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const maxBufferSize = 1000

type Level string

const (
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

var (
	instance *Logger
	once     sync.Once
	initMu   sync.Mutex
)

type LogEntry struct {
	Timestamp time.Time
	Level     Level
	Message   string
}

// Logger keeps the last maxBufferSize entries in memory and, once Init has
// opened a file, mirrors every entry to it.
type Logger struct {
	file   *os.File
	logger *log.Logger
	mu     sync.Mutex
	buffer []LogEntry
}

func Init(logPath string) error {
	var initErr error
	once.Do(func() {
		if err := os.MkdirAll(filepath.Dir(logPath), 0700); err != nil {
			initErr = fmt.Errorf("failed to create log directory: %w", err)
			return
		}
		file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			initErr = fmt.Errorf("failed to open log file: %w", err)
			return
		}

		initMu.Lock()
		defer initMu.Unlock()
		instance = &Logger{
			file:   file,
			logger: log.New(file, "", log.LstdFlags),
			buffer: make([]LogEntry, 0, maxBufferSize),
		}
	})

	EnsureInit()
	return initErr
}

// EnsureInit installs a buffer-only logger when Init was never called.
func EnsureInit() {
	initMu.Lock()
	defer initMu.Unlock()
	if instance == nil {
		instance = &Logger{
			buffer: make([]LogEntry, 0, maxBufferSize),
		}
	}
}

func Close() error {
	initMu.Lock()
	defer initMu.Unlock()
	if instance != nil && instance.file != nil {
		instance.mu.Lock()
		defer instance.mu.Unlock()
		err := instance.file.Close()
		instance.file = nil
		instance.logger = nil
		return err
	}
	return nil
}

func write(level Level, message string) {
	EnsureInit()
	instance.mu.Lock()
	defer instance.mu.Unlock()

	if len(instance.buffer) >= maxBufferSize {
		instance.buffer = instance.buffer[1:]
	}
	instance.buffer = append(instance.buffer, LogEntry{
		Timestamp: time.Now(),
		Level:     level,
		Message:   message,
	})

	if instance.logger != nil {
		instance.logger.Printf("[%s] %s", level, message)
	}
}

func GetLogs() []LogEntry {
	EnsureInit()
	instance.mu.Lock()
	defer instance.mu.Unlock()

	logs := make([]LogEntry, len(instance.buffer))
	copy(logs, instance.buffer)
	return logs
}

func LogFileOpen(path string) {
	write(LevelInfo, fmt.Sprintf("[FILE_OPEN] %s", path))
}

func LogFileWrite(path string) {
	write(LevelInfo, fmt.Sprintf("[FILE_WRITE] %s", path))
}

// LogError records a failed operation on subject, which is a path, a
// remote name or a URL depending on the caller.
func LogError(operation, subject string, err error) {
	write(LevelError, fmt.Sprintf("%s: %s - %v", operation, subject, err))
}

func LogWarn(message string, args ...interface{}) {
	write(LevelWarn, fmt.Sprintf(message, args...))
}

func Log(message string, args ...interface{}) {
	write(LevelInfo, fmt.Sprintf(message, args...))
}
