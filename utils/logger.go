package utils

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"
)

var (
	InfoLogger  *log.Logger
	ErrorLogger *log.Logger
	DebugLogger *log.Logger

	loggerOnce sync.Once
	logDir     = "logs"
)

// SetLogDir задает директорию логов; вызывается до первой записи,
// после инициализации логгеров значение игнорируется
func SetLogDir(dir string) {
	if dir != "" {
		logDir = dir
	}
}

func ensureLoggers() {
	loggerOnce.Do(func() {
		// Создаем директорию для логов, если она не существует
		if err := os.MkdirAll(logDir, 0755); err != nil {
			log.Fatal("Failed to create log directory:", err)
		}

		openLog := func(name string) *os.File {
			f, err := os.OpenFile(filepath.Join(logDir, name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
			if err != nil {
				log.Fatalf("Failed to open log file %s: %v", name, err)
			}
			return f
		}

		flags := log.Ldate | log.Ltime | log.Lshortfile
		InfoLogger = log.New(openLog("info.log"), "INFO: ", flags)
		ErrorLogger = log.New(openLog("error.log"), "ERROR: ", flags)
		DebugLogger = log.New(openLog("debug.log"), "DEBUG: ", flags)
	})
}

// LogInfo логирует информационное сообщение
func LogInfo(format string, v ...interface{}) {
	ensureLoggers()
	_, file, line, _ := runtime.Caller(1)
	InfoLogger.Printf("%s:%d - %s", filepath.Base(file), line, fmt.Sprintf(format, v...))
}

// LogError логирует сообщение об ошибке
func LogError(format string, v ...interface{}) {
	ensureLoggers()
	_, file, line, _ := runtime.Caller(1)
	ErrorLogger.Printf("%s:%d - %s", filepath.Base(file), line, fmt.Sprintf(format, v...))
}

// LogDebug логирует отладочное сообщение
func LogDebug(format string, v ...interface{}) {
	ensureLoggers()
	_, file, line, _ := runtime.Caller(1)
	DebugLogger.Printf("%s:%d - %s", filepath.Base(file), line, fmt.Sprintf(format, v...))
}

// LogOperation логирует результат операции с ее длительностью
func LogOperation(operation string, startTime time.Time, err error) {
	duration := time.Since(startTime)
	if err != nil {
		LogError("Operation %s failed after %v: %v", operation, duration, err)
	} else {
		LogInfo("Operation %s completed in %v", operation, duration)
	}
}
