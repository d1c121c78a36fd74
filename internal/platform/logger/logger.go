// Package logger provides structured logging for the audit server.
// Every act performed against the ledger should be traceable through this.
package logger

import (
	"log"
	"os"
)

// Logger provides structured logging with context.
type Logger struct {
	infoLogger  *log.Logger
	warnLogger  *log.Logger
	errorLogger *log.Logger
}

// NewLogger creates a new logger instance.
func NewLogger() *Logger {
	return &Logger{
		infoLogger:  log.New(os.Stdout, "[LOGOS-INFO] ", log.Ldate|log.Ltime|log.Lshortfile),
		warnLogger:  log.New(os.Stdout, "[LOGOS-WARN] ", log.Ldate|log.Ltime|log.Lshortfile),
		errorLogger: log.New(os.Stderr, "[LOGOS-ERROR] ", log.Ldate|log.Ltime|log.Lshortfile),
	}
}

// Info logs informational messages.
func (l *Logger) Info(message string) {
	l.infoLogger.Println(message)
}

// Warn logs warning messages.
func (l *Logger) Warn(message string) {
	l.warnLogger.Println(message)
}

// Error logs error messages.
func (l *Logger) Error(message string) {
	l.errorLogger.Println(message)
}

// Act logs a specific audit act for oversight.
func (l *Logger) Act(actType string, actorID string, details string) {
	l.infoLogger.Printf("[ACT:%s] Actor:%s | %s", actType, actorID, details)
}
