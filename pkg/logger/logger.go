package logger

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"
)

// LogLevel определяет уровень важности сообщения
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

var levelNames = []string{"DEBUG", "INFO", "WARN", "ERROR", "FATAL"}

// Color codes for console output
const (
	reset  = "\033[0m"
	red    = "\033[31m"
	green  = "\033[32m"
	yellow = "\033[33m"
	blue   = "\033[34m"
	purple = "\033[35m"
)

// Logger is a custom logging structure
type Logger struct {
	mu       sync.Mutex
	level    LogLevel
	output   io.Writer
	color    bool
	exitFunc func(int)
}

// New создает логгер, пишущий в stdout
func New(level LogLevel) *Logger {
	return &Logger{
		level:    level,
		output:   os.Stdout,
		color:    true,
		exitFunc: os.Exit,
	}
}

// NewWithWriter создает логгер без цветов, пишущий в w (удобно для тестов)
func NewWithWriter(level LogLevel, w io.Writer) *Logger {
	return &Logger{
		level:    level,
		output:   w,
		exitFunc: os.Exit,
	}
}

// Discard возвращает логгер, который ничего не пишет
func Discard() *Logger {
	return NewWithWriter(FATAL+1, io.Discard)
}

// ParseLevel переводит строку из конфигурации в LogLevel. Неизвестные значения дают INFO.
func ParseLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DEBUG
	case "warn", "warning":
		return WARN
	case "error":
		return ERROR
	case "fatal":
		return FATAL
	default:
		return INFO
	}
}

// getCallerInfo retrieves file and line of the caller
func getCallerInfo(skip int) (string, int) {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "???", 0
	}

	parts := strings.Split(file, "/")
	if len(parts) > 3 {
		file = strings.Join(parts[len(parts)-3:], "/")
	}

	return file, line
}

func colorForLevel(level LogLevel) string {
	switch level {
	case DEBUG:
		return blue
	case INFO:
		return green
	case WARN:
		return yellow
	case ERROR:
		return red
	case FATAL:
		return purple
	default:
		return reset
	}
}

// write форматирует и выводит строку лога. skip указывает глубину стека до вызывающего кода.
func (l *Logger) write(level LogLevel, skip int, msg string) {
	if level < l.level {
		return
	}

	file, line := getCallerInfo(skip)

	var entry string
	if l.color {
		entry = fmt.Sprintf("%s[%s]%s %s:%d - %s\n", colorForLevel(level), levelNames[level], reset, file, line, msg)
	} else {
		entry = fmt.Sprintf("[%s] %s:%d - %s\n", levelNames[level], file, line, msg)
	}

	l.mu.Lock()
	fmt.Fprint(l.output, entry)
	l.mu.Unlock()

	if level == FATAL {
		l.exitFunc(1)
	}
}

func (l *Logger) logf(level LogLevel, format string, v ...interface{}) {
	if level < l.level {
		return
	}
	l.write(level, 4, fmt.Sprintf(format, v...))
}

// logw пишет сообщение с парами ключ-значение: "msg key=value key2=value2"
func (l *Logger) logw(level LogLevel, msg string, keysAndValues ...interface{}) {
	if level < l.level {
		return
	}
	l.write(level, 4, msg+formatFields(keysAndValues))
}

func formatFields(kv []interface{}) string {
	if len(kv) == 0 {
		return ""
	}

	var b strings.Builder
	for i := 0; i < len(kv); i += 2 {
		b.WriteByte(' ')
		if i+1 >= len(kv) {
			fmt.Fprintf(&b, "%v=<missing>", kv[i])
			break
		}
		fmt.Fprintf(&b, "%v=%v", kv[i], kv[i+1])
	}
	return b.String()
}

// Debug logs a debug message
func (l *Logger) Debug(format string, v ...interface{}) {
	l.logf(DEBUG, format, v...)
}

// Info logs an info message
func (l *Logger) Info(format string, v ...interface{}) {
	l.logf(INFO, format, v...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, v ...interface{}) {
	l.logf(WARN, format, v...)
}

// Error logs an error message
func (l *Logger) Error(format string, v ...interface{}) {
	l.logf(ERROR, format, v...)
}

// Fatal logs a fatal message and exits
func (l *Logger) Fatal(format string, v ...interface{}) {
	l.logf(FATAL, format, v...)
}

// Debugw пишет debug-сообщение с полями
func (l *Logger) Debugw(msg string, keysAndValues ...interface{}) {
	l.logw(DEBUG, msg, keysAndValues...)
}

// Infow пишет info-сообщение с полями
func (l *Logger) Infow(msg string, keysAndValues ...interface{}) {
	l.logw(INFO, msg, keysAndValues...)
}

// Warnw пишет предупреждение с полями
func (l *Logger) Warnw(msg string, keysAndValues ...interface{}) {
	l.logw(WARN, msg, keysAndValues...)
}

// Errorw пишет ошибку с полями
func (l *Logger) Errorw(msg string, keysAndValues ...interface{}) {
	l.logw(ERROR, msg, keysAndValues...)
}

// Fatalw пишет сообщение с полями и завершает процесс
func (l *Logger) Fatalw(msg string, keysAndValues ...interface{}) {
	l.logw(FATAL, msg, keysAndValues...)
}
