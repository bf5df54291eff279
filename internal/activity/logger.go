package activity

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode"
)

// TimestampLayout задает формат отметки времени в строке журнала.
const TimestampLayout = "2006-01-02T15:04:05.000-07:00"

// Logger дописывает действия пользователей в текстовый журнал.
// Ошибки записи не возвращаются вызывающему, а уходят в slog.
type Logger struct {
	mu     sync.Mutex
	path   string
	now    func() time.Time
	logger *slog.Logger
}

// NewLogger создает журнал действий по указанному пути.
func NewLogger(path string, logger *slog.Logger) *Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Logger{
		path:   path,
		now:    time.Now,
		logger: logger,
	}
}

// Log форматирует сообщение и добавляет строку "<timestamp> - <message>".
// Управляющие символы сообщения заменяются пробелами, одна запись всегда занимает одну строку.
// На nil-журнале ничего не делает.
func (l *Logger) Log(ctx context.Context, format string, args ...interface{}) {
	if l == nil {
		return
	}

	message := singleLine(fmt.Sprintf(format, args...))
	line := l.now().Format(TimestampLayout) + " - " + message + "\n"

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := appendLine(l.path, line); err != nil {
		l.logger.WarnContext(ctx, "activity log write failed",
			slog.String("path", l.path),
			slog.String("error", err.Error()),
		)
	}
}

func singleLine(message string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || r == '\u2028' || r == '\u2029' {
			return ' '
		}
		return r
	}, message))
}

func appendLine(path, line string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	if _, err := file.WriteString(line); err != nil {
		_ = file.Close()
		return err
	}

	return file.Close()
}
