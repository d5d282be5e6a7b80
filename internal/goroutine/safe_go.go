package goroutine

import (
	"runtime/debug"

	"github.com/sirupsen/logrus"
)

// Logger интерфейс для логирования ошибок
type Logger interface {
	Errorf(format string, args ...interface{})
}

// RecoveryHandler обрабатывает panic в горутинах
type RecoveryHandler struct {
	logger Logger
}

// NewRecoveryHandler создает новый обработчик
func NewRecoveryHandler(logger Logger) *RecoveryHandler {
	return &RecoveryHandler{logger: logger}
}

// Go запускает fn в отдельной горутине; panic логируется вместе со стеком и не роняет процесс.
func (rh *RecoveryHandler) Go(fn func()) {
	go rh.run(fn)
}

func (rh *RecoveryHandler) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			rh.logger.Errorf("Panic in goroutine: %v\nStack trace:\n%s", r, debug.Stack())
		}
	}()
	fn()
}

var defaultHandler = NewRecoveryHandler(logrus.StandardLogger())

// SetLogger меняет логгер обработчика по умолчанию.
func SetLogger(l Logger) {
	defaultHandler = NewRecoveryHandler(l)
}

// SafeGo - упрощенная функция для запуска безопасной горутины
func SafeGo(fn func()) {
	defaultHandler.Go(fn)
}
