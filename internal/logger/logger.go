package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log — глобальный логгер приложения. До вызова Init пишет в stderr с настройками по умолчанию.
var Log = logrus.New()

// Options задают уровень, формат и файл с ротацией.
type Options struct {
	Level    string
	Text     bool
	FilePath string
}

// Init инициализирует структурированный логгер.
func Init(opts Options) {
	Log = logrus.New()

	lvl, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)

	// JSON для production, text для development
	if opts.Text {
		Log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		Log.SetFormatter(&logrus.JSONFormatter{})
	}

	if opts.FilePath != "" {
		Log.SetOutput(io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   opts.FilePath,
			MaxSize:    10, // MB
			MaxBackups: 5,
			MaxAge:     30, // дней
			Compress:   true,
		}))
	} else {
		Log.SetOutput(os.Stdout)
	}
}
