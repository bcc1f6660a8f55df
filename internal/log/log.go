package log

import (
	"io"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

var logger = newLogger(os.Stdout)

func newLogger(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05Z07:00",
		FieldMap:        logrus.FieldMap{logrus.FieldKeyTime: "ts"},
	})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// Configure sets the minimum level and, when file is non-empty, tees output
// into that file as well as stdout.
func Configure(level, file string) error {
	if lvl, err := logrus.ParseLevel(level); err == nil {
		logger.SetLevel(lvl)
	}
	if file == "" {
		return nil
	}
	f, err := os.OpenFile(file, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	logger.SetOutput(io.MultiWriter(os.Stdout, f))
	return nil
}

// SetOutput swaps the sink and returns the previous one.
func SetOutput(w io.Writer) io.Writer {
	prev := logger.Out
	logger.SetOutput(w)
	return prev
}

func entry(c *fiber.Ctx, action string, fields map[string]any) *logrus.Entry {
	e := logger.WithField("action", action)
	if len(fields) > 0 {
		e = e.WithField("fields", fields)
	}
	if c == nil {
		return e
	}
	e = e.WithFields(logrus.Fields{
		"ip":     c.IP(),
		"method": c.Method(),
		"path":   c.Path(),
	})
	if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
		e = e.WithField("req_id", rid)
	}
	if uid, ok := c.Locals("user_id").(string); ok && uid != "" {
		e = e.WithField("user_id", uid)
	}
	return e
}

func Info(c *fiber.Ctx, action string, fields map[string]any) {
	entry(c, action, fields).Info(action)
}

// Audit records a state change made on behalf of a user.
func Audit(c *fiber.Ctx, action string, fields map[string]any) {
	entry(c, action, fields).WithField("audit", true).Info(action)
}

func Security(c *fiber.Ctx, action string, fields map[string]any) {
	entry(c, action, fields).Warn(action)
}

func Error(c *fiber.Ctx, action string, err error, fields map[string]any) {
	e := entry(c, action, fields)
	if err != nil {
		e = e.WithError(err)
	}
	e.Error(action)
}
