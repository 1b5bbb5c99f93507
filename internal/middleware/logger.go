package middleware

import (
	"errors"
	"fmt"
	"strings"

	"postboard/internal/logger"

	"github.com/gin-gonic/gin"
)

// RequestLogger writes gin's access log as JSON lines through log.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return gin.LoggerWithConfig(gin.LoggerConfig{
		Output: log.Writer(),
		Formatter: func(p gin.LogFormatterParams) string {
			msg := fmt.Sprintf("%s %s %d %s %s", p.Method, p.Path, p.StatusCode, p.Latency, p.ClientIP)
			level := logger.InfoLevel
			var err error
			if p.ErrorMessage != "" {
				level = logger.ErrorLevel
				err = errors.New(strings.TrimSpace(p.ErrorMessage))
			}
			return logger.Format("http", level, msg, err) + "\n"
		},
	})
}
