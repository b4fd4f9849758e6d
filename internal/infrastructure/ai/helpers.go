package ai

import (
	"fmt"

	"github.com/doeshing/infernav/internal/ports"
)

// restyLogger routes resty's printf-style logs into ports.Logger.
type restyLogger struct {
	logger ports.Logger
}

func (l restyLogger) Errorf(format string, v ...interface{}) {
	l.logger.Error("http client", fmt.Errorf(format, v...), nil)
}

func (l restyLogger) Warnf(format string, v ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, v...), map[string]interface{}{"source": "resty"})
}

func (l restyLogger) Debugf(format string, v ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, v...), map[string]interface{}{"source": "resty"})
}
