package logger

import (
	"go.uber.org/zap"
)

// New builds the process logger. Format "json" selects the production
// encoder; anything else gets the development console encoder.
func New(format string) (*zap.Logger, error) {
	if format == "json" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
