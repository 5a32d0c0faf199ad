package logging

import (
	"os"

	"wheeldeal/internal/config"

	"go.uber.org/zap"
)

// New builds the process logger: JSON in production, console output
// otherwise. It falls back to a no-op logger if zap cannot be configured.
func New(cfg config.Config) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.IsProduction() {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		_, _ = os.Stderr.WriteString("init logger: " + err.Error() + "\n")
		return zap.NewNop()
	}
	return logger
}
