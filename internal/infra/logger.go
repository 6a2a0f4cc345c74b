// README: zap logger construction.
package infra

import "go.uber.org/zap"

// NewLogger builds the production JSON logger shared by all components.
func NewLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.DisableStacktrace = true
	return cfg.Build()
}
