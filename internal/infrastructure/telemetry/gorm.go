package telemetry

import (
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RegisterGormTracing attaches the otelgorm plugin so every query runs inside
// a child span of the request. Query variables are excluded from spans; the
// statement shape is enough to find slow or failing queries.
func RegisterGormTracing(db *gorm.DB, logger *zap.Logger) error {
	plugin := otelgorm.NewPlugin(
		otelgorm.WithDBName("postgresql"),
		otelgorm.WithoutQueryVariables(),
	)
	if err := db.Use(plugin); err != nil {
		return err
	}
	logger.Info("Database tracing enabled")
	return nil
}
