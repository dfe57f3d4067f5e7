package external

import (
	"context"

	"go.uber.org/zap"

	"github.com/conwetlab/privatedatasets-backend/pkg/datamodel"
	custom_logger "github.com/conwetlab/privatedatasets-backend/pkg/logger"
)

// LogNoticer records notices on the application log. Deployments where
// the host platform renders flash messages replace it with an adapter
// to the host's message store.
type LogNoticer struct{}

// FlashNotice implements the Noticer interface.
func (LogNoticer) FlashNotice(ctx context.Context, reqCtx datamodel.RequestContext, message string) {
	logger, _ := custom_logger.GetZapLogger(ctx)
	logger.Info("flash notice",
		zap.String("user", reqCtx.ActorName()),
		zap.String("message", message))
}
