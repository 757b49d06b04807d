package main

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/sirupsen/logrus"

	"opsconsole/lib/api"
	"opsconsole/lib/app"
	"opsconsole/lib/auth"
)

// Handler serves the read-only dashboard.
type Handler struct {
	console *app.Console
	logger  *logrus.Logger
}

// NewHandler creates a Handler over console.
func NewHandler(console *app.Console) *Handler {
	return &Handler{console: console, logger: console.Logger}
}

func (h *Handler) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	h.logger.WithFields(logrus.Fields{
		"operation": "Handle",
		"method":    request.HTTPMethod,
		"resource":  request.Resource,
	}).Info("Dashboard request received")

	actor, err := auth.ActorFromRequest(request, h.console.Verifier)
	if err != nil {
		h.logger.WithError(err).Error("Authentication failed")
		return api.ErrorResponse(http.StatusUnauthorized, "Authentication failed", h.logger), nil
	}

	if request.HTTPMethod != http.MethodGet {
		return api.ErrorResponse(http.StatusMethodNotAllowed, "Method not allowed", h.logger), nil
	}
	if request.Resource != "/dashboard/summary" {
		return api.ErrorResponse(http.StatusNotFound, "Endpoint not found", h.logger), nil
	}

	summary, err := h.console.Dashboard.Summary(ctx)
	if err != nil {
		return api.ErrorFromErr(err, "DashboardSummary", h.logger), nil
	}

	h.logger.WithFields(logrus.Fields{
		"operation": "Handle",
		"actor":     actor.ID,
		"skipped":   summary.SkippedRecords,
	}).Debug("Dashboard summary built")
	return api.SuccessResponse(http.StatusOK, summary, h.logger), nil
}

func main() {
	ctx := context.Background()
	console, err := app.Bootstrap(ctx, "console-dashboard")
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"operation": "main",
			"error":     err.Error(),
		}).Fatal("Error initializing dashboard lambda")
	}
	defer console.Close(ctx)

	lambda.Start(NewHandler(console).Handle)
}
