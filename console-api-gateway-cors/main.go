package main

import (
	"context"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/sirupsen/logrus"

	"opsconsole/lib/app"
)

const (
	allowHeaders = "Content-Type,X-Amz-Date,Authorization,X-Api-Key,X-Amz-Security-Token,x-retry"
	allowMethods = "GET, PUT, DELETE, POST, OPTIONS, PATCH"
)

// Handler answers preflight requests for the console API.
type Handler struct {
	allowedOrigins []string
	logger         *logrus.Logger
}

func (h *Handler) Handle(request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	requestOrigin := origin(request.Headers)
	if requestOrigin == "" {
		h.logger.WithField("operation", "Handle").Warn("Origin is not present in the request headers")
		return events.APIGatewayProxyResponse{StatusCode: http.StatusBadRequest}, nil
	}

	for _, allowed := range h.allowedOrigins {
		if allowed == "*" || allowed == requestOrigin {
			return events.APIGatewayProxyResponse{
				StatusCode: http.StatusOK,
				Headers: map[string]string{
					"Access-Control-Allow-Origin":      requestOrigin,
					"Access-Control-Allow-Headers":     allowHeaders,
					"Access-Control-Allow-Methods":     allowMethods,
					"Access-Control-Allow-Credentials": "true",
				},
			}, nil
		}
	}

	h.logger.WithFields(logrus.Fields{
		"operation": "Handle",
		"origin":    requestOrigin,
	}).Warn("Unauthorized origin")
	return events.APIGatewayProxyResponse{StatusCode: http.StatusForbidden}, nil
}

func origin(headers map[string]string) string {
	for name, value := range headers {
		if strings.EqualFold(name, "origin") {
			return value
		}
	}
	return ""
}

func main() {
	isLocal := app.ParseIsLocal()
	logger := app.SetupLogger(isLocal)

	cfg, err := app.LoadConfig(context.Background(), isLocal, logger)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"operation": "main",
			"error":     err.Error(),
		}).Fatal("Error while loading configuration")
	}

	h := &Handler{allowedOrigins: cfg.AllowedOrigins, logger: logger}
	lambda.Start(h.Handle)
}
