// Package main implements the Cognito Post Confirmation trigger that marks an
// invited console user Active once they confirm their account.
//
// Cognito is always answered with success: a user whose activation fails
// can still log in, and an Admin can set the status by hand.
package main

import (
	"context"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"opsconsole/lib/app"
)

// SignupRequest is what the trigger needs from a confirmation event.
type SignupRequest struct {
	CognitoID     string
	Email         string
	CorrelationID string
}

// Handler activates confirmed users.
type Handler struct {
	console *app.Console
	logger  *logrus.Logger
}

// NewHandler creates a Handler over console.
func NewHandler(console *app.Console) *Handler {
	return &Handler{console: console, logger: console.Logger}
}

func (h *Handler) Handle(ctx context.Context, event events.CognitoEventUserPoolsPostConfirmation) (events.CognitoEventUserPoolsPostConfirmation, error) {
	correlationID := uuid.New().String()

	req, err := extractSignupData(event, correlationID)
	if err != nil {
		h.logger.WithFields(logrus.Fields{
			"correlation_id": correlationID,
			"trigger_source": event.TriggerSource,
			"operation":      "Handle",
			"error":          err.Error(),
		}).Error("Failed to extract signup data from Cognito event")
		return event, nil
	}

	changed, err := h.console.Users.Activate(ctx, req.Email, req.CognitoID)
	if err != nil {
		h.logger.WithFields(logrus.Fields{
			"correlation_id": req.CorrelationID,
			"cognito_id":     req.CognitoID,
			"operation":      "Handle",
			"error":          err.Error(),
		}).Error("Failed to activate user, user can still login but may need admin assistance")
		return event, nil
	}

	h.logger.WithFields(logrus.Fields{
		"correlation_id": req.CorrelationID,
		"cognito_id":     req.CognitoID,
		"changed":        changed,
		"operation":      "Handle",
	}).Info("Signup confirmation processed")
	return event, nil
}

func extractSignupData(event events.CognitoEventUserPoolsPostConfirmation, correlationID string) (*SignupRequest, error) {
	if event.UserName == "" {
		return nil, fmt.Errorf("cognito ID (username) is empty")
	}
	email := event.Request.UserAttributes["email"]
	if email == "" {
		return nil, fmt.Errorf("email attribute is missing from Cognito event")
	}
	cognitoID := event.Request.UserAttributes["sub"]
	if cognitoID == "" {
		cognitoID = event.UserName
	}
	return &SignupRequest{CognitoID: cognitoID, Email: email, CorrelationID: correlationID}, nil
}

func main() {
	ctx := context.Background()
	console, err := app.Bootstrap(ctx, "console-user-signup")
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"operation": "main",
			"error":     err.Error(),
		}).Fatal("Error initializing user signup lambda")
	}
	defer console.Close(ctx)

	lambda.Start(NewHandler(console).Handle)
}
