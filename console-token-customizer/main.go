// Package main implements the Cognito Pre Token Generation V2.0 trigger that
// adds the console's user id and role to every issued token.
//
// The user is looked up by the email Cognito reports for the login. Lookup
// failures never block authentication: the event is returned unchanged and
// the API authorizer rejects the token later for lacking a user_id.
package main

import (
	"context"
	"errors"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/sirupsen/logrus"

	"opsconsole/lib/app"
	"opsconsole/lib/models"
)

var validTriggerSources = map[string]bool{
	"TokenGeneration_HostedAuth":           true,
	"TokenGeneration_Authentication":       true,
	"TokenGeneration_NewPasswordChallenge": true,
	"TokenGeneration_AuthenticateDevice":   true,
	"TokenGeneration_RefreshTokens":        true,
}

// Handler enriches Cognito tokens from the users collection.
type Handler struct {
	console *app.Console
	logger  *logrus.Logger
}

// NewHandler creates a Handler over console.
func NewHandler(console *app.Console) *Handler {
	return &Handler{console: console, logger: console.Logger}
}

func (h *Handler) Handle(ctx context.Context, event events.CognitoEventUserPoolsPreTokenGenV2_0) (events.CognitoEventUserPoolsPreTokenGenV2_0, error) {
	h.logger.WithFields(logrus.Fields{
		"trigger_source": event.TriggerSource,
		"user_pool_id":   event.UserPoolID,
		"username":       event.UserName,
		"operation":      "Handle",
	}).Debug("Processing Cognito Pre Token Generation V2.0 event")

	if !validTriggerSources[event.TriggerSource] {
		h.logger.WithFields(logrus.Fields{
			"trigger_source": event.TriggerSource,
			"operation":      "Handle",
		}).Warn("Invalid trigger source for V2.0, returning event unchanged")
		return event, nil
	}

	email := event.Request.UserAttributes["email"]
	if email == "" {
		h.logger.WithField("operation", "Handle").Error("Email attribute is missing from event")
		return event, errors.New("email attribute cannot be empty")
	}

	user, err := h.console.Users.FindByEmail(ctx, email)
	if err != nil {
		h.logger.WithFields(logrus.Fields{
			"username":  event.UserName,
			"operation": "Handle",
			"error":     err.Error(),
		}).Error("Failed to fetch console user, proceeding without custom claims")
		return event, nil
	}

	claims := map[string]interface{}{
		"user_id": user.ID,
		"role":    string(user.Role),
		"name":    user.Name,
		"status":  user.Status,
		"org":     h.console.Config.OrgName,
	}
	event.Response.ClaimsAndScopeOverrideDetails = events.ClaimsAndScopeOverrideDetailsV2_0{
		IDTokenGeneration: events.IDTokenGenerationV2_0{
			ClaimsToAddOrOverride: claims,
			ClaimsToSuppress:      []string{},
		},
		AccessTokenGeneration: events.AccessTokenGenerationV2_0{
			ClaimsToAddOrOverride: claims,
			ClaimsToSuppress:      []string{},
			ScopesToAdd:           []string{},
			ScopesToSuppress:      []string{},
		},
		GroupOverrideDetails: events.GroupConfigurationV2_0{
			GroupsToOverride:   groupsFor(user),
			IAMRolesToOverride: []string{},
		},
	}

	h.logger.WithFields(logrus.Fields{
		"user_id":   user.ID,
		"role":      user.Role,
		"operation": "Handle",
	}).Debug("Added custom claims to token")
	return event, nil
}

func groupsFor(user *models.User) []string {
	return []string{string(user.Role)}
}

func main() {
	ctx := context.Background()
	console, err := app.Bootstrap(ctx, "console-token-customizer")
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"operation": "main",
			"error":     err.Error(),
		}).Fatal("Error initializing token customizer lambda")
	}
	defer console.Close(ctx)

	lambda.Start(NewHandler(console).Handle)
}
