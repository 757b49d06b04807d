package main

import (
	"context"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opsconsole/lib/app"
	"opsconsole/lib/config"
	"opsconsole/lib/constants"
	"opsconsole/lib/data"
	"opsconsole/lib/models"
)

func confirmation(userName string, attrs map[string]string) events.CognitoEventUserPoolsPostConfirmation {
	var event events.CognitoEventUserPoolsPostConfirmation
	event.TriggerSource = "PostConfirmation_ConfirmSignUp"
	event.UserName = userName
	event.Request.UserAttributes = attrs
	return event
}

func TestHandle_ActivatesInvitedUser(t *testing.T) {
	// Arrange
	cfg, err := config.Load(map[string]string{constants.STORE_DRIVER: constants.STORE_MEMORY})
	require.NoError(t, err)
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	console := app.New("console-user-signup", cfg, logger, data.NewMemoryStore(), nil, nil)
	ctx := context.Background()
	admin := models.Actor{ID: "user_admin", Role: models.RoleAdmin}
	invited, err := console.Users.Create(ctx, admin, models.CreateUserRequest{Name: "Sam", Email: "sam@agency.test", Role: models.RoleStaff})
	require.NoError(t, err)

	// Act
	_, err = NewHandler(console).Handle(ctx, confirmation("cognito-user", map[string]string{
		"email": "sam@agency.test",
		"sub":   "cognito-sub",
	}))

	// Assert
	require.NoError(t, err)
	user, err := console.Users.Get(ctx, invited.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusActive, user.Status)
	assert.Equal(t, "cognito-sub", user.CognitoID)
}

func TestExtractSignupData(t *testing.T) {
	_, err := extractSignupData(confirmation("", map[string]string{"email": "a@b.test"}), "c")
	assert.Error(t, err)

	_, err = extractSignupData(confirmation("user", map[string]string{}), "c")
	assert.Error(t, err)

	req, err := extractSignupData(confirmation("user", map[string]string{"email": "a@b.test"}), "c")
	require.NoError(t, err)
	assert.Equal(t, "user", req.CognitoID)
	assert.Equal(t, "c", req.CorrelationID)
}
