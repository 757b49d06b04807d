package main

import (
	"context"
	"encoding/json"
	"net/http"
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
	"opsconsole/lib/policy"
)

// newTestHandler returns a handler whose store holds a seeded Admin.
func newTestHandler(t *testing.T) (*Handler, *models.User) {
	t.Helper()
	cfg, err := config.Load(map[string]string{constants.STORE_DRIVER: constants.STORE_MEMORY})
	require.NoError(t, err)
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	console := app.New("console-user-management", cfg, logger, data.NewMemoryStore(), nil, nil)

	created, err := console.Users.EnsureSeedAdmin(context.Background(), "root@agency.test", "")
	require.NoError(t, err)
	require.True(t, created)
	admin, err := console.Users.FindByEmail(context.Background(), "root@agency.test")
	require.NoError(t, err)
	return NewHandler(console), admin
}

func request(method, resource string, user *models.User, body string) events.APIGatewayProxyRequest {
	return events.APIGatewayProxyRequest{
		HTTPMethod: method,
		Resource:   resource,
		Body:       body,
		RequestContext: events.APIGatewayProxyRequestContext{
			Authorizer: map[string]interface{}{
				"user_id": user.ID,
				"email":   user.Email,
				"role":    string(user.Role),
			},
		},
	}
}

func TestHandle_Me(t *testing.T) {
	// Arrange
	h, admin := newTestHandler(t)

	// Act
	resp, err := h.Handle(context.Background(), request(http.MethodGet, "/auth/me", admin, ""))

	// Assert
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode, resp.Body)
	var me MeResponse
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &me))
	assert.Equal(t, admin.ID, me.User.ID)
	assert.Equal(t, "Admin", me.User.Name)
	assert.Contains(t, me.Permissions, policy.CreateUser)
	assert.NotContains(t, me.Permissions, policy.ActOnApproval)
}

func TestHandle_UserLifecycle(t *testing.T) {
	h, admin := newTestHandler(t)
	ctx := context.Background()

	resp, err := h.Handle(ctx, request(http.MethodPost, "/users", admin,
		`{"name": "Sam", "email": "Sam@Agency.test", "role": "Staff"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode, resp.Body)
	var sam models.User
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &sam))
	assert.Equal(t, "sam@agency.test", sam.Email)
	assert.Equal(t, models.UserStatusInvited, sam.Status)

	// Staff cannot create users
	resp, err = h.Handle(ctx, request(http.MethodPost, "/users", &sam,
		`{"name": "Lee", "email": "lee@agency.test", "role": "Staff"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	update := request(http.MethodPut, "/users/{userId}", admin, `{"role": "Director", "status": "Active"}`)
	update.PathParameters = map[string]string{"userId": sam.ID}
	resp, err = h.Handle(ctx, update)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode, resp.Body)
	assert.Contains(t, resp.Body, `"role":"Director"`)

	list, err := h.Handle(ctx, request(http.MethodGet, "/users", &sam, ""))
	require.NoError(t, err)
	assert.Contains(t, list.Body, `"total":2`)

	remove := request(http.MethodDelete, "/users/{userId}", admin, "")
	remove.PathParameters = map[string]string{"userId": sam.ID}
	resp, err = h.Handle(ctx, remove)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	get := request(http.MethodGet, "/users/{userId}", admin, "")
	get.PathParameters = map[string]string{"userId": sam.ID}
	resp, err = h.Handle(ctx, get)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandle_AdminProtected(t *testing.T) {
	h, admin := newTestHandler(t)
	ctx := context.Background()

	remove := request(http.MethodDelete, "/users/{userId}", admin, "")
	remove.PathParameters = map[string]string{"userId": admin.ID}
	resp, err := h.Handle(ctx, remove)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	demote := request(http.MethodPut, "/users/{userId}", admin, `{"role": "Staff"}`)
	demote.PathParameters = map[string]string{"userId": admin.ID}
	resp, err = h.Handle(ctx, demote)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
