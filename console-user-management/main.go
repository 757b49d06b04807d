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
	"opsconsole/lib/models"
	"opsconsole/lib/policy"
)

// MeResponse describes the caller and what their role lets them do.
type MeResponse struct {
	User        *models.User    `json:"user"`
	Permissions []policy.Action `json:"permissions"`
}

// Handler serves user management and the current-user endpoint.
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
		"path":      request.Path,
		"resource":  request.Resource,
	}).Info("User management request received")

	actor, err := auth.ActorFromRequest(request, h.console.Verifier)
	if err != nil {
		h.logger.WithError(err).Error("Authentication failed")
		return api.ErrorResponse(http.StatusUnauthorized, "Authentication failed", h.logger), nil
	}

	// GET /auth/me - Current user and permissions
	if request.Resource == "/auth/me" {
		if request.HTTPMethod != http.MethodGet {
			return api.ErrorResponse(http.StatusMethodNotAllowed, "Method not allowed", h.logger), nil
		}
		return h.handleMe(ctx, actor), nil
	}

	userID := request.PathParameters["userId"]
	switch request.HTTPMethod {
	case http.MethodPost:
		if request.Resource == "/users" {
			return h.handleCreateUser(ctx, actor, request), nil
		}
	case http.MethodGet:
		if userID != "" {
			return h.handleGetUser(ctx, userID), nil
		}
		if request.Resource == "/users" {
			return h.handleGetUsers(ctx), nil
		}
	case http.MethodPut, http.MethodPatch:
		if userID != "" {
			return h.handleUpdateUser(ctx, actor, userID, request), nil
		}
	case http.MethodDelete:
		if userID != "" {
			return h.handleDeleteUser(ctx, actor, userID), nil
		}
	default:
		return api.ErrorResponse(http.StatusMethodNotAllowed, "Method not allowed", h.logger), nil
	}
	return api.ErrorResponse(http.StatusNotFound, "Endpoint not found", h.logger), nil
}

// handleMe handles GET /auth/me
func (h *Handler) handleMe(ctx context.Context, actor models.Actor) events.APIGatewayProxyResponse {
	user, err := h.console.Users.Get(ctx, actor.ID)
	if err != nil {
		return api.ErrorFromErr(err, "GetCurrentUser", h.logger)
	}
	return api.SuccessResponse(http.StatusOK, MeResponse{
		User:        user,
		Permissions: policy.Permitted(user.Role),
	}, h.logger)
}

// handleCreateUser handles POST /users
func (h *Handler) handleCreateUser(ctx context.Context, actor models.Actor, request events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	var req models.CreateUserRequest
	if err := api.ParseJSONBody(request, &req); err != nil {
		return api.ErrorFromErr(err, "CreateUser", h.logger)
	}
	user, err := h.console.Users.Create(ctx, actor, req)
	if err != nil {
		return api.ErrorFromErr(err, "CreateUser", h.logger)
	}
	return api.SuccessResponse(http.StatusCreated, user, h.logger)
}

// handleGetUsers handles GET /users
func (h *Handler) handleGetUsers(ctx context.Context) events.APIGatewayProxyResponse {
	users, err := h.console.Users.List(ctx)
	if err != nil {
		return api.ErrorFromErr(err, "GetUsers", h.logger)
	}
	return api.SuccessResponse(http.StatusOK, models.UserListResponse{Users: users, Total: len(users)}, h.logger)
}

// handleGetUser handles GET /users/{userId}
func (h *Handler) handleGetUser(ctx context.Context, userID string) events.APIGatewayProxyResponse {
	user, err := h.console.Users.Get(ctx, userID)
	if err != nil {
		return api.ErrorFromErr(err, "GetUser", h.logger)
	}
	return api.SuccessResponse(http.StatusOK, user, h.logger)
}

// handleUpdateUser handles PUT /users/{userId}
func (h *Handler) handleUpdateUser(ctx context.Context, actor models.Actor, userID string, request events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	var req models.UpdateUserRequest
	if err := api.ParseJSONBody(request, &req); err != nil {
		return api.ErrorFromErr(err, "UpdateUser", h.logger)
	}
	user, err := h.console.Users.Update(ctx, actor, userID, req)
	if err != nil {
		return api.ErrorFromErr(err, "UpdateUser", h.logger)
	}
	return api.SuccessResponse(http.StatusOK, user, h.logger)
}

// handleDeleteUser handles DELETE /users/{userId}
func (h *Handler) handleDeleteUser(ctx context.Context, actor models.Actor, userID string) events.APIGatewayProxyResponse {
	if err := h.console.Users.Delete(ctx, actor, userID); err != nil {
		return api.ErrorFromErr(err, "DeleteUser", h.logger)
	}
	return api.SuccessResponse(http.StatusOK, map[string]string{"message": "User deleted successfully"}, h.logger)
}

func main() {
	ctx := context.Background()
	console, err := app.Bootstrap(ctx, "console-user-management")
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"operation": "main",
			"error":     err.Error(),
		}).Fatal("Error initializing user management lambda")
	}
	defer console.Close(ctx)

	lambda.Start(NewHandler(console).Handle)
}
