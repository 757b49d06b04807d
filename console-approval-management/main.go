package main

import (
	"context"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/sirupsen/logrus"

	"opsconsole/lib/api"
	"opsconsole/lib/app"
	"opsconsole/lib/auth"
	"opsconsole/lib/models"
	"opsconsole/lib/policy"
)

// Handler serves the approval workflow API.
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
	}).Info("Approval management request received")

	actor, err := auth.ActorFromRequest(request, h.console.Verifier)
	if err != nil {
		h.logger.WithError(err).Error("Authentication failed")
		return api.ErrorResponse(http.StatusUnauthorized, "Authentication failed", h.logger), nil
	}

	switch request.HTTPMethod {
	case http.MethodGet:
		// GET /approvals - List approvals, optionally filtered
		if request.Resource == "/approvals" {
			return h.handleList(ctx, actor, request.QueryStringParameters), nil
		}
		return api.ErrorResponse(http.StatusNotFound, "Endpoint not found", h.logger), nil

	case http.MethodPost:
		// POST /approvals/{itemType}/{itemId}/request - Send a record for approval
		if strings.HasSuffix(request.Resource, "/{itemType}/{itemId}/request") {
			return h.handleRequest(ctx, actor, request), nil
		}
		// POST /approvals/{approvalId}/action - Approve, reject or hold
		if strings.HasSuffix(request.Resource, "/{approvalId}/action") {
			return h.handleAction(ctx, actor, request), nil
		}
		return api.ErrorResponse(http.StatusNotFound, "Endpoint not found", h.logger), nil

	case http.MethodDelete:
		// DELETE /approvals/reset - Clear every approval
		if request.Resource == "/approvals/reset" {
			removed, err := h.console.Approvals.ResetAll(ctx, actor)
			if err != nil {
				return api.ErrorFromErr(err, "ResetAll", h.logger), nil
			}
			return api.SuccessResponse(http.StatusOK, map[string]interface{}{
				"message": "Approvals reset successfully",
				"deleted": removed,
			}, h.logger), nil
		}
		return api.ErrorResponse(http.StatusNotFound, "Endpoint not found", h.logger), nil

	default:
		return api.ErrorResponse(http.StatusMethodNotAllowed, "Method not allowed", h.logger), nil
	}
}

// handleList handles GET /approvals
func (h *Handler) handleList(ctx context.Context, actor models.Actor, params map[string]string) events.APIGatewayProxyResponse {
	filter := models.ApprovalFilter{
		ItemType: models.ItemType(params["item_type"]),
		ItemID:   params["item_id"],
		Status:   models.ApprovalStatus(params["status"]),
	}
	approvals, err := h.console.Approvals.List(ctx, actor, filter)
	if err != nil {
		return api.ErrorFromErr(err, "ListApprovals", h.logger)
	}
	return api.SuccessResponse(http.StatusOK, models.ApprovalListResponse{
		Approvals: approvals,
		Total:     len(approvals),
	}, h.logger)
}

// handleRequest handles POST /approvals/{itemType}/{itemId}/request
func (h *Handler) handleRequest(ctx context.Context, actor models.Actor, request events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	// Role is checked before the body so a forbidden caller always gets 403.
	if err := policy.Authorize(actor.Role, policy.RequestApproval, policy.Resource{Kind: "approval"}); err != nil {
		return api.ErrorFromErr(err, "RequestApproval", h.logger)
	}

	var body models.RequestApprovalRequest
	if strings.TrimSpace(request.Body) != "" {
		if err := api.ParseJSONBody(request, &body); err != nil {
			return api.ErrorFromErr(err, "RequestApproval", h.logger)
		}
	}

	approval, err := h.console.Approvals.Request(ctx, actor,
		request.PathParameters["itemType"],
		request.PathParameters["itemId"],
		body.StaffRemarks,
	)
	if err != nil {
		return api.ErrorFromErr(err, "RequestApproval", h.logger)
	}
	return api.SuccessResponse(http.StatusCreated, approval, h.logger)
}

// handleAction handles POST /approvals/{approvalId}/action
func (h *Handler) handleAction(ctx context.Context, actor models.Actor, request events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	approvalID := request.PathParameters["approvalId"]
	if approvalID == "" {
		return api.ErrorResponse(http.StatusBadRequest, "Approval ID is required", h.logger)
	}

	if err := policy.Authorize(actor.Role, policy.ActOnApproval, policy.Resource{Kind: "approval"}); err != nil {
		return api.ErrorFromErr(err, "ActOnApproval", h.logger)
	}

	var body models.ApprovalActionRequest
	if err := api.ParseJSONBody(request, &body); err != nil {
		return api.ErrorFromErr(err, "ActOnApproval", h.logger)
	}

	approval, err := h.console.Approvals.Act(ctx, approvalID, body.Action, actor, body.Notes)
	if err != nil {
		return api.ErrorFromErr(err, "ActOnApproval", h.logger)
	}
	return api.SuccessResponse(http.StatusOK, approval, h.logger)
}

func main() {
	ctx := context.Background()
	console, err := app.Bootstrap(ctx, "console-approval-management")
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"operation": "main",
			"error":     err.Error(),
		}).Fatal("Error initializing approval management lambda")
	}
	defer console.Close(ctx)

	lambda.Start(NewHandler(console).Handle)
}
