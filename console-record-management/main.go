package main

import (
	"bytes"
	"context"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/sirupsen/logrus"

	"opsconsole/lib/api"
	"opsconsole/lib/app"
	"opsconsole/lib/auth"
	"opsconsole/lib/bulk"
	"opsconsole/lib/models"
	"opsconsole/lib/service"
)

// recordEndpoint is the HTTP surface of one record kind. Implementations
// decode the kind's own create and update bodies.
type recordEndpoint interface {
	bulk.Target
	list(ctx context.Context, q service.ListQuery) (interface{}, error)
	get(ctx context.Context, id string) (interface{}, error)
	create(ctx context.Context, actor models.Actor, request events.APIGatewayProxyRequest) (interface{}, error)
	update(ctx context.Context, actor models.Actor, id string, request events.APIGatewayProxyRequest) (interface{}, error)
	remove(ctx context.Context, actor models.Actor, id string) error
	activeByDepartment(ctx context.Context, department string) ([]models.Document, error)
}

// endpoint adapts a RecordService to recordEndpoint. C and U are the kind's
// create and update request bodies.
type endpoint[T any, C any, U any] struct {
	*service.RecordService[T]
}

func (e endpoint[T, C, U]) list(ctx context.Context, q service.ListQuery) (interface{}, error) {
	records, err := e.List(ctx, q)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"records": records, "total": len(records)}, nil
}

func (e endpoint[T, C, U]) get(ctx context.Context, id string) (interface{}, error) {
	return e.Get(ctx, id)
}

func (e endpoint[T, C, U]) create(ctx context.Context, actor models.Actor, request events.APIGatewayProxyRequest) (interface{}, error) {
	var body C
	if err := api.ParseJSONBody(request, &body); err != nil {
		return nil, err
	}
	return e.Create(ctx, actor, body)
}

func (e endpoint[T, C, U]) update(ctx context.Context, actor models.Actor, id string, request events.APIGatewayProxyRequest) (interface{}, error) {
	var patch U
	if err := api.ParseJSONBody(request, &patch); err != nil {
		return nil, err
	}
	return e.Update(ctx, actor, id, patch)
}

func (e endpoint[T, C, U]) remove(ctx context.Context, actor models.Actor, id string) error {
	return e.Delete(ctx, actor, id)
}

func (e endpoint[T, C, U]) activeByDepartment(ctx context.Context, department string) ([]models.Document, error) {
	return e.ActiveByDepartment(ctx, department)
}

// importRequest names a file previously staged through the upload URL.
type importRequest struct {
	Key string `json:"key"`
}

// Handler serves the record management API.
type Handler struct {
	console *app.Console
	logger  *logrus.Logger
	records map[string]recordEndpoint
}

// NewHandler routes every record collection of console.
func NewHandler(console *app.Console) *Handler {
	return &Handler{
		console: console,
		logger:  console.Logger,
		records: map[string]recordEndpoint{
			"clients":     endpoint[models.Client, models.CreateClientRequest, models.UpdateClientRequest]{console.Clients},
			"contractors": endpoint[models.Contractor, models.CreateContractorRequest, models.UpdateContractorRequest]{console.Contractors},
			"employees":   endpoint[models.Employee, models.CreateEmployeeRequest, models.UpdateEmployeeRequest]{console.Employees},
			"assets":      endpoint[models.Asset, models.CreateAssetRequest, models.UpdateAssetRequest]{console.Assets},
		},
	}
}

// Handle dispatches on the API Gateway resource. Resources have the form
// /{collection}, /{collection}/{id} or /{collection}/<action>.
func (h *Handler) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	h.logger.WithFields(logrus.Fields{
		"operation": "Handle",
		"method":    request.HTTPMethod,
		"path":      request.Path,
		"resource":  request.Resource,
	}).Info("Record management request received")

	actor, err := auth.ActorFromRequest(request, h.console.Verifier)
	if err != nil {
		h.logger.WithError(err).Error("Authentication failed")
		return api.ErrorResponse(http.StatusUnauthorized, "Authentication failed", h.logger), nil
	}

	segments := strings.Split(strings.Trim(request.Resource, "/"), "/")
	records, ok := h.records[segments[0]]
	if !ok {
		return api.ErrorResponse(http.StatusNotFound, "Endpoint not found", h.logger), nil
	}
	rest := strings.Join(segments[1:], "/")

	switch {
	case rest == "" && request.HTTPMethod == http.MethodGet:
		return h.respond(records.list(ctx, listQuery(request.QueryStringParameters)))
	case rest == "" && request.HTTPMethod == http.MethodPost:
		return h.respondStatus(http.StatusCreated)(records.create(ctx, actor, request))

	case rest == "import" && request.HTTPMethod == http.MethodPost:
		return h.handleImport(ctx, actor, records, request), nil
	case rest == "import/upload-url" && request.HTTPMethod == http.MethodPost:
		return h.respond(h.console.Importer.UploadURL(ctx, actor, records))
	case rest == "export" && request.HTTPMethod == http.MethodGet:
		return h.respond(h.console.Exporter.Export(ctx, records))
	case rest == "sample" && request.HTTPMethod == http.MethodGet:
		return h.respond(h.console.Exporter.Sample(ctx, records))
	case rest == "active-by-department" && request.HTTPMethod == http.MethodGet:
		department := request.QueryStringParameters["department"]
		if department == "" {
			return api.ErrorResponse(http.StatusBadRequest, "department query parameter is required", h.logger), nil
		}
		docs, err := records.activeByDepartment(ctx, department)
		if err != nil {
			return api.ErrorFromErr(err, "ActiveByDepartment", h.logger), nil
		}
		return api.SuccessResponse(http.StatusOK, map[string]interface{}{"records": docs, "total": len(docs)}, h.logger), nil

	case rest == "{id}":
		id := request.PathParameters["id"]
		if id == "" {
			return api.ErrorResponse(http.StatusBadRequest, "Record ID is required", h.logger), nil
		}
		switch request.HTTPMethod {
		case http.MethodGet:
			return h.respond(records.get(ctx, id))
		case http.MethodPut, http.MethodPatch:
			return h.respond(records.update(ctx, actor, id, request))
		case http.MethodDelete:
			if err := records.remove(ctx, actor, id); err != nil {
				return api.ErrorFromErr(err, "Delete", h.logger), nil
			}
			return api.SuccessResponse(http.StatusOK, map[string]string{"message": "Record deleted successfully"}, h.logger), nil
		}
		return api.ErrorResponse(http.StatusMethodNotAllowed, "Method not allowed", h.logger), nil
	}

	return api.ErrorResponse(http.StatusNotFound, "Endpoint not found", h.logger), nil
}

func (h *Handler) handleImport(ctx context.Context, actor models.Actor, target bulk.Target, request events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	var (
		result *models.ImportResult
		err    error
	)
	if isCSV(request.Headers) {
		body, bodyErr := api.RequestBody(request)
		if bodyErr != nil {
			return api.ErrorFromErr(bodyErr, "Import", h.logger)
		}
		result, err = h.console.Importer.Import(ctx, actor, target, bytes.NewReader(body))
	} else {
		var req importRequest
		if err := api.ParseJSONBody(request, &req); err != nil {
			return api.ErrorFromErr(err, "Import", h.logger)
		}
		if req.Key == "" {
			return api.ErrorResponse(http.StatusBadRequest, "key is required", h.logger)
		}
		result, err = h.console.Importer.ImportObject(ctx, actor, target, req.Key)
	}
	if err != nil {
		return api.ErrorFromErr(err, "Import", h.logger)
	}
	if result.Imported == 0 && len(result.Errors) > 0 {
		return api.ValidationErrorResponse("No rows were imported", result.Messages(), h.logger)
	}
	return api.SuccessResponse(http.StatusOK, result, h.logger)
}

func (h *Handler) respond(data interface{}, err error) (events.APIGatewayProxyResponse, error) {
	return h.respondStatus(http.StatusOK)(data, err)
}

func (h *Handler) respondStatus(status int) func(interface{}, error) (events.APIGatewayProxyResponse, error) {
	return func(data interface{}, err error) (events.APIGatewayProxyResponse, error) {
		if err != nil {
			return api.ErrorFromErr(err, "Handle", h.logger), nil
		}
		return api.SuccessResponse(status, data, h.logger), nil
	}
}

func listQuery(params map[string]string) service.ListQuery {
	return service.ListQuery{
		Status:     params["status"],
		Department: params["department"],
		SortBy:     params["sort_by"],
		SortOrder:  params["sort_order"],
	}
}

func isCSV(headers map[string]string) bool {
	for name, value := range headers {
		if strings.EqualFold(name, "Content-Type") {
			return strings.Contains(strings.ToLower(value), "csv")
		}
	}
	return false
}

func main() {
	ctx := context.Background()
	console, err := app.Bootstrap(ctx, "console-record-management")
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"operation": "main",
			"error":     err.Error(),
		}).Fatal("Error initializing record management lambda")
	}
	defer console.Close(ctx)

	lambda.Start(NewHandler(console).Handle)
}
