package api

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opsconsole/lib/apperr"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"denied", apperr.Denied("Staff", "delete_record", "no"), http.StatusForbidden},
		{"not found", apperr.NotFound("client", "client_1"), http.StatusNotFound},
		{"invalid date", &apperr.InvalidDateError{Value: "x"}, http.StatusBadRequest},
		{"validation", apperr.Invalid("service", "bad"), http.StatusBadRequest},
		{"wrapped validation", fmt.Errorf("row: %w", apperr.Invalid("service", "bad")), http.StatusBadRequest},
		{"storage", apperr.Storage("find", errors.New("down")), http.StatusInternalServerError},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}

func TestErrorFromErr_HidesServerDetail(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	resp := ErrorFromErr(apperr.Storage("find", errors.New("password in dsn")), "Test", logger)

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.NotContains(t, resp.Body, "password")

	resp = ErrorFromErr(apperr.NotFound("client", "client_1"), "Test", logger)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &body))
	assert.Equal(t, "client client_1 not found", body["message"])
	assert.Equal(t, "application/json", resp.Headers["Content-Type"])
}

type patch struct {
	Name   *string `json:"name,omitempty"`
	Tenure *int    `json:"tenure_months,omitempty"`
}

func TestParseJSONBody(t *testing.T) {
	var p patch
	err := ParseJSONBody(events.APIGatewayProxyRequest{Body: `{"name":"Acme","tenure_months":6}`}, &p)
	require.NoError(t, err)
	assert.Equal(t, "Acme", *p.Name)
	assert.Equal(t, 6, *p.Tenure)

	err = ParseJSONBody(events.APIGatewayProxyRequest{Body: `{"end_date":"2030-01-01"}`}, &patch{})
	assert.True(t, apperr.IsValidation(err))
	assert.Equal(t, "end_date: is not a recognised field", err.Error())

	err = ParseJSONBody(events.APIGatewayProxyRequest{Body: `{"tenure_months":"six"}`}, &patch{})
	assert.True(t, apperr.IsValidation(err))

	err = ParseJSONBody(events.APIGatewayProxyRequest{Body: "  "}, &patch{})
	assert.True(t, apperr.IsValidation(err))

	encoded := base64.StdEncoding.EncodeToString([]byte(`{"name":"Bolt"}`))
	p = patch{}
	err = ParseJSONBody(events.APIGatewayProxyRequest{Body: encoded, IsBase64Encoded: true}, &p)
	require.NoError(t, err)
	assert.Equal(t, "Bolt", *p.Name)
}

func TestSuccessResponse(t *testing.T) {
	resp := SuccessResponse(http.StatusCreated, map[string]string{"id": "client_1"}, logrus.New())

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.JSONEq(t, `{"id":"client_1"}`, resp.Body)
	assert.Equal(t, "*", resp.Headers["Access-Control-Allow-Origin"])
}
