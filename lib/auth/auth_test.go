package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opsconsole/lib/models"
)

func requestWithAuthorizer(authorizer map[string]interface{}) events.APIGatewayProxyRequest {
	return events.APIGatewayProxyRequest{
		RequestContext: events.APIGatewayProxyRequestContext{Authorizer: authorizer},
	}
}

func TestExtractClaimsFromRequest_CognitoAuthorizer(t *testing.T) {
	// Arrange
	request := requestWithAuthorizer(map[string]interface{}{
		"claims": map[string]interface{}{
			"user_id":     "user_1",
			"email":       "sam@agency.test",
			"sub":         "cognito-sub",
			"custom:role": "Director",
		},
	})

	// Act
	claims, err := ExtractClaimsFromRequest(request)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, models.Actor{ID: "user_1", Email: "sam@agency.test", Role: models.RoleDirector}, claims.Actor())
	assert.Equal(t, "cognito-sub", claims.CognitoID)
	assert.Contains(t, claims.ToJSON(), `"role":"Director"`)
}

func TestExtractClaimsFromRequest_LambdaAuthorizer(t *testing.T) {
	claims, err := ExtractClaimsFromRequest(requestWithAuthorizer(map[string]interface{}{
		"user_id": "user_2",
		"role":    "Staff",
	}))

	require.NoError(t, err)
	assert.Equal(t, models.RoleStaff, claims.Role)
}

func TestExtractClaimsFromRequest_Failures(t *testing.T) {
	tests := map[string]map[string]interface{}{
		"no authorizer": nil,
		"no user id":    {"role": "Staff"},
		"unknown role":  {"user_id": "user_1", "role": "Owner"},
	}

	for name, authorizer := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ExtractClaimsFromRequest(requestWithAuthorizer(authorizer))
			assert.True(t, errors.Is(err, ErrUnauthenticated))
		})
	}
}

func TestTokenVerifier_RoundTrip(t *testing.T) {
	verifier := NewTokenVerifier("console-secret")
	actor := models.Actor{ID: "user_1", Email: "sam@agency.test", Role: models.RoleAdmin}

	token, err := verifier.Issue(actor, time.Hour)
	require.NoError(t, err)

	claims, err := verifier.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, actor, claims.Actor())

	_, err = NewTokenVerifier("other-secret").Verify(token)
	assert.True(t, errors.Is(err, ErrUnauthenticated))
}

func TestTokenVerifier_Expired(t *testing.T) {
	verifier := NewTokenVerifier("console-secret")
	verifier.now = func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) }
	token, err := verifier.Issue(models.Actor{ID: "user_1", Role: models.RoleStaff}, time.Minute)
	require.NoError(t, err)

	verifier.now = func() time.Time { return time.Date(2025, 1, 1, 1, 0, 0, 0, time.UTC) }
	_, err = verifier.Verify(token)

	assert.True(t, errors.Is(err, ErrUnauthenticated))
}

func TestActorFromRequest_BearerFallback(t *testing.T) {
	verifier := NewTokenVerifier("console-secret")
	token, err := verifier.Issue(models.Actor{ID: "user_3", Role: models.RoleStaff}, time.Hour)
	require.NoError(t, err)
	request := events.APIGatewayProxyRequest{Headers: map[string]string{"Authorization": "Bearer " + token}}

	actor, err := ActorFromRequest(request, verifier)
	require.NoError(t, err)
	assert.Equal(t, "user_3", actor.ID)

	_, err = ActorFromRequest(events.APIGatewayProxyRequest{}, verifier)
	assert.True(t, errors.Is(err, ErrUnauthenticated))

	_, err = ActorFromRequest(request, nil)
	assert.True(t, errors.Is(err, ErrUnauthenticated))
}
