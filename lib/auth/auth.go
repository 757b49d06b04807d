package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/golang-jwt/jwt/v5"

	"opsconsole/lib/models"
)

// ErrUnauthenticated is returned when a request carries no usable identity.
var ErrUnauthenticated = errors.New("unauthenticated")

// Claims represents the JWT claims extracted from the API Gateway authorizer context
type Claims struct {
	UserID    string      `json:"user_id"`
	Email     string      `json:"email"`
	CognitoID string      `json:"sub"`
	Role      models.Role `json:"role"`
}

// Actor returns the caller the claims describe.
func (c *Claims) Actor() models.Actor {
	return models.Actor{ID: c.UserID, Email: c.Email, Role: c.Role}
}

// ToJSON converts claims to JSON string for logging
func (c *Claims) ToJSON() string {
	data, _ := json.Marshal(c)
	return string(data)
}

// ExtractClaimsFromRequest extracts and parses JWT claims from API Gateway request
func ExtractClaimsFromRequest(request events.APIGatewayProxyRequest) (*Claims, error) {
	var claimsMap map[string]interface{}
	var ok bool

	// Cognito user pool authorizers nest the claims; Lambda authorizers do not
	if authClaims, exists := request.RequestContext.Authorizer["claims"]; exists {
		claimsMap, ok = authClaims.(map[string]interface{})
	}
	if !ok {
		claimsMap = request.RequestContext.Authorizer
	}
	if len(claimsMap) == 0 {
		return nil, fmt.Errorf("claims not found in authorizer context: %w", ErrUnauthenticated)
	}

	userID, ok := claimsMap["user_id"].(string)
	if !ok || userID == "" {
		return nil, fmt.Errorf("user_id not found in claims: %w", ErrUnauthenticated)
	}

	email, _ := claimsMap["email"].(string)
	cognitoID, _ := claimsMap["sub"].(string)

	roleValue, _ := claimsMap["role"].(string)
	if roleValue == "" {
		roleValue, _ = claimsMap["custom:role"].(string)
	}
	role := models.Role(roleValue)
	if !role.Valid() {
		return nil, fmt.Errorf("invalid role %q in claims: %w", roleValue, ErrUnauthenticated)
	}

	return &Claims{
		UserID:    userID,
		Email:     email,
		CognitoID: cognitoID,
		Role:      role,
	}, nil
}

type tokenClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenVerifier checks HS256 bearer tokens signed with the console secret.
// It serves local runs and service callers that bypass the Cognito authorizer.
type TokenVerifier struct {
	secret []byte
	now    func() time.Time
}

// NewTokenVerifier creates a TokenVerifier for secret.
func NewTokenVerifier(secret string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret), now: time.Now}
}

// Issue signs a token for actor valid for ttl.
func (v *TokenVerifier) Issue(actor models.Actor, ttl time.Duration) (string, error) {
	now := v.now()
	claims := tokenClaims{
		UserID: actor.ID,
		Email:  actor.Email,
		Role:   string(actor.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

// Verify parses tokenString and returns its claims.
func (v *TokenVerifier) Verify(tokenString string) (*Claims, error) {
	var claims tokenClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithTimeFunc(v.now))
	if err != nil {
		return nil, fmt.Errorf("auth: parse token: %v: %w", err, ErrUnauthenticated)
	}
	if !token.Valid || claims.UserID == "" {
		return nil, fmt.Errorf("auth: invalid token: %w", ErrUnauthenticated)
	}
	role := models.Role(claims.Role)
	if !role.Valid() {
		return nil, fmt.Errorf("auth: invalid role %q in token: %w", claims.Role, ErrUnauthenticated)
	}
	return &Claims{UserID: claims.UserID, Email: claims.Email, CognitoID: claims.Subject, Role: role}, nil
}

// ActorFromRequest resolves the caller from the authorizer context, falling
// back to a bearer token when verifier is set.
func ActorFromRequest(request events.APIGatewayProxyRequest, verifier *TokenVerifier) (models.Actor, error) {
	claims, err := ExtractClaimsFromRequest(request)
	if err == nil {
		return claims.Actor(), nil
	}
	if verifier == nil {
		return models.Actor{}, err
	}

	header := request.Headers["Authorization"]
	if header == "" {
		header = request.Headers["authorization"]
	}
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return models.Actor{}, fmt.Errorf("no bearer token: %w", ErrUnauthenticated)
	}
	claims, err = verifier.Verify(token)
	if err != nil {
		return models.Actor{}, err
	}
	return claims.Actor(), nil
}
