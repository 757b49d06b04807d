package clients

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"

	"opsconsole/lib/models"
)

// RoleAttribute is the Cognito custom attribute holding a user's console role.
const RoleAttribute = "custom:role"

// IdentityProvider mirrors console users into the login directory.
type IdentityProvider interface {
	CreateUser(ctx context.Context, email, name string, role models.Role) (string, error)
	UpdateRole(ctx context.Context, email string, role models.Role) error
	DeleteUser(ctx context.Context, email string) error
}

// CognitoClientInterface is the subset of the Cognito API the console calls
type CognitoClientInterface interface {
	AdminCreateUser(ctx context.Context, params *cognitoidentityprovider.AdminCreateUserInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.AdminCreateUserOutput, error)
	AdminUpdateUserAttributes(ctx context.Context, params *cognitoidentityprovider.AdminUpdateUserAttributesInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.AdminUpdateUserAttributesOutput, error)
	AdminDeleteUser(ctx context.Context, params *cognitoidentityprovider.AdminDeleteUserInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.AdminDeleteUserOutput, error)
}

// NewCognitoIdentityProviderClient creates a Cognito user pool admin client
func NewCognitoIdentityProviderClient(ctx context.Context, isLocal bool) (*cognitoidentityprovider.Client, error) {
	cfg, err := loadAWSConfig(ctx, isLocal)
	if err != nil {
		return nil, err
	}
	return cognitoidentityprovider.NewFromConfig(cfg), nil
}

// CognitoIdentityProvider keeps a Cognito user pool in step with console users.
// Users are keyed by email, which is also their Cognito username.
type CognitoIdentityProvider struct {
	Client     CognitoClientInterface
	UserPoolID string
}

// CreateUser invites email into the pool and returns the new user's sub.
// Cognito generates the temporary password and sends the invitation.
func (p *CognitoIdentityProvider) CreateUser(ctx context.Context, email, name string, role models.Role) (string, error) {
	result, err := p.Client.AdminCreateUser(ctx, &cognitoidentityprovider.AdminCreateUserInput{
		UserPoolId: aws.String(p.UserPoolID),
		Username:   aws.String(email),
		UserAttributes: []types.AttributeType{
			{Name: aws.String("email"), Value: aws.String(email)},
			{Name: aws.String("name"), Value: aws.String(name)},
			{Name: aws.String("email_verified"), Value: aws.String("true")},
			{Name: aws.String(RoleAttribute), Value: aws.String(string(role))},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create user in Cognito: %w", err)
	}

	if result.User != nil {
		for _, attr := range result.User.Attributes {
			if aws.ToString(attr.Name) == "sub" {
				return aws.ToString(attr.Value), nil
			}
		}
	}
	return "", fmt.Errorf("failed to get Cognito user ID from response")
}

// UpdateRole rewrites the user's role attribute.
func (p *CognitoIdentityProvider) UpdateRole(ctx context.Context, email string, role models.Role) error {
	_, err := p.Client.AdminUpdateUserAttributes(ctx, &cognitoidentityprovider.AdminUpdateUserAttributesInput{
		UserPoolId: aws.String(p.UserPoolID),
		Username:   aws.String(email),
		UserAttributes: []types.AttributeType{
			{Name: aws.String(RoleAttribute), Value: aws.String(string(role))},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to update role in Cognito: %w", err)
	}
	return nil
}

// DeleteUser removes the user from the pool.
func (p *CognitoIdentityProvider) DeleteUser(ctx context.Context, email string) error {
	_, err := p.Client.AdminDeleteUser(ctx, &cognitoidentityprovider.AdminDeleteUserInput{
		UserPoolId: aws.String(p.UserPoolID),
		Username:   aws.String(email),
	})
	if err != nil {
		return fmt.Errorf("failed to delete user from Cognito: %w", err)
	}
	return nil
}
