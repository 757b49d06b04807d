package clients

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// NewSSMClient creates a Parameter Store client, pointed at LocalStack when isLocal is set
func NewSSMClient(ctx context.Context, isLocal bool) (*ssm.Client, error) {
	cfg, err := loadAWSConfig(ctx, isLocal)
	if err != nil {
		return nil, err
	}
	return ssm.NewFromConfig(cfg), nil
}
