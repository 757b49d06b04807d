package clients

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"

	"opsconsole/lib/constants"
)

func loadAWSConfig(ctx context.Context, isLocal bool) (aws.Config, error) {
	region := os.Getenv(constants.AWS_REGION)
	if region == "" {
		region = constants.DEFAULT_REGION
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	if isLocal {
		cfg.BaseEndpoint = aws.String(constants.LOCAL_ENDPOINT)
	}
	return cfg, nil
}
