package data

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/sirupsen/logrus"

	"opsconsole/lib/constants"
)

// SSMRepository loads the console's configuration parameters.
type SSMRepository interface {
	GetParameters(ctx context.Context) (map[string]string, error)
}

type SSMClientInterface interface {
	GetParametersByPath(ctx context.Context, params *ssm.GetParametersByPathInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error)
}

// SSMDao reads every parameter below Path, keyed by the name relative to it
// (so /opsconsole/DATABASE_PORT is returned as DATABASE_PORT).
type SSMDao struct {
	SSM    SSMClientInterface
	Logger *logrus.Logger
	Path   string
}

func (dao *SSMDao) GetParameters(ctx context.Context) (map[string]string, error) {
	path := dao.Path
	if path == "" {
		path = constants.PARAMETER_PATH
	}

	params := map[string]string{}
	input := &ssm.GetParametersByPathInput{
		Path:           aws.String(path),
		Recursive:      aws.Bool(true),
		WithDecryption: aws.Bool(true),
	}

	for {
		output, err := dao.SSM.GetParametersByPath(ctx, input)
		if err != nil {
			dao.Logger.WithFields(logrus.Fields{
				"operation": "GetParameters",
				"path":      path,
				"error":     err.Error(),
			}).Error("Failed to read parameters")
			return nil, err
		}

		for _, param := range output.Parameters {
			name := strings.TrimPrefix(aws.ToString(param.Name), strings.TrimSuffix(path, "/")+"/")
			params[name] = aws.ToString(param.Value)
		}

		if output.NextToken == nil {
			break
		}
		input.NextToken = output.NextToken
	}

	dao.Logger.WithFields(logrus.Fields{
		"operation":    "GetParameters",
		"params_count": len(params),
	}).Debug("Loaded parameters")
	return params, nil
}
