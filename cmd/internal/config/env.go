package config

import (
	"context"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
)

const envVarsPrefix = "/setores/prod/"

// ParametersAPI is the slice of the SSM client used to export parameters.
type ParametersAPI interface {
	GetParametersByPath(ctx context.Context, in *ssm.GetParametersByPathInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error)
}

// LoadEnv fills the process environment: from SSM Parameter Store in
// production, from .env otherwise. A missing .env is not an error.
func LoadEnv(ctx context.Context) error {
	if strings.EqualFold(os.Getenv("GO_ENV"), EnvProduction) {
		cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(getEnv("AWS_REGION", "us-east-1")))
		if err != nil {
			return err
		}
		n, err := ExportParameters(ctx, ssm.NewFromConfig(cfg), envVarsPrefix)
		if err != nil {
			return err
		}
		log.Debugf("loaded %d prod environment variables", n)
		return nil
	}

	if err := godotenv.Load(); err != nil {
		log.Warnf("no .env file loaded: %v", err)
	}
	return nil
}

// ExportParameters sets one environment variable per parameter under path,
// named after the parameter with the path stripped.
func ExportParameters(ctx context.Context, client ParametersAPI, path string) (int, error) {
	paginator := ssm.NewGetParametersByPathPaginator(client, &ssm.GetParametersByPathInput{
		Path:           aws.String(path),
		WithDecryption: aws.Bool(true),
		Recursive:      aws.Bool(true),
	})

	count := 0
	for paginator.HasMorePages() {
		out, err := paginator.NextPage(ctx)
		if err != nil {
			return count, err
		}
		for _, param := range out.Parameters {
			key := strings.TrimPrefix(aws.ToString(param.Name), path)
			if err := os.Setenv(key, aws.ToString(param.Value)); err != nil {
				return count, err
			}
			count++
		}
	}
	return count, nil
}
