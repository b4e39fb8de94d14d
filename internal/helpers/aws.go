package helpers

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/kiwicloudninja/arnexport/internal/logs"
)

// DefaultRegion is used when an ARN carries an empty region field, e.g.
// IAM ARNs.
const DefaultRegion = "us-east-1"

// GetAWSCfg loads shared AWS config for the given region and profile.
// Verbose mode wires the SDK's request/response logging into arnexport.log.
func GetAWSCfg(ctx context.Context, region, profile string, verbose bool) (aws.Config, error) {
	if region == "" {
		region = DefaultRegion
	}

	opts := []func(*config.LoadOptions) error{
		config.WithRegion(region),
		config.WithSharedConfigProfile(profile),
		config.WithRetryMode(aws.RetryModeAdaptive),
	}
	if verbose {
		opts = append(opts,
			config.WithClientLogMode(
				aws.LogRetries|
					aws.LogRequestWithBody|
					aws.LogResponseWithBody),
			config.WithLogger(logs.AwsSdkLogger()),
		)
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, err
	}

	return cfg, nil
}

// GetAccountId returns the account ID of the configured credentials.
func GetAccountId(ctx context.Context, cfg aws.Config) (string, error) {
	client := sts.NewFromConfig(cfg)

	result, err := client.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", err
	}

	return *result.Account, nil
}
