package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudcontrol"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ecs"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/sfn"
)

// Kind tags how a strategy reads its resource.
type Kind string

const (
	// KindGet is a singular get-style operation keyed by resource name.
	KindGet Kind = "get"
	// KindDescribe is a singular describe-style operation.
	KindDescribe Kind = "describe"
	// KindDescribePlural is a plural describe operation filtered down to
	// one identifier; the response nests the resource inside a list.
	KindDescribePlural Kind = "describe-plural"
	// KindCloudControl reads through the Cloud Control API by canonical
	// CloudFormation type name.
	KindCloudControl Kind = "cloudcontrol"
)

// FetchFunc performs the read call and returns the response as a plain
// key/value tree.
type FetchFunc func(ctx context.Context, cfg aws.Config, req Request) (map[string]any, error)

// Strategy is one entry in the fetch table.
type Strategy struct {
	Kind Kind
	Fn   FetchFunc
}

// strategies maps lowercased <service>:<resourcetype> pairs from ARNs to
// read operations. ARNs whose service/resourcetype is absent here are
// served by the Cloud Control fallback.
var strategies = map[string]Strategy{
	"lambda:function": {KindGet, func(ctx context.Context, cfg aws.Config, req Request) (map[string]any, error) {
		out, err := lambda.NewFromConfig(cfg).GetFunction(ctx, &lambda.GetFunctionInput{FunctionName: ptr(req.Name)})
		if err != nil {
			return nil, err
		}
		return toDocument(out)
	}},
	"iam:role": {KindGet, func(ctx context.Context, cfg aws.Config, req Request) (map[string]any, error) {
		out, err := iam.NewFromConfig(cfg).GetRole(ctx, &iam.GetRoleInput{RoleName: ptr(req.Name)})
		if err != nil {
			return nil, err
		}
		return toDocument(out)
	}},
	"iam:user": {KindGet, func(ctx context.Context, cfg aws.Config, req Request) (map[string]any, error) {
		out, err := iam.NewFromConfig(cfg).GetUser(ctx, &iam.GetUserInput{UserName: ptr(req.Name)})
		if err != nil {
			return nil, err
		}
		return toDocument(out)
	}},
	"iam:policy": {KindGet, func(ctx context.Context, cfg aws.Config, req Request) (map[string]any, error) {
		out, err := iam.NewFromConfig(cfg).GetPolicy(ctx, &iam.GetPolicyInput{PolicyArn: ptr(req.ARN)})
		if err != nil {
			return nil, err
		}
		return toDocument(out)
	}},
	"states:statemachine": {KindDescribe, func(ctx context.Context, cfg aws.Config, req Request) (map[string]any, error) {
		out, err := sfn.NewFromConfig(cfg).DescribeStateMachine(ctx, &sfn.DescribeStateMachineInput{StateMachineArn: ptr(req.ARN)})
		if err != nil {
			return nil, err
		}
		return toDocument(out)
	}},
	"dynamodb:table": {KindDescribe, func(ctx context.Context, cfg aws.Config, req Request) (map[string]any, error) {
		out, err := dynamodb.NewFromConfig(cfg).DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: ptr(req.Name)})
		if err != nil {
			return nil, err
		}
		return toDocument(out)
	}},
	"kms:key": {KindDescribe, func(ctx context.Context, cfg aws.Config, req Request) (map[string]any, error) {
		out, err := kms.NewFromConfig(cfg).DescribeKey(ctx, &kms.DescribeKeyInput{KeyId: ptr(req.Name)})
		if err != nil {
			return nil, err
		}
		return toDocument(out)
	}},
	"secretsmanager:secret": {KindDescribe, func(ctx context.Context, cfg aws.Config, req Request) (map[string]any, error) {
		out, err := secretsmanager.NewFromConfig(cfg).DescribeSecret(ctx, &secretsmanager.DescribeSecretInput{SecretId: ptr(req.ARN)})
		if err != nil {
			return nil, err
		}
		return toDocument(out)
	}},
	"events:event-bus": {KindDescribe, func(ctx context.Context, cfg aws.Config, req Request) (map[string]any, error) {
		out, err := eventbridge.NewFromConfig(cfg).DescribeEventBus(ctx, &eventbridge.DescribeEventBusInput{Name: ptr(req.Name)})
		if err != nil {
			return nil, err
		}
		return toDocument(out)
	}},
	"ecs:task-definition": {KindDescribe, func(ctx context.Context, cfg aws.Config, req Request) (map[string]any, error) {
		out, err := ecs.NewFromConfig(cfg).DescribeTaskDefinition(ctx, &ecs.DescribeTaskDefinitionInput{TaskDefinition: ptr(req.ARN)})
		if err != nil {
			return nil, err
		}
		return toDocument(out)
	}},
	"rds:db": {KindDescribePlural, func(ctx context.Context, cfg aws.Config, req Request) (map[string]any, error) {
		out, err := rds.NewFromConfig(cfg).DescribeDBInstances(ctx, &rds.DescribeDBInstancesInput{DBInstanceIdentifier: ptr(req.Name)})
		if err != nil {
			return nil, err
		}
		return toDocument(out)
	}},
	"ec2:instance": {KindDescribePlural, func(ctx context.Context, cfg aws.Config, req Request) (map[string]any, error) {
		out, err := ec2.NewFromConfig(cfg).DescribeInstances(ctx, &ec2.DescribeInstancesInput{InstanceIds: []string{req.Name}})
		if err != nil {
			return nil, err
		}
		return toDocument(out)
	}},
	"logs:log-group": {KindDescribePlural, func(ctx context.Context, cfg aws.Config, req Request) (map[string]any, error) {
		out, err := cloudwatchlogs.NewFromConfig(cfg).DescribeLogGroups(ctx, &cloudwatchlogs.DescribeLogGroupsInput{LogGroupNamePrefix: ptr(req.Name)})
		if err != nil {
			return nil, err
		}
		return toDocument(out)
	}},
}

// Lookup finds the typed strategy for a service/resourcetype pair.
func Lookup(service, resourcetype string) (Strategy, bool) {
	s, ok := strategies[strings.ToLower(service)+":"+strings.ToLower(resourcetype)]
	return s, ok
}

// cloudControlStrategy reads any resource the Cloud Control API supports,
// keyed by canonical type name and identifier.
func cloudControlStrategy(typeName string) Strategy {
	return Strategy{KindCloudControl, func(ctx context.Context, cfg aws.Config, req Request) (map[string]any, error) {
		cc := cloudcontrol.NewFromConfig(cfg)
		out, err := cc.GetResource(ctx, &cloudcontrol.GetResourceInput{
			TypeName:   ptr(typeName),
			Identifier: ptr(req.Name),
		})
		if err != nil {
			return nil, err
		}
		if out.ResourceDescription == nil || out.ResourceDescription.Properties == nil {
			return nil, fmt.Errorf("cloud control returned no properties for %s", req.ARN)
		}
		var doc map[string]any
		if err := json.Unmarshal([]byte(*out.ResourceDescription.Properties), &doc); err != nil {
			return nil, fmt.Errorf("decoding cloud control properties for %s: %w", req.ARN, err)
		}
		return doc, nil
	}}
}
