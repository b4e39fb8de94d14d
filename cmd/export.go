package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kiwicloudninja/arnexport/internal/helpers"
	"github.com/kiwicloudninja/arnexport/internal/message"
	"github.com/kiwicloudninja/arnexport/pkg/cfnspec"
	"github.com/kiwicloudninja/arnexport/pkg/export"
	"github.com/kiwicloudninja/arnexport/pkg/fetch"
	"github.com/kiwicloudninja/arnexport/pkg/templates"
	"github.com/kiwicloudninja/arnexport/pkg/utils"
)

var (
	profile  string
	region   string
	specPath string
	jqFilter string
	maxDepth int
	writeRaw bool
)

var exportCmd = &cobra.Command{
	Use:   "export <arn>",
	Short: "Export a resource and its nested ARNs as a CloudFormation template",
	Long: `Export queries the live AWS API for the resource the ARN names, expands
every nested ARN found in its properties into a sibling resource, and
writes the result as a CloudFormation YAML template.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&profile, "profile", "p", "", "AWS shared config profile")
	exportCmd.Flags().StringVarP(&region, "region", "r", helpers.DefaultRegion, "fallback region for ARNs without a region field")
	exportCmd.Flags().StringVar(&specPath, "spec", cfnspec.DefaultPath, "path to the CloudFormation resource specification JSON")
	exportCmd.Flags().IntVar(&maxDepth, "max-depth", export.DefaultMaxDepth, "maximum nested ARN expansion depth")
	exportCmd.Flags().BoolVar(&writeRaw, "raw", false, "also write the unexpanded API response as <name>_raw.yml")
	exportCmd.Flags().StringVar(&jqFilter, "filter", "", "jq program applied to the raw document before writing it")
	exportCmd.MarkFlagRequired("profile")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	ctx := cmd.Context()
	arnStr := args[0]

	message.Banner()

	spec, err := cfnspec.Load(specPath)
	if err != nil {
		message.Error("%v", err)
		return err
	}

	cfg, err := helpers.GetAWSCfg(ctx, region, profile, verbose)
	if err != nil {
		message.Error("%v", err)
		return err
	}
	if account, err := helpers.GetAccountId(ctx, cfg); err == nil {
		message.Info("Exporting from account %s", account)
	} else {
		message.Warning("Could not resolve caller identity: %v", err)
	}

	fetcher := fetch.New(profile, region, verbose)
	exporter := export.New(spec, fetcher, export.WithMaxDepth(maxDepth))

	message.Info("Retrieving %s", arnStr)
	res, err := exporter.Export(ctx, arnStr)
	if err != nil {
		message.Error("%v", err)
		return err
	}

	base := fmt.Sprintf("%s_%s_%s", res.Name, res.Service, res.ResourceType)
	descr := fmt.Sprintf("Exported %s from %s", base, arnStr)

	message.Info("Writing %s.yml file", base)
	path, err := templates.Write(outputDir, base, templates.NewDocument(descr, res.Resources))
	if err != nil {
		message.Error("%v", err)
		return err
	}
	message.Success("Wrote %s", path)

	if writeRaw || jqFilter != "" {
		raw := res.Raw
		if jqFilter != "" {
			raw, err = utils.FilterDocument(raw, jqFilter)
			if err != nil {
				message.Error("%v", err)
				return err
			}
		}
		rawPath, err := templates.WriteRaw(outputDir, base, descr, raw)
		if err != nil {
			message.Error("%v", err)
			return err
		}
		message.Success("Wrote %s", rawPath)
	}

	return nil
}
