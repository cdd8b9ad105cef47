package cli

// This file contains configuration flags and validation.

import (
	"errors"
	"fmt"
	"strings"

	"github.com/perfgo/runnerstat/cli/api"
	"github.com/urfave/cli/v2"
)

const defaultOutput = "runner_metrics_report.md"

// Config holds the settings of one report run.
type Config struct {
	Token          string
	OrganizationID string
	APIURL         string
	PageSize       int
	// Output is a file path or an s3://bucket/key URL
	Output    string
	RatesFile string
	S3        S3Config
}

// S3Config configures the object storage sink.
type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool
}

func configFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "token",
			Usage:   "API token used to authenticate",
			EnvVars: []string{"GITPOD_API_KEY"},
		},
		&cli.StringFlag{
			Name:    "organization-id",
			Aliases: []string{"org"},
			Usage:   "Organization whose runners are reported",
			EnvVars: []string{"GITPOD_ORGANIZATION_ID"},
		},
		&cli.StringFlag{
			Name:    "api-url",
			Usage:   "Base URL of the API",
			Value:   api.DefaultBaseURL,
			EnvVars: []string{"GITPOD_API_URL"},
		},
		&cli.IntFlag{
			Name:  "page-size",
			Usage: "Number of runners and environments requested",
			Value: api.DefaultPageSize,
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Report destination, a file path or s3://bucket/key",
			Value:   defaultOutput,
			EnvVars: []string{"RUNNERSTAT_OUTPUT"},
		},
		&cli.StringFlag{
			Name:    "rates",
			Usage:   "YAML file overriding the cost rate table",
			EnvVars: []string{"RUNNERSTAT_RATES"},
		},
		&cli.StringFlag{
			Name:    "s3-endpoint",
			Usage:   "S3 endpoint (host:port) for s3:// outputs",
			EnvVars: []string{"RUNNERSTAT_S3_ENDPOINT"},
		},
		&cli.StringFlag{
			Name:    "s3-access-key",
			Usage:   "S3 access key",
			EnvVars: []string{"RUNNERSTAT_S3_ACCESS_KEY"},
		},
		&cli.StringFlag{
			Name:    "s3-secret-key",
			Usage:   "S3 secret key",
			EnvVars: []string{"RUNNERSTAT_S3_SECRET_KEY"},
		},
		&cli.StringFlag{
			Name:    "s3-region",
			Usage:   "S3 region",
			Value:   "us-east-1",
			EnvVars: []string{"RUNNERSTAT_S3_REGION"},
		},
		&cli.BoolFlag{
			Name:    "s3-use-ssl",
			Usage:   "Use TLS when talking to the S3 endpoint",
			Value:   true,
			EnvVars: []string{"RUNNERSTAT_S3_USE_SSL"},
		},
	}
}

func configFromContext(ctx *cli.Context) Config {
	return Config{
		Token:          strings.TrimSpace(ctx.String("token")),
		OrganizationID: strings.TrimSpace(ctx.String("organization-id")),
		APIURL:         ctx.String("api-url"),
		PageSize:       ctx.Int("page-size"),
		Output:         ctx.String("output"),
		RatesFile:      ctx.String("rates"),
		S3: S3Config{
			Endpoint:  ctx.String("s3-endpoint"),
			AccessKey: ctx.String("s3-access-key"),
			SecretKey: ctx.String("s3-secret-key"),
			Region:    ctx.String("s3-region"),
			UseSSL:    ctx.Bool("s3-use-ssl"),
		},
	}
}

// Validate reports every missing or invalid setting needed to fetch data.
func (c Config) Validate() error {
	var errs []error
	if c.Token == "" {
		errs = append(errs, errors.New("API token is required (--token or GITPOD_API_KEY)"))
	}
	if c.OrganizationID == "" {
		errs = append(errs, errors.New("organization id is required (--organization-id or GITPOD_ORGANIZATION_ID)"))
	}
	if c.PageSize <= 0 {
		errs = append(errs, fmt.Errorf("page size must be positive, got %d", c.PageSize))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// ValidateOutput checks the report destination.
func (c Config) ValidateOutput() error {
	dest, err := parseDestination(c.Output)
	if err != nil {
		return err
	}
	if dest.bucket == "" {
		return nil
	}

	var errs []error
	if strings.TrimSpace(c.S3.Endpoint) == "" {
		errs = append(errs, errors.New("S3 endpoint is required for s3:// outputs (--s3-endpoint)"))
	} else if strings.Contains(c.S3.Endpoint, "://") {
		errs = append(errs, fmt.Errorf("S3 endpoint must not include a scheme: %q", c.S3.Endpoint))
	}
	if strings.TrimSpace(c.S3.AccessKey) == "" {
		errs = append(errs, errors.New("S3 access key is required for s3:// outputs (--s3-access-key)"))
	}
	if strings.TrimSpace(c.S3.SecretKey) == "" {
		errs = append(errs, errors.New("S3 secret key is required for s3:// outputs (--s3-secret-key)"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid output configuration: %w", errors.Join(errs...))
	}
	return nil
}
