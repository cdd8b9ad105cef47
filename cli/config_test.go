package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr []string
	}{
		{
			name: "valid",
			cfg:  Config{Token: "t", OrganizationID: "o", PageSize: 100},
		},
		{
			name:    "missing token",
			cfg:     Config{OrganizationID: "o", PageSize: 100},
			wantErr: []string{"API token is required"},
		},
		{
			name:    "missing organization",
			cfg:     Config{Token: "t", PageSize: 100},
			wantErr: []string{"organization id is required"},
		},
		{
			name:    "everything missing is reported at once",
			cfg:     Config{},
			wantErr: []string{"API token is required", "organization id is required", "page size must be positive"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if len(tt.wantErr) == 0 {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			for _, want := range tt.wantErr {
				assert.Contains(t, err.Error(), want)
			}
		})
	}
}

func TestConfig_ValidateOutput(t *testing.T) {
	s3 := S3Config{Endpoint: "minio:9000", AccessKey: "a", SecretKey: "s", Region: "us-east-1"}

	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "local file", cfg: Config{Output: "report.md"}},
		{name: "s3 with settings", cfg: Config{Output: "s3://reports/runners.md", S3: s3}},
		{name: "empty output", cfg: Config{Output: " "}, wantErr: "output destination is required"},
		{name: "s3 without settings", cfg: Config{Output: "s3://reports/runners.md"}, wantErr: "S3 endpoint is required"},
		{
			name:    "s3 endpoint with scheme",
			cfg:     Config{Output: "s3://reports/runners.md", S3: S3Config{Endpoint: "https://minio:9000", AccessKey: "a", SecretKey: "s"}},
			wantErr: "must not include a scheme",
		},
		{name: "s3 without key", cfg: Config{Output: "s3://reports", S3: s3}, wantErr: "s3://bucket/key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.ValidateOutput()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseDestination(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    destination
		wantErr bool
	}{
		{name: "relative file", in: "runner_metrics_report.md", want: destination{path: "runner_metrics_report.md"}},
		{name: "absolute file", in: "/tmp/out.md", want: destination{path: "/tmp/out.md"}},
		{name: "s3 object", in: "s3://reports/2026/runners.md", want: destination{bucket: "reports", key: "2026/runners.md"}},
		{name: "s3 prefix only", in: "s3://reports/2026/", wantErr: true},
		{name: "s3 bucket only", in: "s3://reports", wantErr: true},
		{name: "empty", in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDestination(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
