package export

import (
	"context"
	"fmt"

	"dd-go/internal/config"
	"dd-go/internal/dd"
)

// NewVaultFromConfig creates the vault named by the export config type.
func NewVaultFromConfig(ctx context.Context, cfg config.ExportConfig) (dd.ExportVault, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryVault("memory"), nil
	case "", "filesystem":
		if cfg.FSRoot == "" {
			return nil, fmt.Errorf("filesystem export requires fs_root to be set")
		}
		return NewFileSystemVault("filesystem", cfg.FSRoot)
	case "s3":
		return NewS3Vault(ctx, "s3", S3Options{
			Bucket:          cfg.S3Bucket,
			Prefix:          cfg.S3Prefix,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		})
	default:
		return nil, fmt.Errorf("unknown export type: %s", cfg.Type)
	}
}
