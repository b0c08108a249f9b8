package artifact

import (
	"context"
	"fmt"

	"github.com/redline-eval/redline/pkg/config"
)

// Open creates the Store selected by cfg. Static S3 credentials are passed
// in already resolved; empty values use the AWS default chain.
func Open(ctx context.Context, cfg config.StorageConfig, accessKey, secretKey string) (Store, error) {
	switch cfg.Backend {
	case "", "local":
		return NewLocalStore(cfg.LocalPath), nil
	case "s3":
		s, err := NewS3Store(ctx, S3Config{
			Bucket:    cfg.Bucket,
			Region:    cfg.Region,
			Endpoint:  cfg.Endpoint,
			AccessKey: accessKey,
			SecretKey: secretKey,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	case "gcs":
		s, err := NewGCSStore(ctx, cfg.Bucket)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
