package main

import (
	"context"
	"fmt"
	"io"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/charmbracelet/log"

	"github.com/desertthunder/mysubs/internal/credentials"
	"github.com/desertthunder/mysubs/internal/repositories"
	"github.com/desertthunder/mysubs/internal/shared"
)

// openStore selects the credential store named by store.backend.
//
// The returned closer is non-nil when the backend holds a resource that must be released.
// An unreachable keychain falls back to the file store.
func openStore(ctx context.Context, cfg *shared.Config, logger *log.Logger) (credentials.Store, io.Closer, error) {
	switch cfg.Store.Backend {
	case "keyring", "":
		ks := credentials.NewKeyringStore(cfg.Store.Service)
		if err := ks.Probe(); err != nil {
			logger.Warn("keyring unavailable, using file store", "path", cfg.CredentialsFile(), "error", err)
			return credentials.NewFileStore(cfg.CredentialsFile()), nil, nil
		}
		return ks, nil, nil

	case "file":
		return credentials.NewFileStore(cfg.CredentialsFile()), nil, nil

	case "sqlite":
		db, err := shared.OpenDatabase(cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		return repositories.NewSecretRepository(db), db, nil

	case "ssm":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		return credentials.NewSSMStore(ssm.NewFromConfig(awsCfg), cfg.Store.SSMPrefix), nil, nil

	case "memory":
		logger.Warn("using in-memory credential store, sign-in will not survive this process")
		return credentials.NewMemoryStore(), nil, nil

	default:
		return nil, nil, fmt.Errorf("%w: unknown store.backend %q", shared.ErrInvalidConfig, cfg.Store.Backend)
	}
}
