package app

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/kms"

	vaultHTTP "github.com/runavault/runavault/internal/vault/http"
	vaultRepository "github.com/runavault/runavault/internal/vault/repository"
	"github.com/runavault/runavault/internal/vault/service"
	vaultUsecase "github.com/runavault/runavault/internal/vault/usecase"
)

// vaultComponents holds the lazily initialized vault module wiring.
type vaultComponents struct {
	oracle        service.KeyOracle
	sealer        service.Sealer
	resolver      service.Resolver
	secretRepo    vaultUsecase.SecretRepository
	secretUseCase vaultUsecase.SecretUseCase
	secretHandler *vaultHTTP.SecretHandler

	oracleInit        sync.Once
	sealerInit        sync.Once
	resolverInit      sync.Once
	secretRepoInit    sync.Once
	secretUseCaseInit sync.Once
	secretHandlerInit sync.Once
}

// KeyOracle returns the configured key oracle implementation.
// The "awskms" provider delegates to AWS KMS; "local" uses an in-process
// ChaCha20-Poly1305 oracle intended for development and self-hosting.
func (c *Container) KeyOracle() (service.KeyOracle, error) {
	c.vault.oracleInit.Do(func() {
		oracle, err := c.initKeyOracle()
		if err != nil {
			c.initErrors["keyOracle"] = err
			return
		}
		c.vault.oracle = oracle
	})
	if storedErr, exists := c.initErrors["keyOracle"]; exists {
		return nil, storedErr
	}
	return c.vault.oracle, nil
}

// Sealer returns the envelope sealer.
func (c *Container) Sealer() (service.Sealer, error) {
	c.vault.sealerInit.Do(func() {
		oracle, err := c.KeyOracle()
		if err != nil {
			c.initErrors["sealer"] = err
			return
		}
		c.vault.sealer = service.NewSealer(oracle, c.Logger())
	})
	if storedErr, exists := c.initErrors["sealer"]; exists {
		return nil, storedErr
	}
	return c.vault.sealer, nil
}

// Resolver returns the envelope resolver.
func (c *Container) Resolver() (service.Resolver, error) {
	c.vault.resolverInit.Do(func() {
		oracle, err := c.KeyOracle()
		if err != nil {
			c.initErrors["resolver"] = err
			return
		}
		c.vault.resolver = service.NewResolver(oracle, c.Logger())
	})
	if storedErr, exists := c.initErrors["resolver"]; exists {
		return nil, storedErr
	}
	return c.vault.resolver, nil
}

// SecretRepository returns the secret repository for the configured driver.
func (c *Container) SecretRepository() (vaultUsecase.SecretRepository, error) {
	c.vault.secretRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["secretRepo"] = fmt.Errorf("failed to get database for secret repository: %w", err)
			return
		}

		switch c.config.DBDriver {
		case "mysql":
			c.vault.secretRepo = vaultRepository.NewMySQLSecretRepository(db)
		case "postgres":
			c.vault.secretRepo = vaultRepository.NewPostgreSQLSecretRepository(db)
		default:
			c.initErrors["secretRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if storedErr, exists := c.initErrors["secretRepo"]; exists {
		return nil, storedErr
	}
	return c.vault.secretRepo, nil
}

// SecretUseCase returns the secret use case, decorated with metrics when enabled.
func (c *Container) SecretUseCase() (vaultUsecase.SecretUseCase, error) {
	c.vault.secretUseCaseInit.Do(func() {
		txManager, err := c.TxManager()
		if err != nil {
			c.initErrors["secretUseCase"] = err
			return
		}
		secretRepo, err := c.SecretRepository()
		if err != nil {
			c.initErrors["secretUseCase"] = err
			return
		}
		sealer, err := c.Sealer()
		if err != nil {
			c.initErrors["secretUseCase"] = err
			return
		}
		resolver, err := c.Resolver()
		if err != nil {
			c.initErrors["secretUseCase"] = err
			return
		}

		useCase := vaultUsecase.NewSecretUseCase(txManager, secretRepo, sealer, resolver)

		business, err := c.BusinessMetrics()
		if err != nil {
			c.initErrors["secretUseCase"] = err
			return
		}
		if business != nil {
			useCase = vaultUsecase.NewSecretUseCaseWithMetrics(useCase, business)
		}
		c.vault.secretUseCase = useCase
	})
	if storedErr, exists := c.initErrors["secretUseCase"]; exists {
		return nil, storedErr
	}
	return c.vault.secretUseCase, nil
}

// SecretHandler returns the vault HTTP handler.
func (c *Container) SecretHandler() (*vaultHTTP.SecretHandler, error) {
	c.vault.secretHandlerInit.Do(func() {
		useCase, err := c.SecretUseCase()
		if err != nil {
			c.initErrors["secretHandler"] = err
			return
		}
		c.vault.secretHandler = vaultHTTP.NewSecretHandler(useCase, c.Logger())
	})
	if storedErr, exists := c.initErrors["secretHandler"]; exists {
		return nil, storedErr
	}
	return c.vault.secretHandler, nil
}

// initKeyOracle selects and builds the key oracle from configuration.
func (c *Container) initKeyOracle() (service.KeyOracle, error) {
	switch c.config.OracleProvider {
	case "awskms":
		if c.config.KMSKeyID == "" {
			return nil, fmt.Errorf("KMS_KEY_ID is required for the awskms oracle provider")
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background())
		if err != nil {
			return nil, fmt.Errorf("failed to load aws config: %w", err)
		}
		return service.NewKMSOracle(kms.NewFromConfig(awsCfg), c.config.KMSKeyID), nil
	case "local":
		key, err := base64.StdEncoding.DecodeString(c.config.LocalOracleKey)
		if err != nil {
			return nil, fmt.Errorf("LOCAL_ORACLE_KEY must be base64-encoded: %w", err)
		}
		oracle, err := service.NewLocalOracle(key)
		if err != nil {
			return nil, fmt.Errorf("failed to create local oracle: %w", err)
		}
		return oracle, nil
	default:
		return nil, fmt.Errorf("unsupported oracle provider: %s", c.config.OracleProvider)
	}
}
