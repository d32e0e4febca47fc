package app

import (
	"fmt"
	"sync"

	directoryHTTP "github.com/runavault/runavault/internal/directory/http"
	directoryRepository "github.com/runavault/runavault/internal/directory/repository"
	directoryUsecase "github.com/runavault/runavault/internal/directory/usecase"
)

// directoryComponents holds the lazily initialized directory module wiring.
type directoryComponents struct {
	userRepo         directoryUsecase.UserRepository
	groupRepo        directoryUsecase.GroupRepository
	directoryUseCase directoryUsecase.DirectoryUseCase
	directoryHandler *directoryHTTP.DirectoryHandler

	userRepoInit         sync.Once
	groupRepoInit        sync.Once
	directoryUseCaseInit sync.Once
	directoryHandlerInit sync.Once
}

// UserRepository returns the user repository for the configured driver.
func (c *Container) UserRepository() (directoryUsecase.UserRepository, error) {
	c.directory.userRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["userRepo"] = fmt.Errorf("failed to get database for user repository: %w", err)
			return
		}

		switch c.config.DBDriver {
		case "mysql":
			c.directory.userRepo = directoryRepository.NewMySQLUserRepository(db)
		case "postgres":
			c.directory.userRepo = directoryRepository.NewPostgreSQLUserRepository(db)
		default:
			c.initErrors["userRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if storedErr, exists := c.initErrors["userRepo"]; exists {
		return nil, storedErr
	}
	return c.directory.userRepo, nil
}

// GroupRepository returns the group repository for the configured driver.
func (c *Container) GroupRepository() (directoryUsecase.GroupRepository, error) {
	c.directory.groupRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["groupRepo"] = fmt.Errorf("failed to get database for group repository: %w", err)
			return
		}

		switch c.config.DBDriver {
		case "mysql":
			c.directory.groupRepo = directoryRepository.NewMySQLGroupRepository(db)
		case "postgres":
			c.directory.groupRepo = directoryRepository.NewPostgreSQLGroupRepository(db)
		default:
			c.initErrors["groupRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if storedErr, exists := c.initErrors["groupRepo"]; exists {
		return nil, storedErr
	}
	return c.directory.groupRepo, nil
}

// DirectoryUseCase returns the directory use case, decorated with metrics when enabled.
func (c *Container) DirectoryUseCase() (directoryUsecase.DirectoryUseCase, error) {
	c.directory.directoryUseCaseInit.Do(func() {
		userRepo, err := c.UserRepository()
		if err != nil {
			c.initErrors["directoryUseCase"] = err
			return
		}
		groupRepo, err := c.GroupRepository()
		if err != nil {
			c.initErrors["directoryUseCase"] = err
			return
		}

		useCase, err := directoryUsecase.NewDirectoryUseCase(userRepo, groupRepo)
		if err != nil {
			c.initErrors["directoryUseCase"] = fmt.Errorf("failed to create directory use case: %w", err)
			return
		}

		business, err := c.BusinessMetrics()
		if err != nil {
			c.initErrors["directoryUseCase"] = err
			return
		}
		if business != nil {
			useCase = directoryUsecase.NewDirectoryUseCaseWithMetrics(useCase, business)
		}
		c.directory.directoryUseCase = useCase
	})
	if storedErr, exists := c.initErrors["directoryUseCase"]; exists {
		return nil, storedErr
	}
	return c.directory.directoryUseCase, nil
}

// DirectoryHandler returns the directory HTTP handler.
func (c *Container) DirectoryHandler() (*directoryHTTP.DirectoryHandler, error) {
	c.directory.directoryHandlerInit.Do(func() {
		useCase, err := c.DirectoryUseCase()
		if err != nil {
			c.initErrors["directoryHandler"] = err
			return
		}
		c.directory.directoryHandler = directoryHTTP.NewDirectoryHandler(useCase, c.Logger())
	})
	if storedErr, exists := c.initErrors["directoryHandler"]; exists {
		return nil, storedErr
	}
	return c.directory.directoryHandler, nil
}
