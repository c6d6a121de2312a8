package commands

import (
	"blog-admin/internal/bitbucket"
	"blog-admin/internal/config"
	"blog-admin/internal/constants"
	"blog-admin/internal/database"
	"blog-admin/internal/environment"
	"blog-admin/internal/logging"
	"blog-admin/internal/routes"
	"context"
	"errors"
	"fmt"
	"github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapio"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"
)

const (
	initStateRunning = "running"
	initStateFailed  = "failed"
)

var initializationState sync.Map

func ServeCmd(loadConfig configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Starts the blog API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConfig()
			if err != nil {
				return err
			}
			return serve(c)
		},
	}
}

func serve(c *config.Configuration) error {
	logger := logging.InitLogging(c)

	controllerRegistry, err := injectDependencies(c, logger)
	if err != nil {
		logger.LogErrorf(nil, "injecting dependencies failed: %s", err.Error())
		return err
	}

	ginLogger := logging.InitGinLogger(c)

	gin.DefaultWriter = io.MultiWriter(&zapio.Writer{Log: ginLogger, Level: c.Logging.Level})
	if c.Logging.Level == zap.DebugLevel {
		logger.LogDebug(nil, "Enabling Gin debug (writes to access log)")
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		ginzap.GinzapWithConfig(ginLogger, &ginzap.Config{
			TimeFormat: time.RFC3339,
			UTC:        false,
			SkipPaths:  []string{"/status", "/heartbeat"},
		}),
		ginzap.RecoveryWithZap(ginLogger, true),
	)

	routes.InitRouter(r, controllerRegistry)

	SetupCloseHandler(logger)

	bitbucketController := controllerRegistry[constants.Bitbucket].(*bitbucket.Controller)
	if bitbucketController.Importer != nil && c.BitBucket.SyncOnStartup {
		go importOnStartup(bitbucketController.Importer, logger)
		go checkAllInitializations(logger)
	}

	if len(c.ListeningAddress) == 0 && len(c.ListeningPort) == 0 {
		return errors.New("no listening address/port provided")
	}

	logger.LogInfof(nil, "API running. Listening on %s:%s", c.ListeningAddress, c.ListeningPort)

	if err = r.Run(c.ListeningAddress + ":" + c.ListeningPort); err != nil {
		logger.LogErrorf(nil, "Listening on %s:%s failed: %s", c.ListeningAddress, c.ListeningPort, err.Error())
		return err
	}
	return nil
}

func injectDependencies(c *config.Configuration, logger logging.Logger) (map[int]any, error) {
	db, err := database.InitDatabase(c, logger)
	if err != nil {
		return nil, err
	}

	env := environment.Environment(
		&database.GormRepository{DB: db},
		logger,
	)

	var reader bitbucket.BitbucketReader
	apiReader, err := bitbucket.InitBitbucket(c, env)
	switch {
	case errors.Is(err, bitbucket.ErrNotConfigured):
		logger.LogWarn(logging.GetLogTypeInitialization(), "Bitbucket is not configured; post import is disabled")
	case err != nil:
		return nil, fmt.Errorf("error initializing Bitbucket API: %w", err)
	default:
		reader = apiReader
	}

	return routes.NewControllerRegistry(c, env, reader), nil
}

func importOnStartup(importer *bitbucket.Importer, logger logging.Logger) {
	const key = "bitbucket post import"
	initializationState.Store(key, initStateRunning)

	summary, err := importer.Import(context.Background())
	if err != nil {
		logger.LogErrorf(logging.GetLogTypeInitialization(), "post import on startup failed: %v", err)
		initializationState.Store(key, initStateFailed)
		return
	}

	logger.LogInfof(logging.GetLogTypeInitialization(), "post import on startup: %d imported, %d skipped, %d deleted",
		summary.Imported, summary.Skipped, summary.Deleted)
	initializationState.Delete(key)
}

func checkAllInitializations(logger logging.Logger) {
	internalCounter := 15
	failedInits, unfinishedInits := make([]string, 0), make([]string, 0)
	time.Sleep(time.Second * 2)
	for internalCounter != 0 {
		allWorkedOn := true
		failedInits = []string{}
		unfinishedInits = []string{}
		initializationState.Range(func(key, value any) bool {
			if value == initStateFailed {
				failedInits = append(failedInits, key.(string))
			} else {
				unfinishedInits = append(unfinishedInits, key.(string))
				logger.LogWarnf(nil, "Initialization: waiting for %v", key)
				allWorkedOn = false
			}
			return true
		})
		if allWorkedOn {
			break
		}
		time.Sleep(time.Second * 2)
		if internalCounter%5 == 0 {
			logger.LogDebug(nil, "Waiting for all initialization(s) to complete...")
		}
		internalCounter--
	}
	if len(failedInits) > 0 || len(unfinishedInits) > 0 || internalCounter == 0 {
		if len(unfinishedInits) > 0 {
			logger.LogErrorf(nil, "%v Initialization function(s) did not complete in time: %v",
				len(unfinishedInits), strings.Join(unfinishedInits, ", "))
		}
		if len(failedInits) > 0 {
			logger.LogErrorf(nil, "%v Initialization function(s) failed: %v",
				len(failedInits), strings.Join(failedInits, ", "))
		}
	} else {
		logger.LogInfo(nil, "Initialization completed successfully")
	}
}

func SetupCloseHandler(logger logging.Logger) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-c
		fmt.Println()
		logger.LogWarnf(nil, "Cleaning up...")
		time.Sleep(1 * time.Second)
		os.Exit(1)
	}()
}
