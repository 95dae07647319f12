package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	echoapi "github.com/trezcool/darasa/apps/gateway/echo"
	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/nav"
	"github.com/trezcool/darasa/core/session"
	"github.com/trezcool/darasa/httpclient"
	logsvc "github.com/trezcool/darasa/services/logger"
	validationsvc "github.com/trezcool/darasa/services/validation"
	"github.com/trezcool/darasa/storage/kvstore"
	inmemstore "github.com/trezcool/darasa/storage/kvstore/inmem"
	redisstore "github.com/trezcool/darasa/storage/kvstore/redis"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	std := log.New(os.Stdout, "GATEWAY : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	var logger core.Logger
	if core.Conf.GetString("rollbarToken") != "" {
		rl := logsvc.NewRollbarLogger(std)
		rl.Enable(!core.Conf.GetBool("debug"))
		logger = rl
	} else {
		logger = core.NewStdLogger(std)
	}

	// durable session storage
	var storage kvstore.Storage
	if addr := core.Conf.GetString("redisAddr"); addr != "" {
		client := redis.NewClient(&redis.Options{Addr: addr})
		storage = redisstore.New(client, core.Conf.GetDuration("sessionTTL"))
	} else {
		storage = inmemstore.New()
	}

	// token validation: check signature locally, then ask the academic API
	// for a verdict on anything that still looks usable
	validatorClient := httpclient.New(core.Conf.GetString("apiBaseURL"), core.Conf.GetDuration("apiTimeout"))
	validator := validationsvc.NewChainValidator(
		validationsvc.NewJWTValidator([]byte(core.Conf.GetString("secretKey"))),
		validationsvc.NewRemoteValidator(validatorClient),
	)

	store := session.NewStore(session.Options{
		Storage:     storage,
		Validator:   validator,
		Logger:      logger,
		PersistMode: session.PersistModeFromString(core.Conf.GetString("sessionPersistMode")),
	})

	// shared API client wearing the request authorizer
	apiClient := httpclient.New(core.Conf.GetString("apiBaseURL"), core.Conf.GetDuration("apiTimeout"))
	authorizer := httpclient.NewAuthorizer(store, logger, "", func(target string) {
		logger.Info(fmt.Sprintf("session invalidated upstream; forcing re-authentication at %s", target))
	})
	authorizer.Register(apiClient)

	// restore any persisted session; revalidation runs in the background
	hydrateCtx, cancel := context.WithTimeout(context.Background(), core.Conf.GetDuration("validationTimeout"))
	if err := store.Hydrate(hydrateCtx); err != nil {
		logger.Warn("hydrating persisted session", err)
	}
	cancel()

	guard := nav.NewGuard(nav.Options{
		Store:     store,
		Validator: validator,
		Logger:    logger,
	})

	// =========================================================================
	// Start Gateway

	server := echoapi.NewServer(&echoapi.Options{
		Addr:   core.Conf.GetString("serverAddr"),
		Logger: logger,
		Store:  store,
		Guard:  guard,
		API:    apiClient,
	})

	go server.Start()
	logger.Info(fmt.Sprintf("%s gateway listening on %s", core.Conf.GetString("appName"), core.Conf.GetString("serverAddr")))

	// =========================================================================
	// Shutdown

	sig := <-server.ShutdownSignal()
	logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

	// give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		logger.Error("could not stop server gracefully", err)
	}
	logger.Info("Gateway stopped")
}
