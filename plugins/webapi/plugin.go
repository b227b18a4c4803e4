// Package webapi serves the HTTP API that starts, resets and observes mint attempts.
package webapi

import (
	"context"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/iotaledger/hive.go/daemon"
	"github.com/iotaledger/hive.go/generics/event"
	"github.com/iotaledger/hive.go/logger"
	"github.com/iotaledger/hive.go/node"
	"github.com/labstack/echo"
	"github.com/labstack/echo/middleware"
	"github.com/spf13/viper"
	"go.uber.org/dig"

	"github.com/bountyboard/mintwatch/packages/reconciler"
	"github.com/bountyboard/mintwatch/packages/shutdown"
)

// PluginName is the name of the web API plugin.
const PluginName = "WebAPI"

var (
	// Plugin is the plugin instance of the web API plugin.
	Plugin *node.Plugin
	deps   = new(dependencies)
)

type dependencies struct {
	dig.In

	Server     *echo.Echo
	Settings   *viper.Viper
	Reconciler *reconciler.Reconciler
}

func init() {
	Plugin = node.NewPlugin(PluginName, deps, node.Enabled, configure, run)

	Plugin.Events.Init.Hook(event.NewClosure(func(event *node.InitEvent) {
		if err := event.Container.Provide(newServer); err != nil {
			Plugin.Panic(err)
		}
	}))
}

func newServer() *echo.Echo {
	server := echo.New()
	server.HideBanner = true
	server.HidePort = true
	server.Use(middleware.Recover())
	server.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost},
	}))

	return server
}

func configure(_ *node.Plugin) {
	registerMintRoutes(deps.Server, deps.Reconciler, deps.Settings.GetDuration(CfgMaxWait))
	deps.Server.GET("/healthz", getHealthz)
}

func run(plugin *node.Plugin) {
	if err := daemon.BackgroundWorker("WebAPIHealthz", healthzWorker, shutdown.PriorityHealthz); err != nil {
		plugin.Panicf("Failed to start as daemon: %s", err)
	}

	bindAddress := deps.Settings.GetString(CfgBindAddress)
	if err := daemon.BackgroundWorker("WebAPI Server", func(ctx context.Context) {
		serve(ctx, deps.Server, bindAddress, plugin.Logger())
	}, shutdown.PriorityWebAPI); err != nil {
		plugin.Panicf("Failed to start as daemon: %s", err)
	}
}

func serve(ctx context.Context, server *echo.Echo, bindAddress string, log *logger.Logger) {
	defer log.Infof("Stopping %s ... done", PluginName)

	stopped := make(chan struct{})
	go func() {
		log.Infof("%s started, bind-address=%s", PluginName, bindAddress)
		if err := server.Start(bindAddress); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				log.Errorf("Error serving: %s", err)
			}
			close(stopped)
		}
	}()

	// stop if we are shutting down or the server could not be started
	select {
	case <-ctx.Done():
	case <-stopped:
	}

	log.Infof("Stopping %s ...", PluginName)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Error stopping: %s", err)
	}
}
