// Package prometheus exports the metrics of the daemon to Prometheus.
package prometheus

import (
	"context"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/iotaledger/hive.go/daemon"
	"github.com/iotaledger/hive.go/generics/event"
	"github.com/iotaledger/hive.go/node"
	"github.com/spf13/viper"
	"go.uber.org/dig"

	"github.com/bountyboard/mintwatch/packages/feed"
	"github.com/bountyboard/mintwatch/packages/feed/wsfeed"
	"github.com/bountyboard/mintwatch/packages/ledger"
	"github.com/bountyboard/mintwatch/packages/metrics"
	"github.com/bountyboard/mintwatch/packages/reconciler"
	"github.com/bountyboard/mintwatch/packages/shutdown"
)

// PluginName is the name of the prometheus plugin.
const PluginName = "Prometheus"

var (
	// Plugin is the plugin instance of the prometheus plugin.
	Plugin *node.Plugin
	deps   = new(dependencies)
)

type dependencies struct {
	dig.In

	Collector  *metrics.Collector
	Settings   *viper.Viper
	Reconciler *reconciler.Reconciler
	Hub        *feed.Hub
	Client     *wsfeed.Client
	Watcher    *ledger.Watcher
}

func init() {
	Plugin = node.NewPlugin(PluginName, deps, node.Enabled, configure, run)

	Plugin.Events.Init.Hook(event.NewClosure(func(event *node.InitEvent) {
		if err := event.Container.Provide(metrics.NewCollector); err != nil {
			Plugin.Panic(err)
		}
	}))
}

func configure(_ *node.Plugin) {
	deps.Collector.AttachReconciler(deps.Reconciler)
	deps.Collector.CollectHub(deps.Hub)
	deps.Collector.CollectConnection(deps.Client.IsConnected)
	deps.Collector.CollectWatches(deps.Watcher.Running)
}

func run(plugin *node.Plugin) {
	bindAddress := deps.Settings.GetString(CfgPrometheusBindAddress)

	if err := daemon.BackgroundWorker("Prometheus exporter", func(ctx context.Context) {
		server := &http.Server{Addr: bindAddress, Handler: newEngine(deps.Collector)}

		go func() {
			plugin.LogInfof("You can now access the Prometheus exporter using: http://%s/metrics", bindAddress)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				plugin.LogErrorf("Stopping Prometheus exporter due to an error: %s", err)
			}
		}()

		<-ctx.Done()
		plugin.LogInfo("Stopping Prometheus exporter ...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			plugin.LogError(err.Error())
		}
		plugin.LogInfo("Stopping Prometheus exporter ... done")
	}, shutdown.PriorityPrometheus); err != nil {
		plugin.Panicf("Failed to start as daemon: %s", err)
	}
}

func newEngine(collector *metrics.Collector) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery())

	handler := collector.Handler()
	engine.GET("/metrics", func(c *gin.Context) {
		handler.ServeHTTP(c.Writer, c.Request)
	})

	return engine
}
