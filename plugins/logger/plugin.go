// Package logger initializes the global logger of the daemon. Every plugin derives a named child logger from it.
package logger

import (
	"github.com/cockroachdb/errors"
	"github.com/iotaledger/hive.go/configuration"
	"github.com/iotaledger/hive.go/daemon"
	"github.com/iotaledger/hive.go/generics/event"
	"github.com/iotaledger/hive.go/logger"
	"github.com/iotaledger/hive.go/node"
	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// PluginName is the name of the logger plugin.
const PluginName = "Logger"

// Plugin is the plugin instance of the logger plugin.
var Plugin *node.Plugin

func init() {
	Plugin = node.NewPlugin(PluginName, nil, node.Enabled)
	Plugin.Events.Init.Hook(event.NewClosure(func(event *node.InitEvent) {
		if err := event.Container.Invoke(func(settings *viper.Viper) error {
			config, err := newConfiguration(settings)
			if err != nil {
				return err
			}

			return logger.InitGlobalLogger(config)
		}); err != nil {
			panic(err)
		}

		// enable logging for the daemon
		daemon.DebugEnabled(true)
	}))
}

// newConfiguration copies the logger.* parameters into the configuration that the hive.go logger is built from.
func newConfiguration(settings *viper.Viper) (*configuration.Configuration, error) {
	outputPaths := settings.GetStringSlice(CfgLoggerOutputPaths)
	if len(outputPaths) == 0 {
		outputPaths = []string{"stdout"}
	}

	flagSet := flag.NewFlagSet(PluginName, flag.ContinueOnError)
	flagSet.String(logger.ConfigurationKeyLevel, settings.GetString(CfgLoggerLevel), "")
	flagSet.Bool(logger.ConfigurationKeyDisableCaller, settings.GetBool(CfgLoggerDisableCaller), "")
	flagSet.Bool(logger.ConfigurationKeyDisableStacktrace, settings.GetBool(CfgLoggerDisableStacktrace), "")
	flagSet.String(logger.ConfigurationKeyEncoding, settings.GetString(CfgLoggerEncoding), "")
	flagSet.StringSlice(logger.ConfigurationKeyOutputPaths, outputPaths, "")
	flagSet.Bool(logger.ConfigurationKeyDisableEvents, true, "")

	config := configuration.New()
	if err := config.LoadFlagSet(flagSet); err != nil {
		return nil, errors.Wrap(err, "failed to load logger configuration")
	}

	return config, nil
}
