// Package config provides the *viper.Viper that merges the command line flags, the environment and the config file.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/iotaledger/hive.go/generics/event"
	"github.com/iotaledger/hive.go/node"
	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// PluginName is the name of the config plugin.
const PluginName = "Config"

const (
	// CfgConfigName defines the flag of the config file name without file extension.
	CfgConfigName = "config"
	// CfgConfigDir defines the flag of the directory that contains the config file.
	CfgConfigDir = "config-dir"
	// CfgSkipConfig defines the flag that allows to run without config file.
	CfgSkipConfig = "skip-config"
)

// ErrConfigNotFound is returned if no config file was found and --skip-config was not set.
var ErrConfigNotFound = errors.New("config file not found")

// Plugin is the plugin instance of the config plugin.
var Plugin *node.Plugin

func init() {
	registerFlags(flag.CommandLine)

	Plugin = node.NewPlugin(PluginName, nil, node.Enabled)
	Plugin.Events.Init.Hook(event.NewClosure(func(event *node.InitEvent) {
		settings, err := Load(flag.CommandLine, os.Args[1:])
		if err != nil {
			// the global logger is not initialized at this stage
			fmt.Println(err.Error())
			if errors.Is(err, ErrConfigNotFound) {
				fmt.Println("no config file present, terminating mintwatch. please use the provided config.default.json to create a config.json.")
			}
			// the daemon is not running yet, so we just exit
			os.Exit(1)
		}

		if err := event.Container.Provide(func() *viper.Viper { return settings }); err != nil {
			panic(err)
		}
	}))
}

func registerFlags(flagSet *flag.FlagSet) {
	flagSet.StringP(CfgConfigName, "c", "config", "Filename of the config file without the file extension")
	flagSet.StringP(CfgConfigDir, "d", ".", "Path to the directory containing the config file")
	flagSet.Bool(CfgSkipConfig, false, "Skip config file availability check")
}

// Load parses the arguments into the flag set and returns a *viper.Viper with the flags bound to it.
//
// It automatically reads in a single config file starting with "config" (can be changed via the --config CLI flag)
// and ending with one of the extensions viper supports. Environment variables override the config file, with dots in
// the keys replaced by underscores (LEDGER_ENDPOINT sets ledger.endpoint).
func Load(flagSet *flag.FlagSet, arguments []string) (*viper.Viper, error) {
	if !flagSet.Parsed() {
		if err := flagSet.Parse(arguments); err != nil {
			return nil, errors.Wrap(err, "failed to parse flags")
		}
	}

	settings := viper.New()
	settings.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	settings.AutomaticEnv()

	if err := settings.BindPFlags(flagSet); err != nil {
		return nil, errors.Wrap(err, "failed to bind flags")
	}

	if err := fetch(settings, settings.GetString(CfgConfigDir), settings.GetString(CfgConfigName), settings.GetBool(CfgSkipConfig)); err != nil {
		return nil, err
	}

	return settings, nil
}

func fetch(settings *viper.Viper, configDirPath, configName string, skipConfigAvailable bool) error {
	settings.SetConfigName(configName)
	settings.AddConfigPath(configDirPath)

	err := settings.ReadInConfig()
	if err == nil {
		return nil
	}

	var notFound viper.ConfigFileNotFoundError
	if !errors.As(err, &notFound) {
		return errors.Wrapf(err, "failed to read config file %s in %s", configName, configDirPath)
	}
	if skipConfigAvailable {
		return nil
	}

	return errors.Wrapf(ErrConfigNotFound, "%s in %s", configName, configDirPath)
}
