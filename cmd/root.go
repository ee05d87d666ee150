package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cmmoran/beanres/pkg/beans"
	"github.com/cmmoran/beanres/pkg/project"
	"github.com/cmmoran/beanres/pkg/workspace"
)

const (
	keyLogLevel      = "common.log.level"
	keyProject       = "project"
	keyBackend       = "backend"
	keyIndexCache    = "index.cache"
	keyWatchDebounce = "watch.debounce"
	keyMaxPath       = "engine.max_path_segments"
	keyNoSubtypes    = "engine.no_subtypes"
)

var (
	configFiles    []string
	level, version string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:           "beanres",
	Short:         "resolve, complete and validate bean definitions",
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&level, "level", "l", "info", "log level (trace, debug, info, warn, error, debug+1, etc)")
	flags.StringSliceVar(&configFiles, "config", []string{}, "config file(s) - multiple config files are merged with last specified file having highest priority")
	flags.StringP("project", "p", "beans-project.yaml", "project descriptor")
	flags.String("backend", "", "type backend, overrides the descriptor (java, go)")
	flags.String("index-cache", ".beanres/index.db", "sqlite cache for the java type index, empty disables it")
	flags.Int("max-path-segments", 0, "reject property paths with more segments, 0 for no limit")
	flags.Bool("no-subtypes", false, "do not widen required types with their subtypes")

	_ = viper.BindPFlag(keyProject, flags.Lookup("project"))
	_ = viper.BindPFlag(keyBackend, flags.Lookup("backend"))
	_ = viper.BindPFlag(keyIndexCache, flags.Lookup("index-cache"))
	_ = viper.BindPFlag(keyMaxPath, flags.Lookup("max-path-segments"))
	_ = viper.BindPFlag(keyNoSubtypes, flags.Lookup("no-subtypes"))
}

func parseLevel(s string) (slog.Level, error) {
	var ll slog.Level
	if strings.EqualFold(s, "trace") {
		return slog.Level(-8), nil
	}
	err := (&ll).UnmarshalText([]byte(s))
	return ll, err
}

func newLogger(ll slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		AddSource:   false,
		Level:       ll,
		ReplaceAttr: nil,
	}))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	ll, err := parseLevel(level)
	if err != nil {
		panic("invalid log level: " + level)
	}
	l := newLogger(ll)
	slog.SetDefault(l)

	if len(configFiles) > 0 {
		// Use config file from the flag.
		viper.SetConfigFile(configFiles[0])
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("/etc")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("beanres")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		l.With("config", viper.ConfigFileUsed()).Debug("using config file(s)")
	} else {
		l.With("error", err, "config", viper.ConfigFileUsed()).Debug("unable to use config file(s)")
	}
	if len(configFiles) > 1 {
		for _, file := range configFiles[1:] {
			if configBytes, err := os.ReadFile(file); err == nil {
				if err = viper.MergeConfig(bytes.NewReader(configBytes)); err != nil {
					l.With("error", err, "file", file).Warn("failed to merge config file")
				} else {
					l.With("file", file).Debug("merged config file")
				}
			}
		}
	}
	if len(version) > 0 {
		viper.Set("version", version)
	}

	// the config file level applies unless --level was given
	if llstr := viper.GetString(keyLogLevel); llstr != "" && !rootCmd.PersistentFlags().Changed("level") {
		cl, err := parseLevel(llstr)
		if err != nil {
			panic("invalid log level: " + llstr)
		}
		slog.SetDefault(newLogger(cl))
	}
}

// openWorkspace opens the configured project.
func openWorkspace(ctx context.Context) (*workspace.Workspace, error) {
	engineOpts := []beans.Option{beans.WithMaxPathSegments(viper.GetInt(keyMaxPath))}
	if viper.GetBool(keyNoSubtypes) {
		engineOpts = append(engineOpts, beans.WithoutSubtypes())
	}
	return workspace.Open(ctx, viper.GetString(keyProject),
		workspace.WithBackend(project.Backend(viper.GetString(keyBackend))),
		workspace.WithIndexCache(viper.GetString(keyIndexCache)),
		workspace.WithLogger(slog.Default()),
		workspace.WithEngineOptions(engineOpts...),
	)
}

func writeJSON(c *cobra.Command, v any) error {
	enc := json.NewEncoder(c.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// lookup finds a bean visible from unit or fails.
func lookup(e *beans.Engine, unit, id string) (*beans.Declaration, error) {
	d, err := e.Lookup(unit, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, fmt.Errorf("bean %q not found from %s", id, unit)
	}
	return d, nil
}
