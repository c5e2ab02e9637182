// Command luasentryd serves the editor intelligence host callback
// surface (§6) over HTTP, for an out-of-process editor client.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/viant/afs"

	"github.com/viant/luasentry/engine"
	"github.com/viant/luasentry/registry"
	"github.com/viant/luasentry/server"
)

// config mirrors the YAML file cobra's --config flag loads: listen
// address, the two definition-document locations (empty means "use the
// embedded defaults"), and a default hook name. DefaultHookName is parsed
// from the file but not passed to the server: every request's own
// hookName (empty when omitted) selects the context variant.
type config struct {
	ListenAddress   string `yaml:"listenAddress"`
	BuiltinsURL     string `yaml:"builtinsUrl"`
	SandboxURL      string `yaml:"sandboxUrl"`
	DefaultHookName string `yaml:"defaultHookName"`
}

func defaultConfig() config {
	return config{ListenAddress: ":8787"}
}

func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("luasentryd: read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("luasentryd: parse config %s: %w", path, err)
	}
	return cfg, nil
}

var configPath string

func main() {
	root := &cobra.Command{
		Use:   "luasentryd",
		Short: "Serve editor intelligence for sandboxed Lua authentication scripts over HTTP",
		RunE:  run,
	}
	root.Flags().StringVar(&configPath, "config", "", "path to a YAML config file")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("luasentryd: build logger: %w", err)
	}
	defer logger.Sync()

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	reg, err := loadRegistry(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	facade := engine.New(reg, logger)
	srv := server.New(facade, logger)

	logger.Info("luasentryd listening", zap.String("address", cfg.ListenAddress))
	return http.ListenAndServe(cfg.ListenAddress, srv)
}

func loadRegistry(ctx context.Context, cfg config) (*registry.Registry, error) {
	if cfg.BuiltinsURL == "" || cfg.SandboxURL == "" {
		return registry.Default()
	}
	return registry.Load(ctx, afs.New(), cfg.BuiltinsURL, cfg.SandboxURL)
}
