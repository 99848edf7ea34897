package cli

import (
	"os"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/kioku/pkg/repository"
	"github.com/m-mizutani/kioku/pkg/service/mcp"
	"github.com/m-mizutani/kioku/pkg/usecase/memory"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// config holds configuration values
type config struct {
	logLevel string

	// Transport
	transport string
	addr      string

	// Remote store
	storeType    string
	storeURL     string
	storeAPIKey  string
	storeTimeout time.Duration

	// Facade
	appContext string
	policyPath string

	// Identity
	userID     string
	authTokens []string
}

// globalFlags returns common flags used across commands with destination config
func globalFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Sources:     cli.EnvVars("KIOKU_LOG_LEVEL"),
			Destination: &cfg.logLevel,
		},
		&cli.StringFlag{
			Name:        "store",
			Usage:       "Memory store backend: remote or local",
			Value:       "remote",
			Sources:     cli.EnvVars("KIOKU_STORE"),
			Destination: &cfg.storeType,
		},
		&cli.StringFlag{
			Name:        "store-url",
			Usage:       "Base URL of the remote memory service",
			Sources:     cli.EnvVars("KIOKU_STORE_URL"),
			Destination: &cfg.storeURL,
		},
		&cli.StringFlag{
			Name:        "store-api-key",
			Usage:       "API key for the remote memory service",
			Sources:     cli.EnvVars("KIOKU_STORE_API_KEY"),
			Destination: &cfg.storeAPIKey,
		},
		&cli.DurationFlag{
			Name:        "store-timeout",
			Usage:       "Per-call timeout for store requests",
			Value:       30 * time.Second,
			Sources:     cli.EnvVars("KIOKU_STORE_TIMEOUT"),
			Destination: &cfg.storeTimeout,
		},
		&cli.StringFlag{
			Name:        "app-context",
			Usage:       "Namespace tag attached to every write",
			Value:       "kioku",
			Sources:     cli.EnvVars("KIOKU_APP_CONTEXT"),
			Destination: &cfg.appContext,
		},
		&cli.StringFlag{
			Name:        "policy",
			Usage:       "Path to a YAML file with relevance thresholds",
			Sources:     cli.EnvVars("KIOKU_POLICY"),
			Destination: &cfg.policyPath,
		},
	}
}

// serveFlags returns flags specific to the serve command
func serveFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "transport",
			Aliases:     []string{"t"},
			Usage:       "MCP transport: stdio or http",
			Value:       "stdio",
			Sources:     cli.EnvVars("KIOKU_TRANSPORT"),
			Destination: &cfg.transport,
		},
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Listen address for HTTP transport",
			Value:       "127.0.0.1:3636",
			Sources:     cli.EnvVars("KIOKU_ADDR"),
			Destination: &cfg.addr,
		},
		&cli.StringFlag{
			Name:        "user-id",
			Usage:       "User key for stdio transport (single-user session)",
			Sources:     cli.EnvVars("KIOKU_USER_ID"),
			Destination: &cfg.userID,
		},
		&cli.StringSliceFlag{
			Name:        "auth-token",
			Usage:       "Static token:user pair for HTTP transport (repeatable)",
			Sources:     cli.EnvVars("KIOKU_AUTH_TOKENS"),
			Destination: &cfg.authTokens,
		},
	}
}

// newRepository creates the configured store backend
func (cfg *config) newRepository() (repository.Repository, error) {
	switch cfg.storeType {
	case "local":
		return repository.NewMemory(), nil

	case "remote":
		var opts []repository.HTTPOption
		if cfg.storeTimeout > 0 {
			opts = append(opts, repository.WithTimeout(cfg.storeTimeout))
		}
		repo, err := repository.NewHTTPClient(cfg.storeURL, cfg.storeAPIKey, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create store client")
		}
		return repo, nil

	default:
		return nil, goerr.New("unknown store backend", goerr.V("store", cfg.storeType))
	}
}

// newUseCase creates the memory facade with the configured policy
func (cfg *config) newUseCase() (*memory.UseCase, error) {
	repo, err := cfg.newRepository()
	if err != nil {
		return nil, err
	}

	policy, err := loadPolicy(cfg.policyPath)
	if err != nil {
		return nil, err
	}

	opts := []memory.Option{memory.WithPolicy(policy)}
	if cfg.appContext != "" {
		opts = append(opts, memory.WithAppContext(cfg.appContext))
	}
	return memory.New(repo, opts...), nil
}

// newVerifier builds the token verifier for HTTP transport
func (cfg *config) newVerifier() (mcp.TokenVerifier, error) {
	if len(cfg.authTokens) == 0 {
		return nil, goerr.New("HTTP transport requires at least one auth-token")
	}

	tokens := make(map[string]string, len(cfg.authTokens))
	for _, pair := range cfg.authTokens {
		token, user, ok := strings.Cut(pair, ":")
		if !ok || token == "" || user == "" {
			return nil, goerr.New("auth-token must be token:user", goerr.V("pair", pair))
		}
		tokens[token] = user
	}
	return mcp.NewStaticVerifier(tokens), nil
}

// loadPolicy reads relevance thresholds from a YAML file. Missing path means
// defaults; fields absent from the file also keep their defaults.
func loadPolicy(path string) (memory.Policy, error) {
	policy := memory.DefaultPolicy()
	if path == "" {
		return policy, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return policy, goerr.Wrap(err, "failed to read policy file", goerr.V("path", path))
	}
	if err := yaml.Unmarshal(data, &policy); err != nil {
		return policy, goerr.Wrap(err, "failed to parse policy file", goerr.V("path", path))
	}
	return policy, nil
}
