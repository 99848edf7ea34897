package cli

import (
	"context"
	"net/http"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/kioku/pkg/service/mcp"
	"github.com/m-mizutani/kioku/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func serveCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:  "serve",
		Usage: "Run the MCP memory server",
		Flags: append(globalFlags(&cfg), serveFlags(&cfg)...),
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.New(cfg.logLevel, os.Stderr)
			logging.SetDefault(logger)
			ctx = logging.With(ctx, logger)

			uc, err := cfg.newUseCase()
			if err != nil {
				return err
			}

			server := mcp.New(uc)

			switch cfg.transport {
			case "stdio":
				logger.Info("starting MCP server on stdio",
					"store", cfg.storeType, "app_context", cfg.appContext)
				return server.RunStdio(ctx, cfg.userID)

			case "http":
				verifier, err := cfg.newVerifier()
				if err != nil {
					return err
				}
				logger.Info("starting MCP server on HTTP",
					"addr", cfg.addr, "store", cfg.storeType, "app_context", cfg.appContext)
				httpServer := &http.Server{
					Addr:    cfg.addr,
					Handler: server.HTTPHandler(verifier),
				}
				if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					return goerr.Wrap(err, "HTTP server failed")
				}
				return nil

			default:
				return goerr.New("unknown transport", goerr.V("transport", cfg.transport))
			}
		},
	}
}
