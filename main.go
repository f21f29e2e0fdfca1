package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/wagnerlima/context-portal/portal-mcp/internal/server"
	"github.com/wagnerlima/context-portal/portal-mcp/internal/storage"
)

var (
	dataDir   string
	transport string
	port      string
	workspace string
)

func main() {
	// Logs go to stderr; stdout belongs to the stdio transport.
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	root := &cobra.Command{
		Use:           "portal-mcp",
		Short:         "MCP server for per-workspace project knowledge bases",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dataDir, "data-dir", "./data", "Directory for SQLite databases")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := storage.OpenRegistry(dataDir, log)
			if err != nil {
				return err
			}
			defer reg.Close()

			srv := server.New(reg)

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			switch transport {
			case "stdio":
				log.Info().Msg("context portal server starting (stdio)")
				return srv.Run(ctx, &mcp.StdioTransport{})
			case "http":
				addr := ":" + port
				handler := mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
					return srv
				}, nil)
				httpSrv := &http.Server{Addr: addr, Handler: handler}
				go func() {
					<-ctx.Done()
					httpSrv.Shutdown(context.Background())
				}()
				log.Info().Str("addr", addr).Msg("context portal server listening")
				if err := httpSrv.ListenAndServe(); err != http.ErrServerClosed {
					return err
				}
				return nil
			default:
				return fmt.Errorf("unknown transport %q (use stdio or http)", transport)
			}
		},
	}
	serve.Flags().StringVar(&transport, "transport", "stdio", "Transport mode: stdio or http")
	serve.Flags().StringVar(&port, "port", "8081", "HTTP port (only used with --transport http)")

	reindex := &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild a workspace's full-text search indexes",
		RunE: func(_ *cobra.Command, _ []string) error {
			reg, err := storage.OpenRegistry(dataDir, log)
			if err != nil {
				return err
			}
			defer reg.Close()

			ws, err := reg.Get(workspace)
			if err != nil {
				return err
			}
			if err := ws.ReindexSearch(); err != nil {
				return err
			}
			log.Info().Str("workspace", workspace).Msg("search indexes rebuilt")
			return nil
		},
	}
	reindex.Flags().StringVar(&workspace, "workspace", "", "Workspace identifier to reindex")
	reindex.MarkFlagRequired("workspace")

	root.AddCommand(serve, reindex)

	if err := root.Execute(); err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}
