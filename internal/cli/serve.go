package cli

import (
	"github.com/spf13/cobra"

	"github.com/postframe/postframe/internal/api"
)

// serveCommand creates the serve command, which exposes the composition
// pipeline over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the postframe HTTP API",
		Long: `Serve starts an HTTP server with the compose, caption and background
endpoints. The server is stateless; every request runs a fresh pipeline
pass and nothing is stored after the response.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if !cmd.Flags().Changed("addr") {
				if a := c.config().Server.Addr; a != "" {
					addr = a
				}
			}

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			captionClient, err := c.captionClient(ctx, noCache)
			if err != nil {
				return err
			}
			defer captionClient.Close()

			artClient, err := c.artClient(ctx, noCache)
			if err != nil {
				return err
			}
			defer artClient.Close()

			server, err := api.NewServer(api.Options{
				Runner:  runner,
				Caption: captionClient,
				Art:     artClient,
				Logger:  c.Logger,
			})
			if err != nil {
				return err
			}

			prog := newProgress(c.Logger)
			err = server.ListenAndServe(ctx, addr)
			prog.done("Server stopped")
			return err
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass all caches")

	return cmd
}
