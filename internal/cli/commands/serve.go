package commands

import (
	"github.com/koustreak/mdbread/internal/server"
	"github.com/spf13/cobra"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the database read-only over HTTP",
		Long: `Start an HTTP API over the database:

  GET /healthz
  GET /tables
  GET /tables/{table}/schema?dialect=&drop=
  GET /tables/{table}/rows
  GET /tables/{table}/inserts?dialect=
  GET /tables/{table}/dump?format=&dialect=&drop=

The server stops gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env := envOf(cmd)
			if cmd.Flags().Changed("addr") {
				env.Config.Server.Addr = addr
			}

			r, err := env.Reader()
			if err != nil {
				return err
			}

			return server.New(r, server.Config{
				Addr:         env.Config.Server.Addr,
				ReadTimeout:  env.Config.Server.ReadTimeout,
				WriteTimeout: env.Config.Server.WriteTimeout,
				Logger:       env.Log,
			}).Serve(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address")

	return cmd
}
