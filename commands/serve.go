package commands

import (
	"github.com/spf13/cobra"

	"github.com/penwyp/go-dose-monitor/internal/api"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the intake HTTP API",
	Long: `Serve the intake store over HTTP until interrupted.

Endpoints:
  GET    /health                  liveness check (plain text)
  GET    /intakes                 all intakes (?sort=time|amount|subject&order=asc|desc)
  GET    /intakes/{subjectId}     intakes of one subject, most recent first
  POST   /intakes                 record an intake
  PATCH  /intakes/{id}            change fields of an intake
  DELETE /intakes/{id}            delete an intake
  GET    /stats?window=7d         statistics report
  GET    /timeline?days=N         day buckets with positioned intakes and gap labels
  GET    /timeline/resolve?y=Y    time under a layout offset`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "",
		"Listen address (overrides server.addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	addr := settings.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	server, err := api.NewServer(st, settings.Monitor())
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()
	return server.ListenAndServe(ctx, addr)
}
