package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/carscout/carscout/internal/dataset"
	"github.com/carscout/carscout/internal/recommend"
	"github.com/carscout/carscout/internal/server"
)

var serveAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve recommendation queries over HTTP",
	Long: `Serve loads the inventory once and answers queries over HTTP:

  POST /api/v1/recommend  run a query (body: the query JSON)
  GET  /api/v1/health     liveness and inventory size

Example:
  carscout serve
  carscout serve --addr :9090 --data data/integrated_cars.csv`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")
	serveCmd.Flags().StringVar(&dataPath, "data", "data/integrated_cars.csv", "integrated dataset path")
	serveCmd.Flags().StringVar(&engineName, "classifier", "cel", "rule classifier engine (cel, swipl, none)")
	serveCmd.Flags().StringVar(&rulesPath, "rules", "", "rule file path (YAML for cel, Prolog for swipl)")
	serveCmd.Flags().BoolVar(&noSemantic, "no-semantic", false, "disable the knowledge-base matcher")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	cfg.Server.Addr = serveAddr

	vehicles, err := dataset.Load(dataPath)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Loaded %d vehicles from %s\n", len(vehicles), dataPath)

	p, err := recommend.NewPipeline(cfg)
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(p, vehicles, cfg.Server)
	return srv.Start(ctx)
}
