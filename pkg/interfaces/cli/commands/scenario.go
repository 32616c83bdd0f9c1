package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/vsinha/divmrp/pkg/application/services/orchestration"
	"github.com/vsinha/divmrp/pkg/domain/repositories"
	"github.com/vsinha/divmrp/pkg/infrastructure/logging"
	"github.com/vsinha/divmrp/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/divmrp/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/divmrp/pkg/interfaces/cli/output"
)

// Config holds the options shared by every scenario command
type Config struct {
	ScenarioDir string
	OutputDir   string
	Format      string
	Verbose     bool
	// Out receives command output; nil means stdout
	Out io.Writer
}

func (c Config) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c Config) output() output.Config {
	return output.Config{Format: c.Format, OutputDir: c.OutputDir, Verbose: c.Verbose, Out: c.out()}
}

func (c Config) logger() *zap.Logger {
	if !c.Verbose {
		return nil
	}
	logger, err := logging.New(logging.Config{Level: "debug", Format: "console"})
	if err != nil {
		return nil
	}
	return logger
}

// loadScenario builds an in-memory application from the scenario directory. Opening stock is booked
// through the ledger so the journal starts complete.
func loadScenario(ctx context.Context, config Config) (*orchestration.Application, repositories.Store, error) {
	if config.ScenarioDir == "" {
		return nil, nil, fmt.Errorf("must specify -scenario directory")
	}

	logger := logging.OrNop(config.logger())
	store := memory.NewStore()

	summary, err := csv.NewLoader(logger.Named("scenario")).LoadDir(ctx, config.ScenarioDir, store)
	if err != nil {
		return nil, nil, fmt.Errorf("error loading scenario: %w", err)
	}

	app := orchestration.NewApplication(orchestration.Dependencies{
		Store:  store,
		Tx:     store,
		Stock:  store,
		Logger: logger,
	})
	for i, req := range summary.OpeningStock {
		if _, err := app.Ledger.Adjust(ctx, req); err != nil {
			return nil, nil, fmt.Errorf("%s row %d: %w", csv.InventoryFile, i+2, err)
		}
	}

	if config.Verbose {
		fmt.Fprintf(config.out(), "✅ Scenario loaded: %d items, %d BOMs, %d components, %d stock rows\n\n",
			summary.Items, summary.BOMs, summary.Components, len(summary.OpeningStock))
	}
	return app, store, nil
}
