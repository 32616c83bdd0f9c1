package orchestration

import (
	"go.uber.org/zap"

	"github.com/vsinha/divmrp/pkg/application/services/bom"
	"github.com/vsinha/divmrp/pkg/application/services/ledger"
	"github.com/vsinha/divmrp/pkg/application/services/manufacturing"
	"github.com/vsinha/divmrp/pkg/application/services/mrp"
	"github.com/vsinha/divmrp/pkg/application/services/pricing"
	"github.com/vsinha/divmrp/pkg/application/services/transfer"
	"github.com/vsinha/divmrp/pkg/domain/repositories"
	"github.com/vsinha/divmrp/pkg/infrastructure/events"
	"github.com/vsinha/divmrp/pkg/infrastructure/logging"
)

// Dependencies are the infrastructure pieces shared by every service
type Dependencies struct {
	Store repositories.Store
	Tx    repositories.TxManager
	// Stock serves the stock report; nil disables it
	Stock repositories.StockReader
	// Cache fronts stored prices; nil disables caching
	Cache     pricing.Cache
	Publisher events.Publisher
	Logger    *zap.Logger
}

// Application holds the wired services
type Application struct {
	Manufacturing *manufacturing.Service
	Transfers     *transfer.Service
	Pricing       *pricing.Calculator
	BOMs          *bom.Service
	Exploder      *mrp.Exploder
	Ledger        *ledger.Ledger
	Stock         repositories.StockReader
}

// NewApplication wires every service over one store. The ledger is shared so that orders and
// transfers book their movements through the same journal.
func NewApplication(deps Dependencies) *Application {
	logger := logging.OrNop(deps.Logger)
	publisher := deps.Publisher
	if publisher == nil {
		publisher = events.NopPublisher{}
	}

	ldg := ledger.NewLedger(deps.Store, deps.Tx, publisher, logger.Named("ledger"))
	exploder := mrp.NewExploder(deps.Store, logger.Named("explosion"))

	return &Application{
		Manufacturing: manufacturing.NewService(deps.Store, deps.Tx, exploder, ldg, publisher, logger.Named("manufacturing")),
		Transfers:     transfer.NewService(deps.Store, deps.Tx, ldg, publisher, logger.Named("transfer")),
		Pricing:       pricing.NewCalculator(deps.Store, deps.Tx, deps.Cache, publisher, logger.Named("pricing")),
		BOMs:          bom.NewService(deps.Store, deps.Tx, publisher, logger.Named("bom")),
		Exploder:      exploder,
		Ledger:        ldg,
		Stock:         deps.Stock,
	}
}
