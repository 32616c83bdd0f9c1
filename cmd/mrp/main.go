package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/vsinha/divmrp/pkg/interfaces/cli/commands"
)

type command interface {
	Execute(ctx context.Context) error
}

func main() {
	if len(os.Args) < 2 || os.Args[1] == "-help" || os.Args[1] == "help" {
		showHelp()
		return
	}

	// a missing .env file is fine
	_ = godotenv.Load()

	cmd, err := parse(os.Args[1], os.Args[2:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	if err := cmd.Execute(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func parse(name string, args []string) (command, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)

	var config commands.Config
	scenarioFlags := func() {
		fs.StringVar(&config.ScenarioDir, "scenario", "", "Path to scenario directory containing CSV files")
		fs.StringVar(&config.OutputDir, "output", "", "Output directory for results (optional)")
		fs.StringVar(&config.Format, "format", "text", "Output format: text, json, csv, xlsx")
		fs.BoolVar(&config.Verbose, "verbose", false, "Enable verbose output")
	}

	switch name {
	case "explode":
		scenarioFlags()
		cfg := commands.ExplodeConfig{}
		fs.StringVar(&cfg.ItemCode, "item", "", "Item code to explode")
		fs.Int64Var(&cfg.DivisionID, "division", 0, "Only consider BOMs of this division id")
		fs.StringVar(&cfg.Quantity, "quantity", "1", "Quantity to build")
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		cfg.Config = config
		return commands.NewExplodeCommand(cfg), nil

	case "price":
		scenarioFlags()
		cfg := commands.PriceConfig{}
		fs.StringVar(&cfg.ItemCode, "item", "", "Item code to price")
		fs.Int64Var(&cfg.ScenarioID, "pricing-scenario", 0, "Pricing scenario id")
		fs.Int64Var(&cfg.CurrencyID, "currency", 0, "Currency id (default: base currency)")
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		cfg.Config = config
		return commands.NewPriceCommand(cfg), nil

	case "transfer":
		scenarioFlags()
		cfg := commands.TransferConfig{}
		fs.Int64Var(&cfg.FromDivisionID, "from-division", 0, "Source division id")
		fs.Int64Var(&cfg.ToDivisionID, "to-division", 0, "Destination division id")
		fs.Int64Var(&cfg.FromWarehouseID, "from-warehouse", 0, "Source warehouse id")
		fs.Int64Var(&cfg.ToWarehouseID, "to-warehouse", 0, "Destination warehouse id")
		fs.StringVar(&cfg.ItemCode, "item", "", "Item code to transfer")
		fs.StringVar(&cfg.Quantity, "quantity", "", "Quantity to transfer")
		fs.StringVar(&cfg.LotNumber, "lot", "", "Lot number (optional)")
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		cfg.Config = config
		return commands.NewTransferCommand(cfg), nil

	case "token":
		cfg := commands.TokenConfig{}
		var divisions string
		fs.StringVar(&cfg.Secret, "secret", os.Getenv("JWT_SECRET"), "Signing secret (default: $JWT_SECRET)")
		fs.StringVar(&cfg.Issuer, "issuer", os.Getenv("JWT_ISSUER"), "Token issuer")
		fs.StringVar(&cfg.UserID, "user", "", "User id")
		fs.StringVar(&cfg.Name, "name", "", "Display name")
		fs.StringVar(&divisions, "divisions", "", "Comma separated division ids")
		fs.DurationVar(&cfg.TTL, "ttl", 24*time.Hour, "Token lifetime")
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		ids, err := parseIDs(divisions)
		if err != nil {
			return nil, err
		}
		cfg.Divisions = ids
		return commands.NewTokenCommand(cfg), nil

	default:
		return nil, fmt.Errorf("unknown command %q (run mrp help)", name)
	}
}

func parseIDs(s string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid division id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func showHelp() {
	fmt.Printf(`mrp - multi-division manufacturing planning tools

USAGE:
    mrp explode  -scenario <dir> -item <code> [-quantity n] [-division id]
    mrp price    -scenario <dir> -item <code> -pricing-scenario <id> [-currency id]
    mrp transfer -scenario <dir> -item <code> -quantity n -from-division id -to-division id
                 -from-warehouse id -to-warehouse id [-lot number]
    mrp token    -user <id> [-name n] [-divisions 1,2] [-ttl 24h] [-secret s]

COMMON OPTIONS:
    -scenario <dir>     Path to scenario directory containing CSV files
    -output <dir>       Output directory for results (optional)
    -format <fmt>       Output format: text, json, csv, xlsx (default: text)
    -verbose            Enable verbose output

SCENARIO DIRECTORY STRUCTURE (every file is optional):
    scenario_name/
    ├── divisions.csv          code,name
    ├── warehouses.csv         code,name,division_code
    ├── locations.csv          code,warehouse_code
    ├── items.csv              code,name,type,uom_id
    ├── boms.csv               item_code,division_code,version,status,revision
    ├── bom_components.csv     item_code,division_code,version,component_code,quantity,uom_id,position,parent_position
    ├── currencies.csv         code,name,is_base
    ├── cost_types.csv         name,category
    ├── item_costs.csv         item_code,cost_type,amount,currency_code
    ├── pricing_scenarios.csv  name,markup_percentage,discount_percentage,include_indirect_costs,status
    └── inventory.csv          item_code,warehouse_code,location_code,lot_number,quantity

EXAMPLES:
    # Materials for 10 shirts
    mrp explode -scenario example/textile -item SHT-OX-M -quantity 10

    # Standard price as JSON
    mrp price -scenario example/textile -item SHT-OX-M -pricing-scenario 1 -format json

    # Move 120 m of yarn from weaving to garments
    mrp transfer -scenario example/textile -item YRN-COT-40 -quantity 120 \
        -from-division 1 -to-division 2 -from-warehouse 1 -to-warehouse 2

    # API token for the garment division
    mrp token -user planner-1 -divisions 2
`)
}
