// Command fremontctl runs operator tasks against the Fremont API database.
package main

import (
	"github.com/alecthomas/kong"
	"github.com/fremontasb/fremont-api/internal/config"
	"github.com/fremontasb/fremont-api/internal/database"
	"github.com/fremontasb/fremont-api/internal/logger"
	"github.com/fremontasb/fremont-api/internal/repository"
)

type cliCtx struct {
	Config *config.Config
}

type cli struct {
	Debug bool `help:"Enable debug logging"`

	Migrate         MigrateCmd         `cmd:"" help:"Run database migrations"`
	CreateSuperuser CreateSuperuserCmd `cmd:"" help:"Create a superuser account"`
	ImportClubs     ImportClubsCmd     `cmd:"" help:"Create or update clubs from a CSV file"`
	Reconcile       ReconcileCmd       `cmd:"" help:"Re-apply automatic enrollment to every user"`
}

func main() {
	var cli cli
	ctx := kong.Parse(&cli,
		kong.UsageOnError(),
		kong.Name("fremontctl"),
		kong.Description("fremontctl runs maintenance tasks for the Fremont API"),
	)

	cfg := config.Load()
	level := cfg.LogLevel
	if cli.Debug {
		level = "debug"
	}
	logger.Setup(level, true)

	err := ctx.Run(&cliCtx{Config: cfg})
	ctx.FatalIfErrorf(err)
}

// openStore connects to the configured database and returns a store over it.
func openStore(cfg *config.Config) (*repository.Store, error) {
	if err := database.Connect(cfg); err != nil {
		return nil, err
	}
	return repository.NewStore(database.GetDB()), nil
}
