package main

import (
	"fmt"
	"os"

	"github.com/fremontasb/fremont-api/internal/database"
	"github.com/fremontasb/fremont-api/internal/models"
	"github.com/fremontasb/fremont-api/internal/services"
	"github.com/rs/zerolog/log"
)

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *cliCtx) error {
	if _, err := openStore(ctx.Config); err != nil {
		return err
	}
	return database.Migrate()
}

type CreateSuperuserCmd struct {
	Email     string `required:"" help:"Login email"`
	Password  string `required:"" help:"Initial password"`
	FirstName string `help:"First name"`
	LastName  string `help:"Last name"`
}

func (c *CreateSuperuserCmd) Run(ctx *cliCtx) error {
	store, err := openStore(ctx.Config)
	if err != nil {
		return err
	}

	user, err := services.NewAuthService(store).Signup(services.SignupInput{
		Email:       c.Email,
		Password:    c.Password,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		Type:        models.UserTypeStaff,
		IsStaff:     true,
		IsSuperuser: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create superuser: %w", err)
	}

	log.Info().Uint64("user_id", user.ID).Str("email", user.Email).Msg("Superuser created")
	return nil
}

type ImportClubsCmd struct {
	File string `arg:"" type:"existingfile" help:"CSV file with Club and Description columns"`
}

func (c *ImportClubsCmd) Run(ctx *cliCtx) error {
	f, err := os.Open(c.File)
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := readClubs(f)
	if err != nil {
		return err
	}

	store, err := openStore(ctx.Config)
	if err != nil {
		return err
	}
	orgs := services.NewOrganizationService(store)

	var created, updated int
	for _, row := range rows {
		org, isNew, err := orgs.ImportClub(row.Name, row.Description)
		if err != nil {
			return fmt.Errorf("failed to import club %q: %w", row.Name, err)
		}
		if isNew {
			created++
		} else {
			updated++
		}
		log.Debug().Uint64("organization_id", org.ID).Str("name", org.Name).Bool("created", isNew).Msg("Imported club")
	}

	log.Info().Int("created", created).Int("updated", updated).Msg("Club import finished")
	return nil
}

type ReconcileCmd struct{}

func (c *ReconcileCmd) Run(ctx *cliCtx) error {
	store, err := openStore(ctx.Config)
	if err != nil {
		return err
	}

	n, err := services.NewUserService(store).ReconcileAll()
	if err != nil {
		return err
	}

	log.Info().Int("users", n).Msg("Enrollment reconciled")
	return nil
}
