package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/biblioteca/library-system/internal/core/domain"
	"github.com/biblioteca/library-system/internal/core/ports"
)

var seedUsers = []ports.NewUserInput{
	{Username: "admin", Email: "admin@biblioteca.com", Password: "admin123", FirstName: "Administrador", LastName: "Sistema", Role: "admin"},
	{Username: "estudiante", Email: "estudiante@biblioteca.com", Password: "estudiante123", FirstName: "Juan", LastName: "Pérez", Role: "student"},
	{Username: "maria", Email: "maria@biblioteca.com", Password: "maria123", FirstName: "María", LastName: "García", Role: "student"},
}

var seedBooks = []ports.BookInput{
	{
		Title: "Cien años de soledad", Author: "Gabriel García Márquez", ISBN: "978-84-376-0494-7",
		Publisher: "Editorial Sudamericana", PublicationYear: year(1967), Category: "Literatura",
		Description: "Una de las obras más importantes de la literatura latinoamericana", TotalCopies: 3,
	},
	{
		Title: "Don Quijote de la Mancha", Author: "Miguel de Cervantes", ISBN: "978-84-376-0495-4",
		Publisher: "Planeta", PublicationYear: year(1605), Category: "Clásicos",
		Description: "La obra cumbre de la literatura española", TotalCopies: 2,
	},
	{
		Title: "Introducción a la Programación", Author: "John Smith", ISBN: "978-84-376-0496-1",
		Publisher: "Tech Books", PublicationYear: year(2020), Category: "Informática",
		Description: "Guía completa para aprender programación desde cero", TotalCopies: 5,
	},
	{
		Title: "Historia de España", Author: "Antonio López", ISBN: "978-84-376-0497-8",
		Publisher: "Historia Editorial", PublicationYear: year(2018), Category: "Historia",
		Description: "Recorrido completo por la historia española", TotalCopies: 2,
	},
}

func year(y int) *int { return &y }

// provisioner creates accounts outside any request.
type provisioner interface {
	Provision(ctx context.Context, input ports.NewUserInput) (*domain.User, error)
}

// seeders are the collaborators seed writes through.
type seeders struct {
	users   provisioner
	repo    ports.UserRepository
	catalog ports.CatalogService
	audit   ports.AuditService
}

type seedResult struct {
	UsersCreated int
	BooksCreated int
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load demo accounts and books",
		Long:  "Creates the demo admin, two students and a starter catalog. Existing usernames and ISBNs are skipped, so the command can be re-run.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.requirePersistent("seed"); err != nil {
				return err
			}

			svc, users := a.services()
			res, err := seed(ctx, seeders{users: users, repo: a.users, catalog: svc.Catalog, audit: svc.Audit}, a.log)
			if err != nil {
				return err
			}
			a.log.Info().Int("users", res.UsersCreated).Int("books", res.BooksCreated).Msg("seed complete")
			return nil
		},
	}
}

func seed(ctx context.Context, deps seeders, log zerolog.Logger) (seedResult, error) {
	var res seedResult
	for _, in := range seedUsers {
		_, err := deps.users.Provision(ctx, in)
		switch {
		case err == nil:
			res.UsersCreated++
		case errors.Is(err, domain.ErrUserExists):
			log.Debug().Str("username", in.Username).Msg("user exists, skipping")
		default:
			return res, fmt.Errorf("seed user %s: %w", in.Username, err)
		}
	}

	admin, err := deps.repo.FindByUsername(ctx, seedUsers[0].Username)
	if err != nil {
		return res, fmt.Errorf("seed: load admin: %w", err)
	}
	if !admin.Role.IsAdmin() {
		return res, fmt.Errorf("seed: user %s is not an administrator", admin.Username)
	}

	for _, in := range seedBooks {
		_, err := deps.catalog.AddBook(ctx, admin.Actor(), in)
		switch {
		case err == nil:
			res.BooksCreated++
		case errors.Is(err, domain.ErrConflict):
			log.Debug().Str("isbn", in.ISBN).Msg("book exists, skipping")
		default:
			return res, fmt.Errorf("seed book %q: %w", in.Title, err)
		}
	}

	if res == (seedResult{}) {
		return res, nil
	}
	summary := fmt.Sprintf("Loaded demo data: %d users, %d books", res.UsersCreated, res.BooksCreated)
	if err := deps.audit.Record(ctx, nil, summary); err != nil {
		return res, fmt.Errorf("seed: %w", err)
	}
	return res, nil
}
