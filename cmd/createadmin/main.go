// Command createadmin elevates an existing account to administrator, or
// creates it as one when the email is unknown.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/FiifiQwontwo/PhotoIsa/internal/config"
	"github.com/FiifiQwontwo/PhotoIsa/internal/database"
	"github.com/FiifiQwontwo/PhotoIsa/internal/models"
	"github.com/FiifiQwontwo/PhotoIsa/internal/repository"
	"github.com/FiifiQwontwo/PhotoIsa/internal/utils"
)

func main() {
	var (
		email     = flag.String("email", "", "account email (required)")
		password  = flag.String("password", "", "password, only used when creating a new account")
		firstName = flag.String("first-name", "Admin", "first name for a new account")
		lastName  = flag.String("last-name", "User", "last name for a new account")
		cfgPath   = flag.String("config", "config.yaml", "path to config file")
	)
	flag.Parse()

	if *email == "" {
		log.Fatal("-email is required")
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := utils.NewLogger(cfg.App.Env)
	defer func() {
		_ = logger.Sync()
	}()

	db, err := database.ConnectPostgres(cfg.Postgres, logger.Sugar())
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo := repository.NewGormUserRepo(db)
	normalized := strings.ToLower(strings.TrimSpace(*email))

	user, err := repo.FindByEmail(ctx, normalized)
	switch {
	case err == nil:
		// fall through to elevation
	case errors.Is(err, repository.ErrUserNotFound):
		if *password == "" {
			log.Fatal("-password is required when creating a new account")
		}
		hashed, herr := bcrypt.GenerateFromPassword([]byte(*password), cfg.Security.PasswordHashCost)
		if herr != nil {
			log.Fatalf("failed to hash password: %v", herr)
		}
		username := normalized
		if i := strings.Index(normalized, "@"); i > 0 {
			username = normalized[:i]
		}
		user = &models.User{
			Email:        normalized,
			Username:     username,
			FirstName:    *firstName,
			LastName:     *lastName,
			PasswordHash: string(hashed),
		}
		if cerr := repo.Create(ctx, user); cerr != nil {
			log.Fatalf("failed to create account: %v", cerr)
		}
	default:
		log.Fatalf("failed to look up account: %v", err)
	}

	user.IsAdmin = true
	user.IsStaff = true
	user.IsSuperuser = true
	user.IsActive = true
	user.VerificationToken = ""
	if err := repo.Update(ctx, user); err != nil {
		log.Fatalf("failed to elevate account: %v", err)
	}

	log.Printf("account %s is now an administrator", normalized)
}
