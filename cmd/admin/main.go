package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/clinic-backend/internal/users"
	"github.com/angelmondragon/clinic-backend/pkg/config"
	"github.com/angelmondragon/clinic-backend/pkg/db"
	"github.com/angelmondragon/clinic-backend/pkg/enums"
	"github.com/angelmondragon/clinic-backend/pkg/logger"
	"github.com/angelmondragon/clinic-backend/pkg/migrate"
)

// admin creates a back-office account, typically the first administrator.
func main() {
	email := flag.String("email", "", "account email (required)")
	name := flag.String("name", "", "full name")
	role := flag.String("role", string(enums.UserRoleAdmin), "admin|editor")
	password := flag.String("password", "", "initial password; generated when empty")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "admin"})
	_ = godotenv.Load()

	if *email == "" {
		fmt.Fprintln(os.Stderr, "missing -email")
		flag.Usage()
		os.Exit(2)
	}
	parsedRole, err := enums.ParseUserRole(*role)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg, err := config.Load()
	requireResource(logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "admin",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx := logg.WithField(context.Background(), "env", cfg.App.Env)

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(logg, "database", err)
	defer dbClient.Close()

	requireResource(logg, "dev migrations", migrate.MaybeRunDev(ctx, cfg, logg, dbClient))

	svc, err := users.NewRegisterService(users.RegisterServiceParams{
		DB:             dbClient,
		PasswordConfig: cfg.Password,
	})
	requireResource(logg, "register service", err)

	result, err := svc.Register(ctx, users.RegisterRequest{
		Email:    *email,
		FullName: *name,
		Password: *password,
		Role:     parsedRole,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "create user failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("created %s user %s (%s)\n", result.User.Role, result.User.Email, result.User.ID)
	if result.GeneratedPassword != "" {
		fmt.Printf("generated password: %s\n", result.GeneratedPassword)
		fmt.Println("store it now, it is not shown again")
	}
}

func requireResource(logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
