package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/mo-amir99/course-progress-server/internal/features/user"
	"github.com/mo-amir99/course-progress-server/pkg/config"
	"github.com/mo-amir99/course-progress-server/pkg/database"
	"github.com/mo-amir99/course-progress-server/pkg/logger"
	"github.com/mo-amir99/course-progress-server/pkg/types"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.New(cfg.LogLevel, cfg.LogDir)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	ctx := context.Background()
	db, err := database.Connect(ctx, cfg.Database, appLogger)
	if err != nil {
		appLogger.Error("Failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.Close(db, appLogger)

	reader := bufio.NewReader(os.Stdin)
	prompt := func(label string) string {
		fmt.Print(label)
		value, _ := reader.ReadString('\n')
		return strings.TrimSpace(value)
	}

	fullName := prompt("Full Name: ")
	email := user.NormalizeEmail(prompt("Email: "))
	password := prompt("Password (min 8 chars): ")
	role := types.UserType(prompt("Role [admin|instructor] (default admin): "))
	if role == "" {
		role = types.UserTypeAdmin
	}

	if fullName == "" || email == "" || len(password) < 8 {
		fmt.Println("Error: full name, email, and password (min 8 chars) are required")
		os.Exit(1)
	}
	if !role.IsStaff() {
		fmt.Printf("Error: role %q is not a staff role\n", role)
		os.Exit(1)
	}

	users := user.NewGormStore(db)
	if _, err := users.GetByEmail(ctx, email); err == nil {
		fmt.Println("Error: a user with this email already exists")
		os.Exit(1)
	} else if !errors.Is(err, user.ErrUserNotFound) {
		appLogger.Error("Failed to look up user", slog.String("error", err.Error()))
		os.Exit(1)
	}

	account := user.User{
		FullName: fullName,
		Email:    email,
		Role:     role,
		Active:   true,
	}
	if err := account.SetPassword(password); err != nil {
		appLogger.Error("Failed to hash password", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := users.Create(ctx, &account); err != nil {
		appLogger.Error("Failed to create account", slog.String("error", err.Error()))
		os.Exit(1)
	}

	fmt.Println("\nAccount created successfully!")
	fmt.Printf("   ID: %s\n", account.ID)
	fmt.Printf("   Email: %s\n", account.Email)
	fmt.Printf("   Role: %s\n", account.Role)
}
