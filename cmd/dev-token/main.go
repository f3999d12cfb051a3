// Command dev-token makes sure a user with the given role exists and prints a
// signed bearer token for it. Production tokens come from the identity
// provider; this is for local development and smoke tests.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"go-inventory-pos/internal/config"
	"go-inventory-pos/internal/model"
	"go-inventory-pos/internal/repository"
	"go-inventory-pos/internal/service"
	"go-inventory-pos/pkg/database"
	"go-inventory-pos/pkg/jwt"
	"go-inventory-pos/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	email := flag.String("email", "owner@example.com", "user email")
	name := flag.String("name", "", "full name used when the user is created")
	roleFlag := flag.String("role", "owner", "owner, storekeeper or cashier")
	flag.Parse()

	role, err := model.ParseRole(*roleFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	// 1. Load Env
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.App.Env, cfg.App.LogLevel); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Get()

	// 2. Setup Database
	db, err := database.Connect(cfg.DB.Options(), false)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	defer database.Close(db)

	// 3. Find or create the user
	ctx := context.Background()
	userRepo := repository.NewUserRepo(db)
	normalized := strings.ToLower(strings.TrimSpace(*email))

	user, err := userRepo.FindByEmail(ctx, normalized)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		fullName := *name
		if fullName == "" {
			fullName = normalized
		}
		user = &model.User{Email: normalized, FullName: fullName, Role: role, IsActive: true}
		if err := userRepo.Create(ctx, user); err != nil {
			log.Fatal("create user failed", zap.Error(err))
		}
		log.Info("user created", zap.String("email", user.Email), zap.String("role", string(role)))
	case err != nil:
		log.Fatal("find user failed", zap.Error(err))
	case user.Role != role:
		if err := userRepo.UpdateRole(ctx, user.ID, role); err != nil {
			log.Fatal("update role failed", zap.Error(err))
		}
		log.Info("role updated", zap.String("email", user.Email), zap.String("from", string(user.Role)), zap.String("to", string(role)))
	}

	// 4. Sign
	tokens := service.NewAuthService(userRepo, jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL()))
	resp, err := tokens.IssueToken(ctx, normalized)
	if err != nil {
		log.Fatal("issue token failed", zap.Error(err))
	}
	fmt.Println(resp.Token)
}
