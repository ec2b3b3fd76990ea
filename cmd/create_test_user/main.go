// Command create_test_user creates (or updates) a user and prints a JWT for it.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"codeleague/internal/datekey"
	"codeleague/internal/db"
	"codeleague/internal/domain"
	"codeleague/internal/logger"
	"codeleague/internal/repository"
	"codeleague/internal/service"

	"github.com/joho/godotenv"
)

func main() {
	username := flag.String("username", "testuser", "username")
	credential := flag.String("credential", "", "provider API key")
	tz := flag.String("tz", "", "IANA timezone, e.g. Europe/Berlin")
	visibility := flag.String("visibility", string(domain.VisibilityEveryone), "everyone, friends or no_one")
	friend := flag.String("friend", "", "username to add as a friend (both directions)")
	flag.Parse()

	_ = godotenv.Load()
	logger.Init("info", false)

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logger.Fatal("DATABASE_URL not set")
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		logger.Fatal("JWT_SECRET not set")
	}
	if *tz != "" && !datekey.ValidZone(*tz) {
		logger.Fatal("unknown timezone", "tz", *tz)
	}

	pool := db.Connect(dsn)
	defer pool.Close()

	ctx := context.Background()
	users := repository.NewUserRepository(pool)

	u, err := users.GetByUsername(ctx, *username)
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		u = &domain.User{
			Username:           *username,
			ProviderCredential: *credential,
			Visibility:         domain.Visibility(*visibility),
			IsCompeting:        true,
		}
		if *tz != "" {
			u.Timezone = tz
		}
		if err := users.Create(ctx, u); err != nil {
			logger.Fatal("create user failed", "error", err)
		}
		logger.Info("user created", "id", u.ID, "username", u.Username)
	case err != nil:
		logger.Fatal("lookup user failed", "error", err)
	default:
		logger.Info("user already exists", "id", u.ID)
		if *credential != "" {
			if err := users.UpdateCredential(ctx, u.ID, *credential); err != nil {
				logger.Fatal("update credential failed", "error", err)
			}
		}
		if *tz != "" {
			if err := users.UpdateTimezone(ctx, u.ID, *tz); err != nil {
				logger.Fatal("update timezone failed", "error", err)
			}
		}
	}

	if *friend != "" {
		other, err := users.GetByUsername(ctx, *friend)
		if err != nil {
			logger.Fatal("friend lookup failed", "username", *friend, "error", err)
		}
		social := repository.NewSocialRepository(pool)
		if err := social.AddFriend(ctx, u.ID, other.ID); err != nil {
			logger.Fatal("add friend failed", "error", err)
		}
		if err := social.AddFriend(ctx, other.ID, u.ID); err != nil {
			logger.Fatal("add friend failed", "error", err)
		}
		logger.Info("friendship added", "user_id", u.ID, "friend_id", other.ID)
	}

	service.InitJWT(secret)
	token, err := service.GenerateJWT(u.ID)
	if err != nil {
		logger.Fatal("failed to generate token", "error", err)
	}
	fmt.Println(token)
}
