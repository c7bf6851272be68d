// Command setclaims is the operator bootstrap: it assigns a role to a
// user directly against the claims store and profile store, bypassing
// the admin-only HTTP surface. Used once to seed the first admin and
// staff accounts.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"notification-service/internal/claims"
	"notification-service/internal/config"
	"notification-service/internal/domain"
	"notification-service/internal/repository"
)

func main() {
	uid := flag.String("uid", "", "target user id")
	role := flag.String("role", "", "role to assign (admin|staff|customer)")
	flag.Parse()

	if *uid == "" || *role == "" {
		log.Fatal("usage: setclaims -uid <user-id> -role <admin|staff|customer>")
	}
	r := domain.Role(*role)
	if !domain.ValidRole(r) {
		log.Fatalf("invalid role %q: allowed roles are admin, staff, customer", *role)
	}

	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	dbpool, err := cfg.ConnectDB(ctx)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer dbpool.Close()

	if err := repository.EnsureSchema(ctx, dbpool); err != nil {
		log.Fatalf("failed to ensure schema: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       0,
	})
	defer rdb.Close()

	claimsStore := claims.NewRedisStore(rdb)
	users := repository.NewUserRepository(dbpool)

	if err := claimsStore.SetRoleClaim(ctx, *uid, *role); err != nil {
		log.Fatalf("failed to set role claim: %v", err)
	}
	if err := users.UpdateRole(ctx, *uid, r); err != nil {
		log.Fatalf("failed to update profile role: %v", err)
	}

	log.Printf("✅ Role '%s' assigned to user %s. The user must refresh their token to pick it up.", *role, *uid)
}
