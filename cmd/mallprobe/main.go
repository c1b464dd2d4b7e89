// Command mallprobe exercises a mall backend from the command line: it
// signs in, restores and prints the persisted session, fetches the
// profile, and reports what the navigation guard would decide for a
// target path. Useful for checking a deployment's auth wiring without a
// frontend.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/lingbai/mallclient"
	"github.com/lingbai/mallclient/guard"
	"github.com/lingbai/mallclient/session"
	"github.com/lingbai/mallclient/storage"
)

func main() {
	var (
		configPath = flag.String("config", "", "YAML config file; defaults apply when empty")
		baseURL    = flag.String("base-url", "", "backend base URL (overrides config)")
		role       = flag.String("role", "user", "login role: user, merchant, or admin")
		username   = flag.String("username", "", "login username; skip login when empty")
		password   = flag.String("password", "", "login password")
		backend    = flag.String("storage", "memory", "session storage: memory, file, or redis")
		filePath   = flag.String("file", "", "session file path (storage=file)")
		redisAddr  = flag.String("redis-addr", "", "redis address (storage=redis); REDIS_ADDR env as fallback")
		routePath  = flag.String("route", "", "path to run the navigation guard against")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	logger, err := buildLogger(*verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg := mallclient.DefaultConfig()
	if *configPath != "" {
		cfg, err = mallclient.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "config: %v\n", err)
			os.Exit(1)
		}
	}
	if *baseURL != "" {
		cfg.HTTP.BaseURL = *baseURL
	}

	adapter, cleanup, err := buildStorage(*backend, *filePath, *redisAddr, cfg.Storage.KeyPrefix)
	if err != nil {
		fmt.Fprintf(os.Stderr, "storage: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	client, err := mallclient.New().
		WithConfig(cfg).
		WithStorage(adapter).
		WithLogger(logger).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sess, err := client.Restore(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "restore: %v\n", err)
		os.Exit(1)
	}
	if sess.Authenticated() {
		fmt.Println("restored persisted session:")
		printSession(sess)
	} else {
		fmt.Println("no persisted session")
	}

	if *username != "" {
		result, err := client.Login(ctx, mallclient.Credentials{
			Username: *username,
			Password: *password,
		}, mallclient.Role(*role))
		if err != nil {
			fmt.Fprintf(os.Stderr, "login: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("signed in:")
		printSession(client.Session())

		if claims, ok := session.IntrospectToken(result.Token); ok {
			fmt.Printf("  token subject=%s expires=%s\n",
				claims.Subject, claims.ExpiresAt.Format(time.RFC3339))
		}

		profile, err := client.RefreshProfile(ctx, false)
		if err != nil {
			fmt.Fprintf(os.Stderr, "profile refresh: %v\n", err)
		} else {
			fmt.Printf("profile: username=%s nickname=%s role=%s\n",
				profile.Username, profile.Nickname, profile.Role)
		}
	}

	if *routePath != "" {
		decision := client.Evaluate(guard.Route{
			Path:         *routePath,
			RequiresAuth: true,
		})
		if decision.Allowed {
			fmt.Printf("guard: %s allowed\n", *routePath)
		} else {
			fmt.Printf("guard: %s denied, redirect=%s notice=%q\n",
				*routePath, decision.RedirectTo, decision.Notice)
		}
	}
}

func buildLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

func buildStorage(backend, filePath, redisAddr, prefix string) (storage.Adapter, func(), error) {
	switch backend {
	case "memory":
		return storage.NewMemory(prefix), func() {}, nil
	case "file":
		if filePath == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, nil, err
			}
			filePath = home + "/.mallprobe/session.json"
		}
		f, err := storage.NewFile(filePath, prefix)
		if err != nil {
			return nil, nil, err
		}
		return f, func() {}, nil
	case "redis":
		if redisAddr == "" {
			redisAddr = os.Getenv("REDIS_ADDR")
		}
		if redisAddr == "" {
			return nil, nil, fmt.Errorf("redis address required (flag or REDIS_ADDR)")
		}
		client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{redisAddr}})
		r, err := storage.NewRedis(client, prefix)
		if err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		return r, func() { _ = client.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

func printSession(sess session.Session) {
	p := sess.Profile
	fmt.Printf("  user=%s (id %d) role=%s admin=%v merchant=%v",
		p.Username, p.EffectiveID(), p.Role, p.Admin(), p.Merchant())
	if p.MerchantID != 0 {
		fmt.Printf(" merchantId=%d shop=%q", p.MerchantID, p.ShopName)
	}
	fmt.Println()
}
