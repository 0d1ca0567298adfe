package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/pageza/kaintayo/backend/config"
	"github.com/pageza/kaintayo/backend/internal/api"
	"github.com/pageza/kaintayo/backend/internal/logging"
	"github.com/pageza/kaintayo/backend/internal/server"
	"github.com/pageza/kaintayo/backend/internal/service"
	"github.com/pageza/kaintayo/backend/internal/types"
)

const name = "kaintayo-api"

func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}
	if port := cmd.String("port"); port != "" {
		cfg.ServerPort = port
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid --port: %w", err)
		}
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.SetDefaultStructuredLogger(name, api.Version, cfg.LogLevel)
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("configuration loaded",
		slog.String("environment", string(config.GetEnvironment())),
		slog.String("address", cfg.Address()),
		slog.String("upstream", cfg.UpstreamBaseURL),
		slog.String("api_key_env", cfg.APIKeyEnv),
		slog.Bool("api_key_set", cfg.APIKey() != ""))

	if err := server.New(cfg, logger).Run(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func issueToken(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if !cfg.AuthEnabled() {
		return fmt.Errorf("AUTH_JWT_SECRET is not configured")
	}

	claims := &types.TokenClaims{
		UserID:   cmd.String("user-id"),
		Username: cmd.String("username"),
	}
	claims.Subject = claims.UserID
	if ttl := cmd.Duration("ttl"); ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(ttl))
	}

	token, err := service.NewAuthService(cfg.AuthJWTSecret).GenerateToken(claims)
	if err != nil {
		return fmt.Errorf("failed to generate token: %w", err)
	}
	_, err = fmt.Fprintln(cmd.Root().Writer, token)
	return err
}

func main() {
	cmd := &cli.Command{
		Name:    name,
		Usage:   "Kain Tayo recipe API gateway",
		Version: api.Version,
		Action:  serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML config file",
				Sources: cli.EnvVars("CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on (overrides SERVER_PORT)",
				Sources: cli.EnvVars("PORT"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "token",
				Usage:  "Issue a bearer token signed with AUTH_JWT_SECRET",
				Action: issueToken,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "user-id",
						Usage:    "Subject of the token",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "username",
						Usage: "Display name carried in the token",
					},
					&cli.DurationFlag{
						Name:  "ttl",
						Usage: "Token lifetime",
						Value: 24 * time.Hour,
					},
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
