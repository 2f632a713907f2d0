package main

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"rfp-assistant/handler"
	"rfp-assistant/internal/auth"
	"rfp-assistant/internal/integrations/openai"
	"rfp-assistant/internal/integrations/paramstore"
	"rfp-assistant/internal/repository"
	"rfp-assistant/internal/usecase"
)

// devserver serves the chat Lambda handler over plain HTTP for local work
// against real AWS resources.
func main() {
	ctx := context.Background()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))

	stateTable := mustEnv("STATE_TABLE")
	paramPrefix := mustEnv("PARAM_PREFIX")
	addr := envString("DEV_ADDR", ":8080")
	limits := usecase.Limits{
		MaxContextItems: envInt("MAX_CONTEXT_ITEMS", 20),
		MaxMessageLen:   envInt("MAX_MESSAGE_LENGTH", 2000),
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		slog.Error("failed to load AWS config", "err", err)
		os.Exit(1)
	}
	ssmClient, err := paramstore.New(awsssm.NewFromConfig(cfg))
	if err != nil {
		slog.Error("failed to create SSM client", "err", err)
		os.Exit(1)
	}
	stateClient, err := repository.New(awsdynamodb.NewFromConfig(cfg), stateTable)
	if err != nil {
		slog.Error("failed to create state client", "err", err)
		os.Exit(1)
	}
	var openaiOpts []openai.Option
	if base := os.Getenv("OPENAI_BASE_URL"); base != "" {
		openaiOpts = append(openaiOpts, openai.WithBaseURL(base))
	}
	openaiClient, err := openai.NewClient(ssmClient, paramPrefix, openaiOpts...)
	if err != nil {
		slog.Error("failed to create OpenAI client", "err", err)
		os.Exit(1)
	}

	secret := os.Getenv("DEV_JWT_SECRET")
	if secret == "" {
		secret, err = ssmClient.GetParameter(ctx, paramPrefix+"/jwt-secret")
		if err != nil {
			slog.Error("failed to load JWT secret", "err", err)
			os.Exit(1)
		}
	}
	verifier, err := auth.NewVerifier(secret)
	if err != nil {
		slog.Error("failed to create token verifier", "err", err)
		os.Exit(1)
	}
	if userID := os.Getenv("DEV_USER_ID"); userID != "" {
		token, err := verifier.Issue(userID, "", 24*time.Hour)
		if err != nil {
			slog.Error("failed to issue dev token", "err", err)
			os.Exit(1)
		}
		slog.Info("dev token issued", "user_id", userID, "token", token)
	}

	chatService, err := usecase.NewChatService(ssmClient, openaiClient, stateClient, paramPrefix, limits)
	if err != nil {
		slog.Error("failed to create chat service", "err", err)
		os.Exit(1)
	}
	h, err := handler.NewHandler(chatService, verifier)
	if err != nil {
		slog.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:3000",
			"http://localhost:5173",
			"http://127.0.0.1:3000",
			"http://127.0.0.1:5173",
		},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Correlation-Id"},
		ExposeHeaders:    []string{"X-Correlation-Id"},
		AllowCredentials: true,
	}))
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy", "timestamp": time.Now().UTC()})
	})
	handler.Routes(r, h)

	slog.Info("dev server listening", "addr", addr)
	if err := r.Run(addr); err != nil {
		slog.Error("dev server stopped", "err", err)
		os.Exit(1)
	}
}

func mustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		slog.Error("required environment variable is not set", "key", key)
		os.Exit(1)
	}
	return v
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
