package main

import (
	"context"
	"log/slog"
	"os"
	"strconv"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"rfp-assistant/handler"
	"rfp-assistant/internal/auth"
	"rfp-assistant/internal/integrations/openai"
	"rfp-assistant/internal/integrations/paramstore"
	"rfp-assistant/internal/repository"
	"rfp-assistant/internal/usecase"
)

func main() {
	ctx := context.Background()
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	// ---- Configuration (read only here) ----
	stateTable := mustEnv("STATE_TABLE")
	paramPrefix := mustEnv("PARAM_PREFIX")
	limits := usecase.Limits{
		MaxContextItems: envInt("MAX_CONTEXT_ITEMS", 20),
		MaxHistoryItems: envInt("MAX_HISTORY_ITEMS", 100),
		MaxMessageLen:   envInt("MAX_MESSAGE_LENGTH", 2000),
		MaxTurns:        envInt("MAX_CONVERSATION_TURNS", 200),
	}

	// ---- AWS SDK config ----
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		slog.Error("failed to load AWS config", "err", err)
		os.Exit(1)
	}

	// ---- Clients ----
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
	openaiClient, err := openai.NewClient(ssmClient, paramPrefix)
	if err != nil {
		slog.Error("failed to create OpenAI client", "err", err)
		os.Exit(1)
	}

	jwtSecret, err := ssmClient.GetParameter(ctx, paramPrefix+"/jwt-secret")
	if err != nil {
		slog.Error("failed to load JWT secret", "err", err)
		os.Exit(1)
	}
	verifier, err := auth.NewVerifier(jwtSecret)
	if err != nil {
		slog.Error("failed to create token verifier", "err", err)
		os.Exit(1)
	}

	// ---- Handler ----
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

	lambda.Start(h.Handle)
}

func mustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		slog.Error("required environment variable is not set", "key", key)
		os.Exit(1)
	}
	return v
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
