// Package bootstrap wires infrastructure adapters into the core use
// cases for both binaries.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/hoangvum/pdf-chat-assistant/internal/config"
	"github.com/hoangvum/pdf-chat-assistant/internal/core/domain"
	"github.com/hoangvum/pdf-chat-assistant/internal/core/ports"
	"github.com/hoangvum/pdf-chat-assistant/internal/core/usecase"
	"github.com/hoangvum/pdf-chat-assistant/internal/infrastructure/archive"
	"github.com/hoangvum/pdf-chat-assistant/internal/infrastructure/chunking"
	"github.com/hoangvum/pdf-chat-assistant/internal/infrastructure/classify"
	"github.com/hoangvum/pdf-chat-assistant/internal/infrastructure/extractor"
	"github.com/hoangvum/pdf-chat-assistant/internal/infrastructure/fingerprint"
	"github.com/hoangvum/pdf-chat-assistant/internal/infrastructure/llm"
	"github.com/hoangvum/pdf-chat-assistant/internal/infrastructure/queue/nats"
	"github.com/hoangvum/pdf-chat-assistant/internal/infrastructure/repository/postgres"
	"github.com/hoangvum/pdf-chat-assistant/internal/infrastructure/resilience"
	"github.com/hoangvum/pdf-chat-assistant/internal/infrastructure/storage/localfs"
	"github.com/hoangvum/pdf-chat-assistant/internal/infrastructure/textutil"
	"github.com/hoangvum/pdf-chat-assistant/internal/infrastructure/vector/local"
	"github.com/hoangvum/pdf-chat-assistant/internal/prompts"
)

type App struct {
	Config config.Config

	Queue     ports.MessageQueue
	Repo      ports.DocumentRepository
	Indexes   ports.IndexStore
	IngestUC  ports.DocumentIngestor
	ProcessUC ports.DocumentProcessor
	ChatUC    ports.ChatService

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewDocumentRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	storage, err := localfs.New(cfg.StagingPath)
	if err != nil {
		return nil, fmt.Errorf("init staging storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := nats.NewWithExecutor(cfg.NATSURL, cfg.NATSSubject, executor)
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	embedder, generator, err := llm.NewProvider(llm.ProviderConfig{
		Provider:         cfg.LLMProvider,
		OllamaURL:        cfg.OllamaURL,
		OllamaGenModel:   cfg.OllamaGenModel,
		OllamaEmbedModel: cfg.OllamaEmbedModel,
		OpenAIAPIKey:     cfg.OpenAIAPIKey,
		OpenAIGenModel:   cfg.OpenAIGenModel,
		OpenAIEmbedModel: cfg.OpenAIEmbedModel,
		TokenBudget:      cfg.TokenBudget,
	}, executor)
	if err != nil {
		return nil, fmt.Errorf("init llm provider: %w", err)
	}

	indexes, err := local.NewStore(cfg.VectorRoot)
	if err != nil {
		return nil, fmt.Errorf("init vector store: %w", err)
	}
	textArchive, err := archive.New(cfg.ArchiveRoot)
	if err != nil {
		return nil, fmt.Errorf("init text archive: %w", err)
	}
	registry := fingerprint.LoadRegistry(cfg.HashStorePath)

	templates, err := prompts.Load(cfg.PromptConfig)
	if err != nil {
		return nil, fmt.Errorf("load prompt templates: %w", err)
	}

	loader := extractor.NewMux()
	chunker := chunking.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	classifier := classify.NewKeywordClassifier(cfg.TriggerKeywords)

	ingestUC := usecase.NewIngestDocumentUseCase(repo, storage, queue)
	processUC := usecase.NewProcessDocumentUseCase(
		repo,
		storage,
		fingerprint.New(),
		registry,
		loader,
		loader,
		chunker,
		embedder,
		indexes,
		textArchive,
		cfg.IngestWorkers,
	)
	retriever := usecase.NewMultiIndexRetriever(embedder, indexes, cfg.RetrievalTopK)
	expander := usecase.NewContextExpander(textArchive, cfg.ExpandWordsBefore, cfg.ExpandWordsAfter)
	chatUC := usecase.NewChatUseCase(
		generator,
		retriever,
		expander,
		classifier,
		templates,
		textutil.StripMarkdown,
		domain.HistoryWindow(cfg.HistoryWindow),
		cfg.HistoryMax,
	)

	return &App{
		Config: cfg,

		Queue:     queue,
		Repo:      repo,
		Indexes:   indexes,
		IngestUC:  ingestUC,
		ProcessUC: processUC,
		ChatUC:    chatUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
