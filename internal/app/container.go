package app

import (
	"context"
	"fmt"

	"github.com/doeshing/gitbrew/internal/application/command"
	"github.com/doeshing/gitbrew/internal/application/issues"
	"github.com/doeshing/gitbrew/internal/application/prompts"
	"github.com/doeshing/gitbrew/internal/application/readme"
	"github.com/doeshing/gitbrew/internal/application/review"
	"github.com/doeshing/gitbrew/internal/domain"
	"github.com/doeshing/gitbrew/internal/infrastructure/ai"
	"github.com/doeshing/gitbrew/internal/infrastructure/config"
	"github.com/doeshing/gitbrew/internal/infrastructure/executor"
	"github.com/doeshing/gitbrew/internal/infrastructure/githost"
	"github.com/doeshing/gitbrew/internal/infrastructure/history"
	"github.com/doeshing/gitbrew/internal/infrastructure/vectorstore"
	"github.com/doeshing/gitbrew/internal/pkg/logger"
	"github.com/doeshing/gitbrew/internal/ports"
)

// Options carries what the container cannot derive from the config file.
type Options struct {
	ConfigPath string
	Verbose    bool
	Prompter   ports.Prompter
	Observer   ports.RunObserver
	// Getenv resolves secrets named in the config. It is only called here.
	Getenv func(string) string
	// ReviewPresenter shows reviews before the user decides to post them.
	ReviewPresenter review.Presenter
	// ReadmeProgress is told about each summarized file.
	ReadmeProgress readme.Progress
	// WrapCompleter decorates every chat completer, e.g. with a spinner.
	WrapCompleter func(ports.Completer) ports.Completer
}

// Container wires up application services with infrastructure adapters.
type Container struct {
	Config       domain.Config
	ConfigLoader *config.FileLoader
	Logger       *logger.ZapLogger
	Executor     *executor.LocalExecutor
	HistoryStore *history.SQLiteStore
	Index        *vectorstore.SQLiteIndex
	Host         *githost.Client

	CommandService *command.Service
	IssueService   *issues.Service
	ReviewService  *review.Service
	ReadmeService  *readme.Service
}

// BuildContainer constructs the dependency graph.
func BuildContainer(ctx context.Context, opts Options) (*Container, error) {
	if opts.Prompter == nil {
		return nil, fmt.Errorf("container needs a prompter")
	}
	getenv := opts.Getenv
	if getenv == nil {
		getenv = func(string) string { return "" }
	}

	cfgLoader := config.NewFileLoader(opts.ConfigPath)
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(logger.FromConfig(cfg.Logging, opts.Verbose))
	if err != nil {
		return nil, err
	}

	c := &Container{
		Config:       cfg,
		ConfigLoader: cfgLoader,
		Logger:       log,
		Executor:     executor.NewLocalExecutor(cfg.GetExecutionShell(), cfg.Assistant.WorkingDir),
	}

	if cfg.History.Enabled {
		store, err := history.NewSQLiteStore(cfg.History.Path)
		if err != nil {
			log.Warn("history disabled", map[string]interface{}{"path": cfg.History.Path, "error": err.Error()})
		} else {
			c.HistoryStore = store
			if pruned, err := store.Prune(ctx, cfg.GetHistoryRetentionDays()); err == nil && pruned > 0 {
				log.Info("pruned history", map[string]interface{}{"records": pruned})
			}
		}
	}

	library, err := prompts.Load()
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	factory := ai.NewFactory(ai.Options{
		Timeout:     cfg.GetLLMTimeout(),
		Temperature: cfg.Preferences.Temperature,
		Credentials: ai.CredentialsFromEnv(cfg.Models, getenv),
	})
	defaultModel, err := cfg.GetDefaultModel()
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	wrap := opts.WrapCompleter
	if wrap == nil {
		wrap = func(next ports.Completer) ports.Completer { return next }
	}
	assistant := factory.Client(defaultModel)

	c.CommandService = newCommandService(cfg, c, wrap(assistant), library, opts)

	host, err := githost.New(githost.Options{
		Token:   getenv(cfg.GetGitHubTokenEnvVar()),
		BaseURL: cfg.GitHub.APIBaseURL,
	})
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	c.Host = host

	index, err := vectorstore.NewSQLiteIndex(cfg.Issues.IndexPath)
	if err != nil {
		log.Warn("similarity index unavailable", map[string]interface{}{"path": cfg.Issues.IndexPath, "error": err.Error()})
	} else {
		c.Index = index
	}
	c.IssueService = &issues.Service{
		Host:        host,
		Embedder:    assistant,
		Prompter:    opts.Prompter,
		Logger:      log,
		Threshold:   cfg.GetSimilarityThreshold(),
		TopN:        cfg.GetSimilarTopN(),
		Concurrency: cfg.GetEmbedConcurrency(),
	}
	if c.Index != nil {
		c.IssueService.Index = c.Index
	}

	reviewModel, err := cfg.ModelOrDefault(cfg.Review.Model)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	c.ReviewService = &review.Service{
		Host:              host,
		Completer:         wrap(factory.Client(reviewModel)),
		Prompts:           library,
		Prompter:          opts.Prompter,
		Logger:            log,
		Present:           opts.ReviewPresenter,
		NonCodeExtensions: cfg.GetNonCodeExtensions(),
		Header:            cfg.GetReviewHeader(),
	}

	readmeModel, err := cfg.ModelOrDefault(cfg.Readme.Model)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	c.ReadmeService = &readme.Service{
		Host:       host,
		Completer:  wrap(factory.Client(readmeModel)),
		Prompts:    library,
		Logger:     log,
		Progress:   opts.ReadmeProgress,
		Extensions: cfg.GetReadmeExtensions(),
		MaxFiles:   cfg.GetReadmeMaxFiles(),
	}

	return c, nil
}

func newCommandService(cfg domain.Config, c *Container, completer ports.Completer, library *prompts.Library, opts Options) *command.Service {
	engine := &command.Engine{
		Sanitizer:  command.NewSanitizer(opts.Prompter, c.Logger),
		Classifier: command.NewClassifier(cfg.GetToolPrefix()),
		Executor:   c.Executor,
		Prompter:   opts.Prompter,
		Explainer:  command.ModelExplainer{Completer: completer, Prompts: library},
		Observer:   opts.Observer,
		Logger:     c.Logger,
		Timeout:    cfg.GetCommandTimeout(),
	}
	svc := &command.Service{
		Completer: completer,
		Prompts:   library,
		Clarifier: &command.Clarifier{
			Completer: completer,
			Prompter:  opts.Prompter,
			Prompts:   library,
			Logger:    c.Logger,
			MaxTurns:  cfg.GetMaxClarificationTurns(),
		},
		Engine: engine,
		Logger: c.Logger,
	}
	if c.HistoryStore != nil {
		svc.History = c.HistoryStore
	}
	return svc
}

// ResolveRepo picks the repository for a workflow: the explicit argument,
// then github.default_repo, then the origin remote of the working directory.
func (c *Container) ResolveRepo(ctx context.Context, arg string) (domain.RepoRef, error) {
	if arg != "" {
		return domain.ParseRepoRef(arg)
	}
	if c.Config.GitHub.DefaultRepo != "" {
		return domain.ParseRepoRef(c.Config.GitHub.DefaultRepo)
	}
	return githost.RemoteRepo(ctx, c.Executor)
}

// Close releases stores and flushes the logger.
func (c *Container) Close() error {
	var firstErr error
	if c.HistoryStore != nil {
		if err := c.HistoryStore.Close(); err != nil {
			firstErr = err
		}
	}
	if c.Index != nil {
		if err := c.Index.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if c.Logger != nil {
		_ = c.Logger.Sync()
	}
	return firstErr
}
