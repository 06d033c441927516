package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"mathcourt/cmd/mathcourt/court"
	"mathcourt/internal/account"
	"mathcourt/internal/config"
	"mathcourt/internal/embedding"
	"mathcourt/internal/logging"
	"mathcourt/internal/progress"
	"mathcourt/internal/store"
)

var (
	// Global flags
	verbose bool
	apiKey  string
	dataDir string

	// Logger for non-interactive commands
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "mathcourt",
	Short: "mathcourt - The Math Courtroom game",
	Long: `mathcourt is an educational courtroom drama for school mathematics.

A math concept stands accused of being wrong. You are the defense counsel:
examine the evidence, find the flaw, argue your case before the Judge, and
outwit the Silly Prosecutor before the clock runs out.

Run without arguments to start the interactive courtroom.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip logger init for interactive mode (it has its own UI)
		if cmd.Use == "mathcourt" && cmd.CalledAs() == "mathcourt" {
			return nil
		}

		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractive()
	},
}

// statusCmd shows what is stored for this installation
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show mathcourt data directory status",
	RunE:  showStatus,
}

// learningsCmd lists or searches a player's collected learnings
var learningsCmd = &cobra.Command{
	Use:   "learnings",
	Short: "List or search a player's collected learnings",
	Long: `Lists everything the player has learned by winning cases.

With --search, results are ranked by semantic similarity when an API key is
configured, and by substring match otherwise.

Example:
  mathcourt learnings --user asha --search "bar charts"`,
	RunE: showLearnings,
}

var (
	learningsUser   string
	learningsSearch string
	learningsLimit  int
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "Gemini API key (overrides config and environment)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Data directory (default ~/.mathcourt)")

	learningsCmd.Flags().StringVarP(&learningsUser, "user", "u", "", "Player username (default: last logged in)")
	learningsCmd.Flags().StringVarP(&learningsSearch, "search", "s", "", "Free-text query over the learnings")
	learningsCmd.Flags().IntVarP(&learningsLimit, "limit", "n", 10, "Maximum results for a search")

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(learningsCmd)
}

// loadConfig resolves configuration with flag overrides applied.
func loadConfig() (*config.Config, error) {
	base := config.DefaultConfig()
	if dataDir != "" {
		base.DataDir = dataDir
	}

	cfg, err := config.Load(base.Path())
	if err != nil {
		return nil, err
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if apiKey != "" {
		cfg.LLM.APIKey = apiKey
	}
	if verbose {
		cfg.Logging.DebugMode = true
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

// openStore initializes file logging and opens the database.
func openStore(cfg *config.Config) (*store.Store, error) {
	if err := logging.Initialize(cfg.DataDir, cfg.Logging.DebugMode, cfg.Logging.Level); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	return store.New(cfg.DatabasePath())
}

func runInteractive() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()
	defer logging.CloseAll()

	// Reload the config file on change so debug logging can be flipped
	// without restarting a trial in progress.
	if w, err := config.Watch(cfg.Path(), func(fresh *config.Config) {
		logging.SetDebugMode(fresh.Logging.DebugMode)
	}); err == nil {
		defer w.Close()
	}

	return court.Run(cfg, s)
}

func showStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	fmt.Printf("mathcourt %s\n", cfg.Version)
	fmt.Printf("Data directory: %s\n", cfg.DataDir)
	fmt.Printf("Database:       %s\n", cfg.DatabasePath())
	fmt.Printf("Model:          %s\n", cfg.LLM.Model)
	if cfg.LLM.APIKey == "" {
		fmt.Println("API key:        not configured (set MATHCOURT_API_KEY or GEMINI_API_KEY)")
	} else {
		fmt.Println("API key:        configured")
	}

	accounts := account.NewService(s)
	username, found, err := accounts.LastUser()
	if err != nil {
		return err
	}
	if !found {
		fmt.Println("No player logged in yet.")
		return nil
	}

	tracker := progress.NewTracker(s, username)
	level, err := tracker.Level()
	if err != nil {
		return err
	}
	learnings, err := tracker.Learnings()
	if err != nil {
		return err
	}
	fmt.Printf("Last player:    %s (level %d, %d learnings)\n", username, level, len(learnings))
	logger.Debug("status read", zap.String("user", username), zap.Int("level", level))
	return nil
}

func showLearnings(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	username := learningsUser
	if username == "" {
		last, found, err := account.NewService(s).LastUser()
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("no player specified and none logged in; use --user")
		}
		username = last
	}

	tracker := progress.NewTracker(s, username)

	if learningsSearch == "" {
		learnings, err := tracker.Learnings()
		if err != nil {
			return err
		}
		if len(learnings) == 0 {
			fmt.Printf("%s has no learnings yet. Win a case!\n", username)
			return nil
		}
		for _, l := range learnings {
			fmt.Printf("  [level %2d] %s\n", l.Level, l.Text)
		}
		return nil
	}

	var engine embedding.Engine
	if cfg.LLM.APIKey != "" {
		e, err := embedding.NewGenAIEngine(cfg.LLM.APIKey, cfg.LLM.EmbeddingModel)
		if err != nil {
			logger.Warn("embedding engine unavailable, using substring search", zap.Error(err))
		} else {
			engine = e
			defer e.Close()
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	matches, err := progress.NewSearch(s, engine).Query(ctx, username, tracker, learningsSearch, learningsLimit)
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		fmt.Println("No matching learnings.")
		return nil
	}
	for _, match := range matches {
		fmt.Printf("  %.3f  [level %2d] %s\n", match.Score, match.Entry.Level, match.Entry.Text)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
