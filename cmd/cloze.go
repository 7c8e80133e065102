package cmd

import (
	"context"
	"fmt"
	"strconv"

	"cloze-manager/core/checkpoint"
	"cloze-manager/core/collection"
	"cloze-manager/core/config"
	"cloze-manager/core/database"
	"cloze-manager/core/logger"
	"cloze-manager/core/storage"
	"cloze-manager/feature/cloze"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for the cloze batch commands
	notetypeName string
)

// clozeCmd is the parent command for batch cloze operations.
var clozeCmd = &cobra.Command{
	Use:   "cloze",
	Short: "Batch cloze operations over a selection of notes",
	Long: `Batch cloze operations over a selection of notes.

The selection is either an explicit list of note ids or, with --notetype,
every note of the named notetype.`,
}

// autoClozeCmd fills empty Cloze fields from their source fields.
var autoClozeCmd = &cobra.Command{
	Use:   "auto [noteID...]",
	Short: "Fill empty Cloze fields from their source fields",
	Long: `Fill each empty Cloze field from its corresponding source field,
wrapping the whole content as a single c1 deletion.

Examples:
  # Auto-cloze three notes
  cloze auto 101 102 103

  # Auto-cloze every note of a notetype
  cloze auto --notetype Vocab`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBatchCommand(cmd.Context(), args, cloze.AutoCloze)
	},
}

// createMissingCmd force-syncs auxiliary fields with marker content.
var createMissingCmd = &cobra.Command{
	Use:   "create-missing [noteID...]",
	Short: "Sync card-generating fields with cloze markers",
	Long: `Ensure every auxiliary field matches the cloze markers present in its
Cloze field. Only needed for notes edited before the integration was
installed; live editing keeps the fields in sync on its own.

Examples:
  cloze create-missing 101 102
  cloze create-missing --notetype Vocab`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBatchCommand(cmd.Context(), args, cloze.CreateMissing)
	},
}

func init() {
	clozeCmd.AddCommand(autoClozeCmd)
	clozeCmd.AddCommand(createMissingCmd)

	clozeCmd.PersistentFlags().StringVar(&notetypeName, "notetype", "", "Select every note of this notetype")

	RootCmd.AddCommand(clozeCmd)
}

func runBatchCommand(
	ctx context.Context,
	args []string,
	run func(ctx context.Context, deps cloze.BatchDeps, noteIDs []int64) (cloze.BatchReport, error),
) error {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer l.Sync()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to open collection database: %w", err)
	}
	if err := collection.AutoMigrate(db); err != nil {
		return fmt.Errorf("failed to migrate collection schema: %w", err)
	}
	store := collection.NewStore(db, l)

	var checkpoints *checkpoint.Manager
	if cfg.Storage.Enabled {
		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to create storage client: %w", err)
		}
		checkpoints = checkpoint.NewManager(client, cfg.Storage.Bucket, l)
		if err := checkpoints.EnsureBucket(ctx); err != nil {
			l.Warn("Checkpoint bucket unavailable, batch undo disabled", zap.Error(err))
			checkpoints = nil
		}
	}

	noteIDs, err := resolveSelection(ctx, store, args)
	if err != nil {
		return err
	}

	deps := cloze.BatchDeps{
		Store:       store,
		Checkpoints: checkpoints,
		Notifier:    cloze.LogNotifier{Logger: l},
		Refresher:   cloze.NopRefresher{},
		Logger:      l,
	}

	report, err := run(ctx, deps, noteIDs)
	if err != nil {
		return err
	}

	if len(report.FailedIDs) > 0 {
		l.Warn("Some notes could not be processed", zap.Int64s("note_ids", report.FailedIDs))
	}
	return nil
}

// resolveSelection turns CLI args (note ids) or the --notetype flag into the
// selection of note ids to operate on.
func resolveSelection(ctx context.Context, store *collection.Store, args []string) ([]int64, error) {
	if notetypeName != "" {
		if len(args) > 0 {
			return nil, fmt.Errorf("pass either note ids or --notetype, not both")
		}
		return store.NoteIDsByNotetype(ctx, notetypeName)
	}

	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid note id %q: %w", arg, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
