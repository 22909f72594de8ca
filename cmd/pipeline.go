package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/kpn-dsh/dsh-cli-sub000/internal/config"
	"github.com/kpn-dsh/dsh-cli-sub000/internal/ids"
	"github.com/kpn-dsh/dsh-cli-sub000/internal/model"
	"github.com/kpn-dsh/dsh-cli-sub000/internal/storage"
	"github.com/kpn-dsh/dsh-cli-sub000/internal/utils/logger"
	"github.com/kpn-dsh/dsh-cli-sub000/internal/validator"
	"github.com/kpn-dsh/dsh-cli-sub000/internal/watcher"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// errValidationFailed is returned after a failed validation report has been printed
var errValidationFailed = errors.New("pipeline validation failed")

func newPipelineCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "pipeline",
		Aliases: []string{"pipelines", "p"},
		Short:   "Compile, validate and inspect pipelines",
	}

	cmd.AddCommand(newPipelineShowCommand())
	cmd.AddCommand(newPipelineValidateCommand())
	cmd.AddCommand(newPipelineCompileCommand())
	cmd.AddCommand(newPipelineHistoryCommand())
	cmd.AddCommand(newPipelineRecordCommand())
	cmd.AddCommand(newPipelineCompatibleCommand())

	return cmd
}

func newPipelineShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <pipeline-file>",
		Short: "Compile a pipeline and print the resulting graph",
		Example: `  # Print the outline of a pipeline
  dshpipe pipeline show replicate.yaml --catalog ./catalog --tenant greenbox --platform poc

  # Print it as JSON
  dshpipe pipeline show replicate.yaml -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings()
			if err != nil {
				return err
			}
			p, err := compile(cmd.Context(), s, args[0])
			if err != nil {
				return err
			}
			return writePipeline(cmd.OutOrStdout(), s.Output, p)
		},
	}
}

func newPipelineValidateCommand() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "validate <pipeline-file>",
		Short: "Validate a pipeline file against the catalog",
		Long: `Validate a pipeline file before deploying it.

Validation compiles the pipeline and reports the first error that stops it:
- unknown processor or resource realizations
- connections to undeclared processors or resources
- junctions the processor realization does not have
- resources whose technology an inbound junction does not accept
- duplicate ids and unknown profiles

When the pipeline compiles, warnings point at unconnected processors, unused
resources and junction bounds. With --watch the pipeline file and the catalog
directory are watched and validation reruns on every change.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings()
			if err != nil {
				return err
			}
			if err := s.RequireTenant(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !watch {
				result, err := validateFile(cmd.Context(), s, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(out, result.Format())
				if !result.Valid {
					return errValidationFailed
				}
				return nil
			}
			return watchAndValidate(cmd.Context(), s, args[0], out)
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "revalidate whenever the pipeline file or catalog changes")
	return cmd
}

// validateFile runs the validator on a pipeline file. Load errors are returned,
// compile errors are part of the result.
func validateFile(ctx context.Context, s *config.Settings, file string) (*validator.ValidationResult, error) {
	reg, err := loadRegistry(ctx, s)
	if err != nil {
		return nil, err
	}
	cfg, err := model.LoadPipelineFromFile(file)
	if err != nil {
		return nil, err
	}
	return validator.NewValidator(cfg, s.Tenant, reg, reg).Validate(), nil
}

func watchAndValidate(ctx context.Context, s *config.Settings, file string, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	run := func() {
		fmt.Fprintf(out, "\n%s\n", sectionTitleStyle.Render(fmt.Sprintf("[%s] validating %s", time.Now().Format("15:04:05"), file)))
		result, err := validateFile(ctx, s, file)
		if err != nil {
			fmt.Fprintln(out, "ERROR:", err)
			return
		}
		fmt.Fprintln(out, result.Format())
	}

	w, err := watcher.New(watcher.DefaultDebounce, func(path string) {
		logger.Debug("Change detected", zap.String("path", path))
		run()
	})
	if err != nil {
		return err
	}
	defer w.Close()

	paths := []string{file}
	if s.Catalog != "" {
		for _, sub := range []string{"processors", "resources"} {
			dir := filepath.Join(s.Catalog, sub)
			if _, err := os.Stat(dir); err == nil {
				paths = append(paths, dir)
			}
		}
	}
	if err := w.Add(paths...); err != nil {
		return err
	}

	run()
	fmt.Fprintln(out, dimStyle.Render("Watching for changes (Ctrl+C to stop)"))
	return w.Run(ctx)
}

func newPipelineCompileCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "compile <pipeline-file>",
		Short: "Compile a pipeline and store the result",
		Long: `Compile a pipeline and save the compiled graph in the store, so that
earlier compilations can be listed with 'dshpipe pipeline history'.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings()
			if err != nil {
				return err
			}
			p, err := compile(cmd.Context(), s, args[0])
			if err != nil {
				return err
			}

			store, err := openStore(s)
			if err != nil {
				return err
			}
			defer store.Close()

			record := &storage.CompiledRecord{
				ID:         uuid.New(),
				PipelineID: p.ID.String(),
				Tenant:     s.Tenant.String(),
				Graph:      p.String(),
				CreatedAt:  time.Now().UTC(),
			}
			if err := store.SaveRecord(cmd.Context(), record); err != nil {
				return err
			}
			logger.Info("Pipeline compiled",
				zap.String("pipeline", record.PipelineID),
				zap.String("record", record.ID.String()))

			if s.Output != config.OutputText {
				return writeStructured(cmd.OutOrStdout(), s.Output, newRecordView(record))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Compiled pipeline '%s' for %s (record %s)\n", successStyle.Render("✓"), record.PipelineID, record.Tenant, record.ID)
			return nil
		},
	}
}

func newPipelineHistoryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [pipeline-id]",
		Short: "List stored compilations, newest first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings()
			if err != nil {
				return err
			}
			pipelineID := ""
			if len(args) == 1 {
				id, err := ids.NewPipelineID(args[0])
				if err != nil {
					return err
				}
				pipelineID = id.String()
			}

			store, err := openStore(s)
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.ListRecords(cmd.Context(), pipelineID, limit)
			if err != nil {
				return err
			}

			if s.Output != config.OutputText {
				views := make([]recordView, 0, len(records))
				for _, r := range records {
					views = append(views, newRecordView(r))
				}
				return writeStructured(cmd.OutOrStdout(), s.Output, views)
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), dimStyle.Render("No compiled pipelines found."))
				return nil
			}
			writeRecordTable(cmd.OutOrStdout(), records)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of records (0 for all)")
	return cmd
}

func newPipelineRecordCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "record <record-id>",
		Short: "Print a stored compilation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings()
			if err != nil {
				return err
			}
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid record id '%s': %w", args[0], err)
			}

			store, err := openStore(s)
			if err != nil {
				return err
			}
			defer store.Close()

			record, err := store.GetRecord(cmd.Context(), id)
			if err != nil {
				return err
			}
			if s.Output != config.OutputText {
				return writeStructured(cmd.OutOrStdout(), s.Output, newRecordView(record))
			}
			_, err = io.WriteString(cmd.OutOrStdout(), record.Graph)
			return err
		},
	}
}

func newPipelineCompatibleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "compatible <pipeline-file> <processor-id> <junction-id>",
		Short: "List the pipeline resources an inbound junction accepts",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings()
			if err != nil {
				return err
			}
			processorID, err := ids.NewProcessorID(args[1])
			if err != nil {
				return err
			}
			junctionID, err := ids.NewJunctionID(args[2])
			if err != nil {
				return err
			}

			p, err := compile(cmd.Context(), s, args[0])
			if err != nil {
				return err
			}
			resources, err := p.CompatibleResources(processorID, junctionID)
			if err != nil {
				return err
			}

			if s.Output != config.OutputText {
				views := make([]resourceView, 0, len(resources))
				for _, r := range resources {
					views = append(views, resourceView{ID: r.ID.String(), Name: r.Name, Identifier: r.Identifier().String()})
				}
				return writeStructured(cmd.OutOrStdout(), s.Output, views)
			}
			if len(resources) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No resources in pipeline '%s' fit junction '%s' of processor '%s'.\n", p.ID, junctionID, processorID)
				return nil
			}
			for _, r := range resources {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", r.ID, r.Identifier())
			}
			return nil
		},
	}
}

type recordView struct {
	ID         string    `yaml:"id" json:"id"`
	PipelineID string    `yaml:"pipeline" json:"pipeline"`
	Tenant     string    `yaml:"tenant" json:"tenant"`
	CreatedAt  time.Time `yaml:"created-at" json:"created-at"`
	Graph      string    `yaml:"graph" json:"graph"`
}

func newRecordView(r *storage.CompiledRecord) recordView {
	return recordView{
		ID:         r.ID.String(),
		PipelineID: r.PipelineID,
		Tenant:     r.Tenant,
		CreatedAt:  r.CreatedAt,
		Graph:      r.Graph,
	}
}

func writeRecordTable(out io.Writer, records []*storage.CompiledRecord) {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "RECORD\tPIPELINE\tTENANT\tCOMPILED")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.ID, r.PipelineID, r.Tenant, r.CreatedAt.Format(time.RFC3339))
	}
	w.Flush()
}
