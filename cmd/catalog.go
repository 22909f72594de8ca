package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/kpn-dsh/dsh-cli-sub000/internal/catalog"
	"github.com/kpn-dsh/dsh-cli-sub000/internal/config"
	"github.com/kpn-dsh/dsh-cli-sub000/internal/descriptor"
	"github.com/kpn-dsh/dsh-cli-sub000/internal/ids"
	"github.com/kpn-dsh/dsh-cli-sub000/internal/registry"
	"github.com/kpn-dsh/dsh-cli-sub000/internal/storage"
	"github.com/kpn-dsh/dsh-cli-sub000/internal/utils/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newCatalogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and import processor and resource realizations",
		Long: `The catalog holds the processor and resource realizations that pipelines are
compiled against. It is read from the directory given with --catalog, or from the
store when no directory is given.`,
	}

	cmd.AddCommand(newCatalogListCommand())
	cmd.AddCommand(newCatalogShowCommand())
	cmd.AddCommand(newCatalogImportCommand())

	return cmd
}

// catalogRow is one line of 'catalog list'
type catalogRow struct {
	Kind       string `yaml:"kind" json:"kind"`
	ID         string `yaml:"id" json:"id"`
	Technology string `yaml:"technology" json:"technology"`
	Label      string `yaml:"label" json:"label"`
	Junctions  string `yaml:"junctions,omitempty" json:"junctions,omitempty"`
}

func newCatalogListCommand() *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List realizations",
		Example: `  # List everything
  dshpipe catalog list --catalog ./catalog

  # List processors only
  dshpipe catalog list --kind processor`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch kind {
			case "", storage.KindProcessor, storage.KindResource:
			default:
				return fmt.Errorf("unknown kind '%s' (expected %s or %s)", kind, storage.KindProcessor, storage.KindResource)
			}

			s, err := loadSettings()
			if err != nil {
				return err
			}
			reg, err := loadRegistry(cmd.Context(), s)
			if err != nil {
				return err
			}

			rows := catalogRows(reg, s.Tenant, kind)
			if s.Output != config.OutputText {
				return writeStructured(cmd.OutOrStdout(), s.Output, rows)
			}
			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), dimStyle.Render("No realizations found."))
				return nil
			}
			writeCatalogTable(cmd.OutOrStdout(), rows)
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "only list realizations of this kind (processor|resource)")
	return cmd
}

func catalogRows(reg *registry.Registry, tenant descriptor.Tenant, kind string) []catalogRow {
	rows := []catalogRow{}
	if kind == "" || kind == storage.KindProcessor {
		for _, p := range reg.ProcessorRealizations() {
			d := p.Descriptor(tenant)
			rows = append(rows, catalogRow{
				Kind:       storage.KindProcessor,
				ID:         p.ID().String(),
				Technology: p.Technology().String(),
				Label:      d.Label,
				Junctions:  formatJunctions(d),
			})
		}
	}
	if kind == "" || kind == storage.KindResource {
		for _, r := range reg.ResourceRealizations() {
			rows = append(rows, catalogRow{
				Kind:       storage.KindResource,
				ID:         r.ID().String(),
				Technology: r.Technology().String(),
				Label:      r.Descriptor().Label,
			})
		}
	}
	return rows
}

// formatJunctions summarizes a processor's junctions as "in: a,b out: c"
func formatJunctions(d descriptor.ProcessorDescriptor) string {
	var parts []string
	if len(d.InboundJunctions) > 0 {
		parts = append(parts, "in: "+joinJunctionIDs(d.InboundJunctions))
	}
	if len(d.OutboundJunctions) > 0 {
		parts = append(parts, "out: "+joinJunctionIDs(d.OutboundJunctions))
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " ")
}

func joinJunctionIDs(js []descriptor.JunctionDescriptor) string {
	names := make([]string, len(js))
	for i, j := range js {
		names[i] = j.ID.String()
	}
	return strings.Join(names, ",")
}

func writeCatalogTable(out io.Writer, rows []catalogRow) {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "KIND\tID\tTECHNOLOGY\tLABEL\tJUNCTIONS")
	for _, r := range rows {
		junctions := r.Junctions
		if junctions == "" {
			junctions = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.Kind, r.ID, r.Technology, r.Label, junctions)
	}
	w.Flush()
}

func newCatalogShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <realization-id>",
		Short: "Print a realization's descriptor as rendered for the tenant",
		Long: `Print the descriptor of a processor or resource realization. Processor
descriptors are rendered for the configured tenant, so templated values show the
values a pipeline would get.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings()
			if err != nil {
				return err
			}
			reg, err := loadRegistry(cmd.Context(), s)
			if err != nil {
				return err
			}

			v, err := describeRealization(reg, s.Tenant, args[0])
			if err != nil {
				return err
			}
			format := s.Output
			if format == config.OutputText {
				format = config.OutputYAML
			}
			return writeStructured(cmd.OutOrStdout(), format, v)
		},
	}
}

// describeRealization finds a realization by id, processors first
func describeRealization(reg *registry.Registry, tenant descriptor.Tenant, id string) (any, error) {
	if pid, err := ids.NewProcessorRealizationID(id); err == nil {
		if p, ok := reg.ProcessorRealization(pid); ok {
			return p.Descriptor(tenant), nil
		}
	}
	if rid, err := ids.NewResourceRealizationID(id); err == nil {
		if r, ok := reg.ResourceRealization(rid); ok {
			return r.Descriptor(), nil
		}
	}
	return nil, fmt.Errorf("realization '%s' not found in catalog", id)
}

func newCatalogImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <catalog-dir>",
		Short: "Replace the stored catalog with the realizations in a directory",
		Long: `Read every realization file under <catalog-dir>/processors and
<catalog-dir>/resources, check them, and replace the catalog in the store with
them. Nothing is written when any file is invalid.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings()
			if err != nil {
				return err
			}
			c, err := catalog.LoadDir(args[0])
			if err != nil {
				return err
			}
			if _, err := c.Registry(); err != nil {
				return err
			}

			store, err := openStore(s)
			if err != nil {
				return err
			}
			defer store.Close()

			err = store.WithTransaction(cmd.Context(), func(txn storage.Transaction) error {
				existing, err := txn.ListCatalogEntries("")
				if err != nil {
					return err
				}
				for _, e := range existing {
					if err := txn.DeleteCatalogEntry(e.Kind, e.ID); err != nil {
						return err
					}
				}
				for _, e := range c.Entries {
					if err := txn.PutCatalogEntry(e); err != nil {
						return err
					}
				}
				return nil
			})
			if err != nil {
				return fmt.Errorf("failed to import catalog: %w", err)
			}

			logger.Info("Catalog imported",
				zap.String("dir", args[0]),
				zap.Int("processors", len(c.Processors)),
				zap.Int("resources", len(c.Resources)))
			fmt.Fprintf(cmd.OutOrStdout(), "%s Imported %d processor and %d resource realizations into %s\n",
				successStyle.Render("✓"), len(c.Processors), len(c.Resources), s.Store)
			return nil
		},
	}
}
