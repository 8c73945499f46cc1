package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"inspectline/internal/catalog"
	"inspectline/internal/config"
	"inspectline/internal/history"
	"inspectline/internal/persist"
	"inspectline/internal/record"
	"inspectline/internal/render"
	"inspectline/internal/report"
	"inspectline/internal/update"
	"inspectline/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "il",
	Short: "Inspectline CLI",
	Long: `Inspectline builds equipment inspection records and renders them as reports.
A record is a single JSON file plus a sibling bundle folder holding its state
and attached images; the workspace keeps a SQLite sidecar with the recents
list and an operation journal.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if viper.GetBool("verbose") {
			logrus.SetLevel(logrus.DebugLevel)
		}
		workspace := viper.GetString("workspace")
		if _, err := history.EnsureWorkspace(workspace); err != nil {
			return err
		}
		return nil
	},
	// A bare record path behaves like `il show <path>`.
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		return runShow(cmd.Context(), args[0])
	},
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("INSPECTLINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("workspace", "w", ".", "workspace directory")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	rootCmd.PersistentFlags().Bool("verbose", false, "debug logging")
	_ = viper.BindPFlag("workspace", rootCmd.PersistentFlags().Lookup("workspace"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func registerCommands() {
	rootCmd.AddCommand(newCmd())
	rootCmd.AddCommand(showCmd())
	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(recentCmd())
	rootCmd.AddCommand(journalCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(checkUpdateCmd())
	rootCmd.AddCommand(versionCmd())
}

func newCmd() *cobra.Command {
	var (
		id        string
		model     string
		serial    string
		customer  string
		contact   string
		date      string
		equipment []string
	)
	cmd := &cobra.Command{
		Use:   "new <path>",
		Short: "Create a new inspection record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			cfg, err := config.LoadOptional(viper.GetString("workspace"))
			if err != nil {
				return err
			}
			rec := record.New()
			rec.Header.Identifier = id
			if rec.Header.Identifier == "" {
				base := filepath.Base(path)
				rec.Header.Identifier = strings.TrimSuffix(base, filepath.Ext(base))
			}
			rec.Header.Model = model
			rec.Header.Serial = serial
			rec.Header.Customer = customer
			rec.Header.Contact = contact
			rec.Header.InspectionDate = date
			if rec.Header.InspectionDate == "" {
				rec.Header.InspectionDate = time.Now().Format("2006-01-02")
			}
			rec.Header.Inspector = cfg.Inspector.Name
			rec.Header.Company = cfg.Inspector.Company
			for _, name := range equipment {
				kind, ok := catalog.KindFromString(name)
				if !ok {
					return fmt.Errorf("unknown equipment kind %q (want one of %s)",
						name, strings.Join(kindNames(), ", "))
				}
				rec.AddEquipmentUnit(kind)
			}
			eng := &persist.Engine{}
			if err := eng.Save(rec, path); err != nil {
				return err
			}
			journal(cmd.Context(), "new", path, map[string]any{
				"identifier": rec.Header.Identifier,
				"equipment":  len(rec.Equipment),
			})
			touchRecent(cmd.Context(), path, rec.Header.Identifier)
			fmt.Printf("created %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "record identifier (defaults to the file name)")
	cmd.Flags().StringVar(&model, "model", "", "equipment model")
	cmd.Flags().StringVar(&serial, "serial", "", "equipment serial")
	cmd.Flags().StringVar(&customer, "customer", "", "customer name")
	cmd.Flags().StringVar(&contact, "contact", "", "customer contact")
	cmd.Flags().StringVar(&date, "date", "", "inspection date (defaults to today)")
	cmd.Flags().StringSliceVar(&equipment, "equipment", nil, "equipment kinds to add (motor, compressor, coil, valve)")
	return cmd
}

func showCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <path>",
		Short: "Show a record's header and section status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd.Context(), args[0])
		},
	}
	return cmd
}

func runShow(ctx context.Context, path string) error {
	rec, err := loadRecord(path)
	if err != nil {
		return err
	}
	journal(ctx, "load", path, nil)
	touchRecent(ctx, path, rec.Header.Identifier)
	if viper.GetBool("json") {
		return printJSON(showView(rec))
	}
	fmt.Printf("Record %s (%s)\n", rec.Header.Identifier, rec.Header.InspectionDate)
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"Equipment", "Section", "Status", "Patterns", "Images"})
	for _, unit := range rec.Equipment {
		for _, sec := range unit.Sections {
			tw.AppendRow(table.Row{
				unit.Name(),
				sec.Def.Title,
				statusText(sec),
				strings.Join(sec.Selected, ", "),
				countImages(sec),
			})
		}
	}
	tw.Render()
	return nil
}

func reportCmd() *cobra.Command {
	var (
		out   string
		color bool
	)
	cmd := &cobra.Command{
		Use:   "report <path>",
		Short: "Assemble and render a record's report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			rec, err := loadRecord(path)
			if err != nil {
				return err
			}
			blocks, err := report.Assemble(rec)
			if err != nil {
				return err
			}
			w := os.Stdout
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
				color = false
			}
			if err := (render.Text{Color: color}).Render(w, blocks); err != nil {
				return err
			}
			journal(cmd.Context(), "report", path, map[string]any{"blocks": len(blocks)})
			touchRecent(cmd.Context(), path, rec.Header.Identifier)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the report to a file instead of stdout")
	cmd.Flags().BoolVar(&color, "color", false, "ANSI styling for terminal output")
	return cmd
}

func recentCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List recently opened records",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, s *history.Store) error {
				recents, err := s.ListRecents(ctx, limit)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(recents)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"Opened", "Identifier", "Path"})
				for _, r := range recents {
					tw.AppendRow(table.Row{r.OpenedAt.Local().Format("2006-01-02 15:04"), r.Title, r.Path})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum entries")
	return cmd
}

func journalCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Show the latest CLI operations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, s *history.Store) error {
				entries, err := s.TailJournal(ctx, limit)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(entries)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"Time", "Op", "Path"})
				for _, e := range entries {
					tw.AppendRow(table.Row{e.TS.Local().Format("2006-01-02 15:04:05"), e.Op, e.Path})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum entries")
	return cmd
}

func configCmd() *cobra.Command {
	cfg := &cobra.Command{Use: "config", Short: "Manage workspace configuration"}
	cfg.AddCommand(configInitCmd())
	cfg.AddCommand(configShowCmd())
	return cfg
}

func configInitCmd() *cobra.Command {
	var inspector string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default inspectline.yml",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.Path(viper.GetString("workspace"))
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}
			if err := os.WriteFile(path, []byte(config.GenerateDefault(inspector)), 0o644); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&inspector, "inspector", "", "inspector name")
	return cmd
}

func configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOptional(viper.GetString("workspace"))
			if err != nil {
				return err
			}
			return printJSON(cfg)
		},
	}
}

func checkUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-update",
		Short: "Check for a newer release",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOptional(viper.GetString("workspace"))
			if err != nil {
				return err
			}
			if cfg.Updates.URL == "" {
				return fmt.Errorf("no update url configured")
			}
			checker := update.Checker{
				URL:     cfg.Updates.URL,
				Current: version.Version,
				Log:     logrus.StandardLogger(),
			}
			res, err := checker.Check(cmd.Context())
			if err != nil {
				return err
			}
			if viper.GetBool("json") {
				return printJSON(res)
			}
			if res.Available {
				fmt.Printf("update available: %s (running %s)\n", res.Latest, version.Version)
				if res.DownloadURL != "" {
					fmt.Println(res.DownloadURL)
				}
			} else {
				fmt.Printf("up to date (%s)\n", version.Version)
			}
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("il %s (commit %s, built %s)\n", version.Version, version.GitCommit, version.BuildTime)
			return nil
		},
	}
}

// loadRecord loads a record bundle through the persistence engine.
func loadRecord(path string) (*record.Record, error) {
	eng := &persist.Engine{}
	return eng.Load(path)
}

// withStore opens the workspace sidecar database for one command.
func withStore(ctx context.Context, fn func(context.Context, *history.Store) error) error {
	s, err := history.Open(viper.GetString("workspace"))
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(ctx, s)
}

// journal and touchRecent are best effort: sidecar failures get logged and
// never fail the command that triggered them.
func journal(ctx context.Context, op, path string, detail map[string]any) {
	err := withStore(ctx, func(ctx context.Context, s *history.Store) error {
		return s.AppendJournal(ctx, op, path, detail)
	})
	if err != nil {
		logrus.WithError(err).Debug("journal append failed")
	}
}

func touchRecent(ctx context.Context, path, title string) {
	err := withStore(ctx, func(ctx context.Context, s *history.Store) error {
		return s.TouchRecent(ctx, path, title)
	})
	if err != nil {
		logrus.WithError(err).Debug("recent list update failed")
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func kindNames() []string {
	var out []string
	for _, k := range catalog.Kinds() {
		out = append(out, string(k))
	}
	return out
}

func statusText(sec *record.Section) string {
	switch sec.Status() {
	case record.StatusOK:
		return "OK"
	case record.StatusNotOK:
		return "NOT OK"
	default:
		if len(sec.Selected) > 0 {
			return "noted"
		}
		return ""
	}
}

func countImages(sec *record.Section) int {
	n := len(sec.Images)
	for _, st := range sec.Observations {
		n += len(st.PatternImages)
		for _, refs := range st.ObsImages {
			n += len(refs)
		}
	}
	for _, entry := range sec.Custom {
		n += len(entry.Images)
	}
	for _, refs := range sec.MetricImages {
		n += len(refs)
	}
	return n
}

type sectionView struct {
	Title    string   `json:"title"`
	Status   string   `json:"status,omitempty"`
	Patterns []string `json:"patterns,omitempty"`
	Images   int      `json:"images,omitempty"`
}

type unitView struct {
	Name     string        `json:"name"`
	Sections []sectionView `json:"sections"`
}

type recordView struct {
	Header    record.Header `json:"header"`
	Equipment []unitView    `json:"equipment"`
}

func showView(rec *record.Record) recordView {
	view := recordView{Header: rec.Header}
	for _, unit := range rec.Equipment {
		uv := unitView{Name: unit.Name()}
		for _, sec := range unit.Sections {
			uv.Sections = append(uv.Sections, sectionView{
				Title:    sec.Def.Title,
				Status:   statusText(sec),
				Patterns: append([]string(nil), sec.Selected...),
				Images:   countImages(sec),
			})
		}
		view.Equipment = append(view.Equipment, uv)
	}
	return view
}
