package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yuanying/epubtext/internal/config"
	"github.com/yuanying/epubtext/internal/epub"
	"github.com/yuanying/epubtext/internal/extract"
	"github.com/yuanying/epubtext/internal/store"
)

type cliOptions struct {
	Config *config.Config
	Format extract.Format
	Logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "epubtext",
		Short: "Extract metadata and chapter text from EPUB files",
		Long: `epubtext reads EPUB ebooks and extracts their title, author,
table of contents and the text of individual chapters.

Extracted books can be imported into a local database together with
a cover thumbnail.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("config", "", "Path to YAML configuration file")
	rootCmd.PersistentFlags().String("log-level", "", "Console log level: none, debug, normal (overrides config)")

	rootCmd.AddCommand(
		newMetaCmd(),
		newChapterCmd(),
		newCoverCmd(),
		newImportCmd(),
		newEntriesCmd(),
		newBooksCmd(),
	)
	return rootCmd
}

// readCLIOptions loads the configuration file and applies flag overrides.
func readCLIOptions(cmd *cobra.Command, _ []string) (*cliOptions, error) {
	flags := cmd.Flags()
	configPath, _ := flags.GetString("config")

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if level, _ := flags.GetString("log-level"); level != "" {
		cfg.Logging.ConsoleLogger.Level = level
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid --log-level: %w", err)
		}
	}
	if f := flags.Lookup("format"); f != nil && f.Changed {
		cfg.Chapter.Format = f.Value.String()
	}
	if f := flags.Lookup("width"); f != nil && f.Changed {
		w, _ := flags.GetInt("width")
		if w <= 0 {
			return nil, fmt.Errorf("invalid --width: must be positive, got %d", w)
		}
		cfg.Cover.Width = w
	}
	if f := flags.Lookup("db"); f != nil && f.Changed {
		cfg.Store.Path = f.Value.String()
	}

	format, err := extract.ParseFormat(cfg.Chapter.Format)
	if err != nil {
		return nil, fmt.Errorf("invalid --format: %w", err)
	}

	return &cliOptions{
		Config: cfg,
		Format: format,
		Logger: cfg.Logging.Prepare(),
	}, nil
}

func (o *cliOptions) engine() *extract.Engine {
	return extract.New(o.Logger, extract.Options{
		Pairing:      o.Config.LabelPairing(),
		Format:       o.Format,
		CoverWidth:   o.Config.Cover.Width,
		CoverQuality: o.Config.Cover.Quality,
		Workers:      o.Config.Import.Workers,
	})
}

func newMetaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "meta <file.epub>",
		Short: "Print title, author and table of contents as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := readCLIOptions(cmd, args)
			if err != nil {
				return err
			}
			defer opts.Logger.Sync()

			resp, rep := opts.engine().ParseMeta(args[0])
			if err := writeJSON(cmd.OutOrStdout(), resp); err != nil {
				return err
			}
			if rep.Fatal != nil {
				return fmt.Errorf("%s: %w", epub.Kind(rep.Fatal), rep.Fatal)
			}
			return nil
		},
	}
}

func newChapterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chapter <file.epub> <index>",
		Short: "Print the content of one spine item as JSON",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := readCLIOptions(cmd, args)
			if err != nil {
				return err
			}
			defer opts.Logger.Sync()

			index, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid chapter index %q: %w", args[1], err)
			}

			resp, extractErr := opts.engine().ParseContent(args[0], index)
			if err := writeJSON(cmd.OutOrStdout(), resp); err != nil {
				return err
			}
			if extractErr != nil {
				return fmt.Errorf("%s: %w", epub.Kind(extractErr), extractErr)
			}
			return nil
		},
	}
	cmd.Flags().String("format", "", "Chapter format: text, markdown (overrides config)")
	return cmd
}

func newCoverCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cover <file.epub>",
		Short: "Write a JPEG thumbnail of the cover image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := readCLIOptions(cmd, args)
			if err != nil {
				return err
			}
			defer opts.Logger.Sync()

			thumb, cover, err := opts.engine().CoverThumbnail(args[0])
			if err != nil {
				return err
			}

			out, _ := cmd.Flags().GetString("output")
			if out == "" {
				out = extract.CoverFileName(cover.Title, args[0], "")
			}
			if err := os.WriteFile(out, thumb.Data, 0o644); err != nil {
				return fmt.Errorf("unable to write cover: %w", err)
			}
			opts.Logger.Info("Cover written",
				zap.String("from", thumb.SourcePath),
				zap.String("to", out),
				zap.Int("width", thumb.Width),
				zap.Int("height", thumb.Height))
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringP("output", "o", "", "Output file path (default: slug of the title with .jpg extension)")
	cmd.Flags().Int("width", 0, "Maximum thumbnail width in pixels (overrides config)")
	return cmd
}

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file.epub>",
		Short: "Extract a book with all its chapters into the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := readCLIOptions(cmd, args)
			if err != nil {
				return err
			}
			defer opts.Logger.Sync()

			st, err := store.OpenBolt(opts.Config.Store.Path)
			if err != nil {
				return err
			}
			defer st.Close()

			coverDir, _ := cmd.Flags().GetString("cover-dir")
			if coverDir == "" {
				coverDir = filepath.Join(filepath.Dir(opts.Config.Store.Path), "covers")
			}

			res, err := opts.engine().Import(cmd.Context(), args[0], st, coverDir)
			if err != nil {
				return fmt.Errorf("import failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Book.ID)
			return nil
		},
	}
	cmd.Flags().String("db", "", "Database file path (overrides config)")
	cmd.Flags().String("format", "", "Chapter format: text, markdown (overrides config)")
	cmd.Flags().String("cover-dir", "", "Directory for cover thumbnails (default: covers next to the database)")
	return cmd
}

func newEntriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "entries <file.epub>",
		Short: "List the entries of the archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := epub.OpenArchive(args[0])
			if err != nil {
				return err
			}
			defer a.Close()

			for _, name := range a.Entries() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func newBooksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "books",
		Short: "List imported books",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := readCLIOptions(cmd, args)
			if err != nil {
				return err
			}
			defer opts.Logger.Sync()

			st, err := store.OpenBolt(opts.Config.Store.Path)
			if err != nil {
				return err
			}
			defer st.Close()

			books, err := st.ListBooks()
			if err != nil {
				return err
			}
			for _, b := range books {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%d\n", b.ID, b.Title, b.Author, b.ChapterCount)
			}
			return nil
		},
	}
	cmd.Flags().String("db", "", "Database file path (overrides config)")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
