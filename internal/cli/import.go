package cli

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gurkhatech/bundlepress/internal/config"
	"github.com/gurkhatech/bundlepress/internal/database"
	"github.com/gurkhatech/bundlepress/internal/importer"
	"github.com/gurkhatech/bundlepress/internal/media"
	"github.com/gurkhatech/bundlepress/internal/scheduler"
	"github.com/gurkhatech/bundlepress/internal/scratch"
)

// ImportCommand imports one or more content bundle archives from disk.
type ImportCommand struct {
	DatabasePath string
	MediaDir     string
	MediaBaseURL string
	ScratchDir   string
	Verbose      bool
	Archives     []string
}

func NewImportCommand() *ImportCommand {
	return &ImportCommand{}
}

func (cmd *ImportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the local database file")
	fs.StringVar(&cmd.MediaDir, "media-dir", config.DefaultMediaDir, "Root directory for stored attachment files")
	fs.StringVar(&cmd.MediaBaseURL, "media-url", "/media", "Public URL prefix for attachment URLs")
	fs.StringVar(&cmd.ScratchDir, "scratch-dir", config.DefaultScratchDir, "Directory for temporary bundle extraction")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Enable verbose logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s import [options] <bundle.zip> [bundle2.zip ...]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Import content bundle archives as scheduled posts.\n\n")
		fmt.Fprintf(os.Stderr, "Each archive must contain an HTML content file and a JSON metadata file.\n")
		fmt.Fprintf(os.Stderr, "Images referenced by the content are stored in the media library and the\n")
		fmt.Fprintf(os.Stderr, "post is scheduled on the next free publish date.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # Import a single bundle:\n")
		fmt.Fprintf(os.Stderr, "  %s import article.zip\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  # Import several bundles into a specific database:\n")
		fmt.Fprintf(os.Stderr, "  %s import -db ./site.db a.zip b.zip c.zip\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	cmd.Archives = fs.Args()
	if len(cmd.Archives) == 0 {
		return fmt.Errorf("no bundle archives provided")
	}

	return nil
}

func (cmd *ImportCommand) Run() error {
	fmt.Println("Bundle Import")
	fmt.Println("=============")

	for _, archive := range cmd.Archives {
		if _, err := os.Stat(archive); os.IsNotExist(err) {
			return fmt.Errorf("archive not found: %s", archive)
		}
	}

	absDBPath, err := filepath.Abs(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for database: %w", err)
	}
	cmd.DatabasePath = absDBPath

	fmt.Printf("Database: %s\n", cmd.DatabasePath)

	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	scratchStore, err := scratch.NewStore(cmd.ScratchDir)
	if err != nil {
		return fmt.Errorf("failed to initialize scratch storage: %w", err)
	}

	library, err := media.NewLibrary(cmd.MediaDir, cmd.MediaBaseURL, db)
	if err != nil {
		return fmt.Errorf("failed to initialize media library: %w", err)
	}

	// No task queue in CLI mode; attachment dimensions are left unset.
	publishScheduler := scheduler.NewPublishScheduler(db, false)
	imp := importer.New(scratchStore, db, library, publishScheduler, nil)

	fmt.Printf("\nImporting %d bundle(s)...\n", len(cmd.Archives))

	var imported, failed int
	for _, archive := range cmd.Archives {
		name := filepath.Base(archive)
		if cmd.Verbose {
			fmt.Printf("  -> %s...\n", name)
		}

		result := imp.ImportArchive(archive, name)
		if !result.Success {
			failed++
			fmt.Printf("  [ERROR] %s: %s\n", name, result.Error)
			continue
		}

		imported++
		fmt.Printf("  [OK] %s: post #%d %q\n", name, result.PostID, result.PostTitle)
	}

	fmt.Println("\n=== Import Summary ===")
	fmt.Printf("Imported: %d/%d\n", imported, len(cmd.Archives))
	if failed > 0 {
		fmt.Printf("Failed: %d\n", failed)
	}

	fmt.Println("\nImport complete!")
	return nil
}
