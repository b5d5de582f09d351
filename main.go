package main

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"github.com/mempirate/faqex/cache"
	"github.com/mempirate/faqex/faq"
	"github.com/mempirate/faqex/llm"
	"github.com/mempirate/faqex/log"
	"github.com/mempirate/faqex/pipeline"
	"github.com/mempirate/faqex/scrape"
	"github.com/mempirate/faqex/slack"
	"github.com/mempirate/faqex/store"
	"github.com/mempirate/faqex/util"
	"github.com/mempirate/faqex/web"
)

var (
	dataDir = flag.String("data-dir", defaultDataDir(), "Directory for the page cache and table exports.")
	urlFlag = flag.String("url", "", "Single URL to extract FAQs from.")
	input   = flag.String("input", "", "CSV file of URLs (column 'Links' or 'URL').")
	maxURLs = flag.Int("max", 0, "Maximum number of URLs to process (0 = no limit).")
	outCSV  = flag.String("out", "", "Write the CSV export to this path (default <data-dir>/extracted_faqs.csv).")
	outJSON = flag.String("json", "", "Write the JSON export to this path (default <data-dir>/extracted_faqs.json).")
	backend = flag.String("backend", "gemini", "Model backend: gemini or openai.")
	model   = flag.String("model", "", "Override the backend's default model.")
	bucket  = flag.String("bucket", "", "GCS bucket to upload exports to after a batch.")
	listen  = flag.String("listen", "", "Serve the operator UI on this address instead of running a batch.")
	noCache = flag.Bool("no-cache", false, "Disable the persistent page cache.")
)

func main() {
	godotenv.Load()
	flag.Parse()

	log := log.NewLogger("main")

	dataDir := os.ExpandEnv(*dataDir)
	if err := os.MkdirAll(dataDir, os.ModePerm); err != nil {
		log.Fatal().Err(err).Str("dataDir", dataDir).Msg("Failed to create data directory")
	}

	log.Info().Str("dataDir", dataDir).Msg("Using data directory")

	exports := store.NewFileStore(dataDir)

	var pages *cache.PageCache
	if !*noCache {
		var err error
		pages, err = cache.NewPageCache(filepath.Join(dataDir, "pages.db"))
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open page cache")
		}
		defer pages.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var uploader *store.GCSStore
	if *bucket != "" {
		var err error
		uploader, err = store.NewGCSStore(ctx, *bucket)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create GCS uploader")
		}
		defer uploader.Close()
	}

	var notifier *slack.Notifier
	if token, channel := os.Getenv("SLACK_BOT_TOKEN"), os.Getenv("SLACK_CHANNEL"); token != "" && channel != "" {
		notifier = slack.NewNotifier(token, channel)
	}

	factory := func(ctx context.Context, firecrawlKey, modelKey string) (*pipeline.Pipeline, error) {
		scraper, err := newScraper(firecrawlKey)
		if err != nil {
			return nil, err
		}

		client, err := newClient(ctx, modelKey)
		if err != nil {
			return nil, err
		}

		return pipeline.New(scraper, client, pages), nil
	}

	if *listen != "" {
		server := web.NewServer(factory, exports, uploader, notifier)
		if err := server.ListenAndServe(ctx, *listen); err != nil {
			log.Fatal().Err(err).Msg("Server failed")
		}
		return
	}

	urls, err := collectURLs()
	if err != nil {
		log.Fatal().Err(err).Msg("No URLs to process")
	}

	log.Info().Int("count", len(urls)).Msg("Starting FAQ extraction")

	pipe, err := factory(ctx, "", "")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build pipeline")
	}

	if err := pipe.ProcessAll(ctx, urls, *maxURLs, nil); err != nil {
		log.Fatal().Err(err).Msg("Batch aborted")
	}

	table := pipe.Table()

	csvPath, jsonPath := exportPaths(exports)

	if err := writeExports(table, csvPath, jsonPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to write exports")
	}

	log.Info().
		Int("records", table.Len()).
		Str("csv", csvPath).
		Str("json", jsonPath).
		Msg("Exports written")

	if uploader != nil {
		if err := uploadExports(ctx, uploader, csvPath, jsonPath); err != nil {
			log.Error().Err(err).Msg("Failed to upload exports")
		}
	}

	if missed := pipe.Missed(); len(missed) > 0 {
		log.Warn().Strs("urls", missed).Msg("Some URLs could not be crawled")
	}

	if err := notifier.NotifyBatchDone(len(urls), table.Len(), pipe.Missed()); err != nil {
		log.Error().Err(err).Msg("Failed to post batch summary")
	}
}

// newScraper prefers Firecrawl and falls back to plain HTTP when no
// key is configured anywhere.
func newScraper(key string) (scrape.Scraper, error) {
	if key == "" {
		key = os.Getenv("FIRECRAWL_API_KEY")
	}

	if key == "" {
		return scrape.NewHTTPScraper(), nil
	}

	return scrape.NewFirecrawlScraper(key)
}

func newClient(ctx context.Context, key string) (llm.Client, error) {
	switch strings.ToLower(*backend) {
	case "gemini":
		if key == "" {
			key = os.Getenv("GEMINI_API_KEY")
		}
		if key == "" {
			key = os.Getenv("GOOGLE_API_KEY")
		}
		if key == "" {
			return nil, errors.New("GEMINI_API_KEY is not set")
		}
		return llm.NewGemini(ctx, key, *model)
	case "openai":
		if key == "" {
			key = os.Getenv("OPENAI_API_KEY")
		}
		if key == "" {
			return nil, errors.New("OPENAI_API_KEY is not set")
		}
		return llm.NewOpenAI(key, *model), nil
	default:
		return nil, errors.Errorf("unknown backend: %s", *backend)
	}
}

func collectURLs() ([]string, error) {
	if *input != "" {
		return readInputCSV(*input)
	}

	if *urlFlag != "" {
		return []string{*urlFlag}, nil
	}

	return nil, errors.New("provide -url or -input")
}

func readInputCSV(path string) ([]string, error) {
	urls, err := util.ReadURLColumn(path)
	if err != nil {
		return nil, err
	}

	if len(urls) == 0 {
		return nil, errors.Errorf("no URLs found in %s", path)
	}

	return urls, nil
}

// exportPaths resolves the export destinations: the -out and -json
// flags when given, otherwise the default names in the data directory.
func exportPaths(exports store.LocalStore) (csvPath, jsonPath string) {
	csvPath = exports.Path(web.CSVExportName)
	if *outCSV != "" {
		csvPath = *outCSV
	}

	jsonPath = exports.Path(web.JSONExportName)
	if *outJSON != "" {
		jsonPath = *outJSON
	}

	return csvPath, jsonPath
}

func writeExports(table *faq.Table, csvPath, jsonPath string) error {
	if err := writeFile(csvPath, table.WriteCSV); err != nil {
		return err
	}
	return writeFile(jsonPath, table.WriteJSON)
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}
	defer f.Close()

	return write(f)
}

func uploadExports(ctx context.Context, uploader *store.GCSStore, paths ...string) error {
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return err
		}

		err = uploader.Upload(ctx, filepath.Base(path), f)
		f.Close()
		if err != nil {
			return err
		}
	}

	return nil
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		panic("Failed to get user home directory")
	}

	return filepath.Join(home, ".local", "share", "faqex")
}
