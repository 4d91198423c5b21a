// Command catalog-ingest loads product feeds into the catalog. Feeds are
// JSON-lines files, one product object per line, optionally gzip-compressed
// (.gz). Files are scanned concurrently; when the same product ID appears in
// several feeds the lexically last file wins.
package main

import (
	"bufio"
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/jackc/pgx/v5/pgxpool"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/gigamart/commerce-engine/internal/domain/product"
	"github.com/gigamart/commerce-engine/internal/repository"
)

const (
	bloomCapacity = 10_000_000
	bloomFPR      = 0.001
	progressEvery = 100_000
)

func main() {
	var (
		dataDir     string
		databaseURL string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing product feed files (*.jsonl, *.jsonl.gz)")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, dataDir, databaseURL); err != nil {
		slog.Error("catalog ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog ingest completed successfully")
}

func run(ctx context.Context, dataDir, databaseURL string) error {
	files, err := feedFiles(dataDir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return errors.Errorf("no feed files found in %s", dataDir)
	}

	slog.Info("scanning feeds", slog.Int("files", len(files)))

	perFile := make([][]product.Product, len(files))
	g, scanCtx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(scanFeed(scanCtx, i, f, perFile))
	}
	if err := g.Wait(); err != nil {
		return errors.Wrap(err, "scan feeds")
	}

	products, collisions := merge(perFile)
	slog.Info("feeds merged",
		slog.Int("products", len(products)),
		slog.Int("cross_file_collisions", collisions),
	)
	if len(products) == 0 {
		slog.Info("nothing to ingest")
		return nil
	}

	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := writeProducts(ctx, pool, products); err != nil {
		return errors.Wrap(err, "write products")
	}
	return nil
}

// feedFiles returns the feed paths under dir in lexical order, so later
// files deterministically override earlier ones on ID collision.
func feedFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "read dir %s", dir)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, ".jsonl") || strings.HasSuffix(name, ".jsonl.gz") {
			files = append(files, filepath.Join(dir, name))
		}
	}
	sort.Strings(files)
	return files, nil
}

// scanFeed parses one feed file into results[idx].
func scanFeed(ctx context.Context, idx int, path string, results [][]product.Product) func() error {
	return func() error {
		var (
			products []product.Product
			count    uint64
		)
		// Bloom filter screens for duplicate IDs within a feed; only
		// probable hits pay for the exact map lookup.
		seenFilter := bloom.NewWithEstimates(bloomCapacity, bloomFPR)
		var seen map[int64]bool

		if err := streamLines(ctx, path, func(line []byte) error {
			p, err := parseProduct(line)
			if err != nil {
				return errors.Wrapf(err, "line %d", count+1)
			}

			var idKey [8]byte
			for i := range idKey {
				idKey[i] = byte(p.ID >> (8 * i))
			}
			if seenFilter.Test(idKey[:]) {
				if seen == nil {
					seen = make(map[int64]bool)
					for _, prev := range products {
						seen[prev.ID] = true
					}
				}
				if seen[p.ID] {
					slog.Warn("duplicate product id in feed",
						slog.String("file", path),
						slog.Int64("id", p.ID),
					)
					return nil
				}
			}
			seenFilter.Add(idKey[:])
			if seen != nil {
				seen[p.ID] = true
			}

			products = append(products, p)
			count++
			if count%progressEvery == 0 {
				slog.Info("scan progress", slog.Int("file", idx+1), slog.Uint64("products", count))
			}
			return nil
		}); err != nil {
			return errors.Wrapf(err, "scan %s", path)
		}

		slog.Info("scan complete", slog.Int("file", idx+1), slog.Uint64("products", count))
		results[idx] = products
		return nil
	}
}

// merge flattens per-file results; later files win on ID collision.
func merge(perFile [][]product.Product) ([]product.Product, int) {
	byID := make(map[int64]int)
	var (
		out        []product.Product
		collisions int
	)
	for _, products := range perFile {
		for _, p := range products {
			if i, ok := byID[p.ID]; ok {
				out[i] = p
				collisions++
				continue
			}
			byID[p.ID] = len(out)
			out = append(out, p)
		}
	}
	return out, collisions
}

// streamLines calls fn for each non-empty line of path, transparently
// decompressing .gz files.
func streamLines(ctx context.Context, path string, fn func(line []byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	var scanner *bufio.Scanner
	if strings.HasSuffix(path, ".gz") {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return errors.Wrapf(err, "create gzip reader for %s", path)
		}
		defer func() { _ = gz.Close() }()
		scanner = bufio.NewScanner(gz)
	} else {
		scanner = bufio.NewScanner(f)
	}
	scanner.Buffer(make([]byte, 0, 1<<16), 1<<20)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := fn(line); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// parseProduct decodes one feed line.
func parseProduct(line []byte) (product.Product, error) {
	var p product.Product
	d := jx.DecodeBytes(line)

	if err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			p.ID, err = d.Int64()
		case "name":
			p.Name, err = d.Str()
		case "description":
			p.Description, err = d.Str()
		case "price":
			var num jx.Num
			if num, err = d.Num(); err == nil {
				p.Price, err = decimal.NewFromString(num.String())
			}
		case "category":
			p.Category, err = d.Str()
		case "thumbnail":
			p.Thumbnail, err = d.Str()
		case "featured":
			p.Featured, err = d.Bool()
		default:
			err = d.Skip()
		}
		return err
	}); err != nil {
		return product.Product{}, errors.Wrap(err, "decode product")
	}

	if p.ID == 0 {
		return product.Product{}, errors.New("product id is required")
	}
	if p.Name == "" {
		return product.Product{}, errors.Errorf("product %d: name is required", p.ID)
	}
	if p.Price.IsNegative() {
		return product.Product{}, errors.Errorf("product %d: negative price", p.ID)
	}
	return p, nil
}

const upsertProductSQL = `INSERT INTO products (id, name, description, price, category, thumbnail, featured)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (id) DO UPDATE SET
		name = EXCLUDED.name,
		description = EXCLUDED.description,
		price = EXCLUDED.price,
		category = EXCLUDED.category,
		thumbnail = EXCLUDED.thumbnail,
		featured = EXCLUDED.featured`

// writeProducts upserts the merged catalog.
func writeProducts(ctx context.Context, pool *pgxpool.Pool, products []product.Product) error {
	slog.Info("writing products", slog.Int("count", len(products)))

	for i, p := range products {
		if _, err := pool.Exec(ctx, upsertProductSQL,
			p.ID, p.Name, p.Description, p.Price, p.Category, p.Thumbnail, p.Featured,
		); err != nil {
			return errors.Wrapf(err, "upsert product %d", p.ID)
		}
		if (i+1)%100 == 0 || i+1 == len(products) {
			slog.Info("write progress", slog.Int("written", i+1), slog.Int("total", len(products)))
		}
	}
	return nil
}
