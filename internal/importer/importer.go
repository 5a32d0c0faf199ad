package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"path"
	"strconv"
	"strings"

	"wheeldeal/internal/domain"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

type CategoryWriter interface {
	Upsert(ctx context.Context, c domain.Category) (*domain.Category, error)
}

type ImageUploader interface {
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
}

// CSVImporter loads catalog rows and upserts their categories and products.
// Rows look like:
//
//	category_slug,category_name,slug,name,description,price,available,image
type CSVImporter struct {
	reader     *csv.Reader
	products   ProductWriter
	categories CategoryWriter
	images     ImageUploader
	imageFS    fs.FS
	logger     *zap.Logger
}

type Option func(*CSVImporter)

// WithImages uploads the file named in the image column, resolved in fsys,
// and stores its object key on the product.
func WithImages(fsys fs.FS, uploader ImageUploader) Option {
	return func(i *CSVImporter) {
		i.imageFS = fsys
		i.images = uploader
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(i *CSVImporter) {
		if logger != nil {
			i.logger = logger
		}
	}
}

func NewCSVImporter(r io.Reader, products ProductWriter, categories CategoryWriter, opts ...Option) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1
	csvr.TrimLeadingSpace = true
	i := &CSVImporter{
		reader:     csvr,
		products:   products,
		categories: categories,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

type csvRow struct {
	line         int
	CategorySlug string
	CategoryName string
	Slug         string
	Name         string
	Desc         string
	Price        decimal.Decimal
	Available    bool
	Image        string
}

// Run imports every row and returns the number of products written. The
// first invalid row aborts the import.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	for _, col := range []string{"category_slug", "slug", "name", "price"} {
		if _, ok := index[col]; !ok {
			return 0, fmt.Errorf("missing column %q", col)
		}
	}

	categoryIDs := make(map[string]string)
	imported := 0
	line := 1
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return imported, fmt.Errorf("read row %d: %w", line, err)
		}
		if blank(record) {
			continue
		}

		row, err := parseRow(record, index)
		if err != nil {
			return imported, fmt.Errorf("row %d: %w", line, err)
		}
		row.line = line

		categoryID, ok := categoryIDs[row.CategorySlug]
		if !ok {
			cat, err := i.categories.Upsert(ctx, domain.Category{Name: row.CategoryName, Slug: row.CategorySlug})
			if err != nil {
				return imported, fmt.Errorf("row %d: upsert category %q: %w", line, row.CategorySlug, err)
			}
			categoryID = cat.ID
			categoryIDs[row.CategorySlug] = categoryID
		}

		if err := i.save(ctx, categoryID, row); err != nil {
			return imported, err
		}
		imported++
	}

	i.logger.Info("catalog imported", zap.Int("products", imported), zap.Int("categories", len(categoryIDs)))
	return imported, nil
}

func (i *CSVImporter) save(ctx context.Context, categoryID string, row *csvRow) error {
	p := domain.Product{
		CategoryID:  categoryID,
		Name:        row.Name,
		Slug:        row.Slug,
		Description: row.Desc,
		Price:       row.Price,
		Available:   row.Available,
	}
	if row.Image != "" && i.images != nil {
		key, err := i.uploadImage(ctx, row)
		if err != nil {
			return fmt.Errorf("row %d: %w", row.line, err)
		}
		p.ImageKey = key
	}

	if _, err := i.products.Upsert(ctx, p); err != nil {
		return fmt.Errorf("row %d: upsert product %q: %w", row.line, row.Slug, err)
	}
	return nil
}

func (i *CSVImporter) uploadImage(ctx context.Context, row *csvRow) (string, error) {
	f, err := i.imageFS.Open(row.Image)
	if err != nil {
		return "", fmt.Errorf("open image %s: %w", row.Image, err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat image %s: %w", row.Image, err)
	}

	ext := strings.ToLower(path.Ext(row.Image))
	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	key := "products/" + row.CategorySlug + "/" + row.Slug + ext
	if err := i.images.Upload(ctx, key, f, info.Size(), contentType); err != nil {
		return "", err
	}
	return key, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int) (*csvRow, error) {
	row := &csvRow{
		CategorySlug: pick(record, index, "category_slug"),
		CategoryName: pick(record, index, "category_name"),
		Slug:         pick(record, index, "slug"),
		Name:         pick(record, index, "name"),
		Desc:         pick(record, index, "description"),
		Image:        pick(record, index, "image"),
		Available:    true,
	}
	if row.CategorySlug == "" || row.Slug == "" || row.Name == "" {
		return nil, errors.New("category_slug, slug and name are required")
	}
	if row.CategoryName == "" {
		row.CategoryName = row.CategorySlug
	}

	price, err := decimal.NewFromString(pick(record, index, "price"))
	if err != nil {
		return nil, fmt.Errorf("invalid price for %q: %w", row.Slug, err)
	}
	if !price.IsPositive() {
		return nil, fmt.Errorf("price for %q must be positive", row.Slug)
	}
	row.Price = price.Round(2)

	if v := pick(record, index, "available"); v != "" {
		available, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid available flag for %q: %w", row.Slug, err)
		}
		row.Available = available
	}
	return row, nil
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
