package importer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/doispes-dev/doispes/internal/model"
)

// Parser converts a ledger spreadsheet into classified items.
type Parser interface {
	Parse(r io.Reader) (*Result, error)
	Format() string
	Extensions() []string
}

// Result is the outcome of a successful parse.
type Result struct {
	Items []model.LedgerItem
	Stats Stats
}

// Stats describes what the classifier absorbed while parsing. It is informational only.
type Stats struct {
	Rows                 int // rows found in the sheet, header included
	HeaderSkipped        bool
	EmptyRows            int // rows without cells
	DroppedRows          int // rows without description or numeric value
	DateFallbacks        int // date present but unparseable
	EntryValueFallbacks  int // entry value present but not numeric
	InstallmentFallbacks int // installment text that degraded to count 1
}

// Skipped returns the number of data rows that produced no item. The header
// row is not counted.
func (s Stats) Skipped() int { return s.EmptyRows + s.DroppedRows }

// Count returns the number of items with classification c.
func (r *Result) Count(c model.Classification) int {
	n := 0
	for _, it := range r.Items {
		if it.Classification == c {
			n++
		}
	}
	return n
}

// Registry holds named parsers.
type Registry struct {
	parsers map[string]Parser
	byExt   map[string]Parser
}

// FileInfo describes an importable file in the import directory.
type FileInfo struct {
	Name   string
	Path   string
	Size   int64
	Format string
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{
		parsers: make(map[string]Parser),
		byExt:   make(map[string]Parser),
	}
}

// Register adds a parser. Panics on duplicate format or extension.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	for _, ext := range p.Extensions() {
		ext = strings.ToLower(ext)
		if _, ok := r.byExt[ext]; ok {
			panic("duplicate parser extension: " + ext)
		}
		r.byExt[ext] = p
	}
	r.parsers[key] = p
}

// Get returns the parser for format, or nil.
func (r *Registry) Get(format string) Parser {
	return r.parsers[strings.ToLower(format)]
}

// ForFile returns the parser registered for the file's extension, or nil.
func (r *Registry) ForFile(name string) Parser {
	return r.byExt[strings.ToLower(filepath.Ext(name))]
}

// Formats returns the registered format names, sorted.
func (r *Registry) Formats() []string {
	names := make([]string, 0, len(r.parsers))
	for name := range r.parsers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry returns a registry with all built-in parsers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&SpreadsheetMLParser{})
	r.Register(&XLSXParser{})
	return r
}

// importDir is the subdirectory for files waiting to be imported.
const importDir = "import"

// processedDir is the subdirectory for imported files.
const processedDir = "import/processed"

// Scan returns the files in <repoRoot>/import/ that a registered parser accepts.
func (r *Registry) Scan(repoRoot string) ([]FileInfo, error) {
	dir := filepath.Join(repoRoot, importDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		p := r.ForFile(e.Name())
		if p == nil {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name:   e.Name(),
			Path:   filepath.Join(dir, e.Name()),
			Size:   info.Size(),
			Format: p.Format(),
		})
	}
	return files, nil
}

// MarkProcessed moves a file from import/ to import/processed/.
func MarkProcessed(repoRoot, fileName string) error {
	src := filepath.Join(repoRoot, importDir, fileName)
	dstDir := filepath.Join(repoRoot, processedDir)

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}

	dst := filepath.Join(dstDir, fileName)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}
