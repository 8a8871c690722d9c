package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"gopkg.in/yaml.v3"

	"tobewise-cli/internal/model"
	"tobewise-cli/internal/query"
	"tobewise-cli/internal/util"
)

type Export struct {
	engine *query.Engine
}

type Options struct {
	Directory string
	Token     string
	Filter    model.FilterKind
}

type frontMatter struct {
	Author        string   `yaml:"author"`
	Subjects      []string `yaml:"subjects,omitempty"`
	AuthorLink    string   `yaml:"author_link,omitempty"`
	VideoLink     string   `yaml:"video_link,omitempty"`
	ContributedBy string   `yaml:"contributed_by,omitempty"`
	Favorite      bool     `yaml:"favorite"`
	ExportedAt    string   `yaml:"exported_at"`
}

func New(engine *query.Engine) *Export {
	return &Export{engine: engine}
}

// ExportAll writes one markdown file per quotation matching the
// token/filter selection. Per-file failures are reported and skipped.
func (e *Export) ExportAll(opts Options) error {
	quotes, err := e.engine.Shuffled(opts.Token, opts.Filter)
	if err != nil {
		return fmt.Errorf("failed to get quotations: %w", err)
	}

	if len(quotes) == 0 {
		fmt.Println("No quotations found matching criteria.")
		return nil
	}

	if err := os.MkdirAll(opts.Directory, 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	fmt.Printf("Exporting %d quotations...\n", len(quotes))

	var exported int
	for _, quote := range quotes {
		if err := e.exportSingle(quote, opts.Directory); err != nil {
			fmt.Printf("Failed to export quotation %d (%s): %v\n", quote.ID, quote.Author, err)
			continue
		}
		exported++
	}

	fmt.Printf("Export completed: %d quotations\n", exported)
	return nil
}

func (e *Export) exportSingle(quote model.Quotation, dir string) error {
	content, err := buildMarkdown(quote)
	if err != nil {
		return err
	}

	path := filepath.Join(dir, safeFilename(quote))
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

func buildMarkdown(quote model.Quotation) (string, error) {
	fm := frontMatter{
		Author:        quote.Author,
		Subjects:      util.SplitSubjects(quote.Subjects),
		AuthorLink:    quote.AuthorLink,
		VideoLink:     quote.VideoLink,
		ContributedBy: quote.ContributedBy,
		Favorite:      quote.Favorite,
		ExportedAt:    time.Now().UTC().Format(time.RFC3339),
	}

	fmData, err := yaml.Marshal(fm)
	if err != nil {
		return "", fmt.Errorf("failed to marshal front matter: %w", err)
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(fmData)
	b.WriteString("---\n\n")
	b.WriteString("> " + quote.QuoteText + "\n")
	if quote.Author != "" {
		b.WriteString("\n— " + quote.Author + "\n")
	}
	return b.String(), nil
}

func safeFilename(quote model.Quotation) string {
	base := slug.Make(quote.Author + " " + quote.QuoteText)
	if len(base) > 60 {
		base = base[:60]
	}
	if base == "" {
		base = "quotation"
	}
	return base + "-" + strconv.FormatInt(quote.ID, 10) + ".md"
}
