package gallery

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed metadata.yaml
var defaultMetadata []byte

const (
	defaultDescription = "Shared by the Bailey family."
	defaultCategory    = "celebration"
	defaultOrder       = 1000
)

var allowedExt = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true}

var separators = regexp.MustCompile(`[-_\s]+`)

type Meta struct {
	Title          string `yaml:"title"`
	Description    string `yaml:"description"`
	Category       string `yaml:"category"`
	ObjectFit      string `yaml:"objectFit"`
	ObjectPosition string `yaml:"objectPosition"`
	Order          *int   `yaml:"order"`
}

type Item struct {
	Src            string `json:"src"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	Category       string `json:"category"`
	ObjectFit      string `json:"objectFit,omitempty"`
	ObjectPosition string `json:"objectPosition,omitempty"`
}

type Gallery struct {
	dir     string
	urlBase string
	meta    map[string]Meta
}

// New lists images found in dir, served under urlBase.
func New(dir, urlBase string) (*Gallery, error) {
	meta, err := ParseMetadata(defaultMetadata)
	if err != nil {
		return nil, err
	}

	return &Gallery{dir: dir, urlBase: strings.TrimSuffix(urlBase, "/"), meta: meta}, nil
}

func ParseMetadata(data []byte) (map[string]Meta, error) {
	meta := make(map[string]Meta)
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("gallery metadata: %w", err)
	}

	return meta, nil
}

func (g *Gallery) Dir() string {
	return g.dir
}

// List returns gallery items ordered by their configured order, then title.
func (g *Gallery) List() ([]Item, error) {
	entries, err := os.ReadDir(g.dir)
	if err != nil {
		return nil, err
	}

	type ordered struct {
		Item
		order int
	}

	items := make([]ordered, 0, len(entries))

	for _, e := range entries {
		if e.IsDir() || !allowedExt[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}

		name := e.Name()
		m := g.meta[name]

		it := ordered{
			Item: Item{
				Src:            g.urlBase + "/" + name,
				Title:          orDefault(m.Title, TitleFromFilename(name)),
				Description:    orDefault(m.Description, defaultDescription),
				Category:       orDefault(m.Category, defaultCategory),
				ObjectFit:      m.ObjectFit,
				ObjectPosition: m.ObjectPosition,
			},
			order: defaultOrder,
		}

		if m.Order != nil {
			it.order = *m.Order
		}

		items = append(items, it)
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].order != items[j].order {
			return items[i].order < items[j].order
		}
		return items[i].Title < items[j].Title
	})

	res := make([]Item, len(items))
	for i, it := range items {
		res[i] = it.Item
	}

	return res, nil
}

// TitleFromFilename turns "garden-walk_2.jpg" into "garden walk 2".
func TitleFromFilename(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	title := strings.TrimSpace(separators.ReplaceAllString(base, " "))

	if title == "" {
		return "Untitled"
	}

	return title
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}

	return s
}
