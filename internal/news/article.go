package news

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNotFound      = errors.New("news not found")
	ErrDuplicateLink = errors.New("article with this original link already exists")
)

type Category string

const (
	CategoryPolitics      Category = "politics"
	CategoryTechnology    Category = "technology"
	CategorySports        Category = "sports"
	CategoryEntertainment Category = "entertainment"
	CategoryBusiness      Category = "business"
	CategoryHealth        Category = "health"
	CategoryScience       Category = "science"
	CategoryGeneral       Category = "general"
	CategoryTop           Category = "top"
)

var categories = map[Category]struct{}{
	CategoryPolitics:      {},
	CategoryTechnology:    {},
	CategorySports:        {},
	CategoryEntertainment: {},
	CategoryBusiness:      {},
	CategoryHealth:        {},
	CategoryScience:       {},
	CategoryGeneral:       {},
	CategoryTop:           {},
}

// ParseCategory normalizes s. Empty input maps to CategoryGeneral.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if c == "" {
		return CategoryGeneral, nil
	}
	if _, ok := categories[c]; !ok {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

const (
	LanguageEnglish = "english"
	LanguageTelugu  = "telugu"
)

// Article is a published bilingual news item. SourceLanguage names the side
// the operator wrote; the other side is machine translated.
type Article struct {
	ID               int64     `json:"id"`
	EnglishTitle     string    `json:"englishTitle"`
	EnglishContent   string    `json:"englishContent"`
	EnglishTags      []string  `json:"englishTags"`
	TeluguTitle      string    `json:"teluguTitle"`
	TeluguContent    string    `json:"teluguContent"`
	TeluguTags       []string  `json:"teluguTags"`
	OriginalLink     string    `json:"originalLink,omitempty"`
	ImageURL         string    `json:"imageUrl,omitempty"`
	Source           string    `json:"source,omitempty"`
	Category         Category  `json:"category"`
	SourceLanguage   string    `json:"sourceLanguage"`
	IsAutoTranslated bool      `json:"isAutoTranslated"`
	NeedsTranslation bool      `json:"needsTranslation"`
	IsPublished      bool      `json:"isPublished"`
	Views            int       `json:"views"`
	PublishedAt      time.Time `json:"publishedAt"`
	CreatedAt        time.Time `json:"createdAt"`
}

// ValidationError lists the fields of an article that failed validation.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid article: %s", strings.Join(e.Fields, ", "))
}

// Normalize trims text fields and tags and fills the default category.
// It does not validate.
func (a *Article) Normalize() {
	a.EnglishTitle = strings.TrimSpace(a.EnglishTitle)
	a.EnglishContent = strings.TrimSpace(a.EnglishContent)
	a.TeluguTitle = strings.TrimSpace(a.TeluguTitle)
	a.TeluguContent = strings.TrimSpace(a.TeluguContent)
	a.OriginalLink = strings.TrimSpace(a.OriginalLink)
	a.ImageURL = strings.TrimSpace(a.ImageURL)
	a.Source = strings.TrimSpace(a.Source)
	a.EnglishTags = normalizeTags(a.EnglishTags)
	a.TeluguTags = normalizeTags(a.TeluguTags)
	a.SourceLanguage = strings.ToLower(strings.TrimSpace(a.SourceLanguage))
	if a.SourceLanguage == "" {
		a.SourceLanguage = LanguageEnglish
	}
	if a.Category == "" {
		a.Category = CategoryGeneral
	} else {
		a.Category = Category(strings.ToLower(strings.TrimSpace(string(a.Category))))
	}
}

// Validate checks that both languages carry a title and content and that
// the category is known.
func (a *Article) Validate() error {
	var fields []string
	if strings.TrimSpace(a.EnglishTitle) == "" {
		fields = append(fields, "englishTitle")
	}
	if strings.TrimSpace(a.EnglishContent) == "" {
		fields = append(fields, "englishContent")
	}
	if strings.TrimSpace(a.TeluguTitle) == "" {
		fields = append(fields, "teluguTitle")
	}
	if strings.TrimSpace(a.TeluguContent) == "" {
		fields = append(fields, "teluguContent")
	}
	if _, ok := categories[a.Category]; !ok {
		fields = append(fields, "category")
	}
	if a.SourceLanguage != LanguageEnglish && a.SourceLanguage != LanguageTelugu {
		fields = append(fields, "sourceLanguage")
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func normalizeTags(tags []string) []string {
	ret := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		ret = append(ret, tag)
	}
	return ret
}

type ListOptions struct {
	Limit    int
	Offset   int
	Category Category
	// IncludeUnpublished lists drafts too.
	IncludeUnpublished bool
}

// TranslationUpdate replaces the machine-translated side of an article.
type TranslationUpdate struct {
	EnglishTitle     string
	EnglishContent   string
	EnglishTags      []string
	TeluguTitle      string
	TeluguContent    string
	TeluguTags       []string
	NeedsTranslation bool
}

// Store is the article persistence contract.
type Store interface {
	CreateArticle(ctx context.Context, a *Article) error
	GetArticle(ctx context.Context, id int64) (*Article, error)
	ListArticles(ctx context.Context, opts ListOptions) ([]*Article, error)
	IncrementViews(ctx context.Context, id int64) error
	ListArticlesNeedingTranslation(ctx context.Context, limit int) ([]*Article, error)
	UpdateArticleTranslation(ctx context.Context, id int64, update TranslationUpdate) error
}
