package service

import (
	"database/sql"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/folio/internal/db"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"
)

var (
	ErrPageNotFound     = errors.New("page not found")
	ErrSlugConflict     = errors.New("slug already in use")
	ErrInvalidInput     = errors.New("invalid input")
	ErrStoreUnavailable = errors.New("database not available")
)

const errStoreClosedSuffix = "database is closed"

// PageInput holds the editable fields of a page as submitted by an author.
// Slug may be empty, in which case it is derived from Title.
type PageInput struct {
	Title    string
	Content  string
	Slug     string
	Sequence int
}

// PageService provides access to content pages and their pictures.
type PageService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewPageService returns a new PageService instance. A nil handle yields a
// service whose every operation fails with ErrStoreUnavailable.
func NewPageService(gdb *gorm.DB) *PageService {
	return &PageService{db: gdb, now: time.Now}
}

// Available pings the underlying database.
func (s *PageService) Available() error {
	if err := s.ready(); err != nil {
		return err
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return s.wrap(err)
	}
	if err := sqlDB.Ping(); err != nil {
		return s.wrap(err)
	}
	return nil
}

// ListOrdered returns every page ordered for navigation.
func (s *PageService) ListOrdered() ([]db.Page, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	var pages []db.Page
	if err := s.db.Order("sequence asc").Order("id asc").Find(&pages).Error; err != nil {
		return nil, s.wrap(err)
	}
	return pages, nil
}

// GetBySlug fetches a page for a given slug.
func (s *PageService) GetBySlug(slug string) (*db.Page, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	var page db.Page
	if err := s.db.Where("slug = ?", slug).First(&page).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPageNotFound
		}
		return nil, s.wrap(err)
	}
	return &page, nil
}

// GetByID fetches a page by its primary key.
func (s *PageService) GetByID(id uint) (*db.Page, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	var page db.Page
	if err := s.db.First(&page, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPageNotFound
		}
		return nil, s.wrap(err)
	}
	return &page, nil
}

// PicturesForPage returns the gallery of a page in display order.
func (s *PageService) PicturesForPage(pageID uint) ([]db.Picture, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	var pictures []db.Picture
	if err := s.db.Where("page_id = ?", pageID).
		Order("sequence asc").
		Order("id asc").
		Find(&pictures).Error; err != nil {
		return nil, s.wrap(err)
	}
	return pictures, nil
}

// Insert creates a page. A slug held by another page fails with ErrSlugConflict.
func (s *PageService) Insert(input PageInput) (*db.Page, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	normalized, err := input.normalize()
	if err != nil {
		return nil, err
	}

	page := db.Page{
		Title:    normalized.Title,
		Content:  normalized.Content,
		Slug:     normalized.Slug,
		Sequence: normalized.Sequence,
	}
	if err := s.db.Create(&page).Error; err != nil {
		return nil, s.wrap(err)
	}
	return &page, nil
}

// Update rewrites the page stored at slug key whose primary key is id and
// returns the number of rows changed. Zero means no such page.
func (s *PageService) Update(key string, id uint, input PageInput) (int64, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	if id == 0 {
		return 0, fmt.Errorf("%w: page id is required", ErrInvalidInput)
	}
	normalized, err := input.normalize()
	if err != nil {
		return 0, err
	}

	result := s.db.Model(&db.Page{}).
		Where("slug = ? AND id = ?", key, id).
		Updates(map[string]any{
			"title":      normalized.Title,
			"content":    normalized.Content,
			"slug":       normalized.Slug,
			"sequence":   normalized.Sequence,
			"updated_at": s.now(),
		})
	if result.Error != nil {
		return 0, s.wrap(result.Error)
	}
	return result.RowsAffected, nil
}

// Delete removes the page stored at slug key. Missing pages are not an error.
func (s *PageService) Delete(key string) (int64, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}

	var affected int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		// sqlite only honours ON DELETE CASCADE with foreign_keys enabled
		pageIDs := tx.Model(&db.Page{}).Select("id").Where("slug = ?", key)
		if err := tx.Where("page_id IN (?)", pageIDs).Delete(&db.Picture{}).Error; err != nil {
			return err
		}
		result := tx.Where("slug = ?", key).Delete(&db.Page{})
		if result.Error != nil {
			return result.Error
		}
		affected = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, s.wrap(err)
	}
	return affected, nil
}

func (s *PageService) ready() error {
	if s == nil || s.db == nil {
		return ErrStoreUnavailable
	}
	return nil
}

func (s *PageService) wrap(err error) error {
	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err):
		return ErrSlugConflict
	case errors.Is(err, sql.ErrConnDone), strings.HasSuffix(err.Error(), errStoreClosedSuffix):
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	default:
		return fmt.Errorf("page store: %w", err)
	}
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	// sqlite: "UNIQUE constraint failed", mysql: "Error 1062 ... Duplicate entry"
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "Duplicate entry")
}

// ResolveSlug normalizes Slug, falling back to the title when that is empty.
func (in PageInput) ResolveSlug() string {
	if slug := NormalizeSlug(in.Slug); slug != "" {
		return slug
	}
	return NormalizeSlug(in.Title)
}

func (in PageInput) normalize() (PageInput, error) {
	out := PageInput{
		Title:    strings.TrimSpace(in.Title),
		Content:  in.Content,
		Sequence: in.Sequence,
	}
	if out.Title == "" {
		return PageInput{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}

	out.Slug = in.ResolveSlug()
	if out.Slug == "" {
		return PageInput{}, fmt.Errorf("%w: slug is empty after normalization", ErrInvalidInput)
	}
	return out, nil
}

var summaryPolicy = bluemonday.StrictPolicy()

// Summarize reduces page markup to a plain-text description.
func Summarize(content string) string {
	plain := html.UnescapeString(summaryPolicy.Sanitize(content))
	plain = strings.Join(strings.Fields(plain), " ")
	if plain == "" {
		return ""
	}

	const limit = 160
	if utf8.RuneCountInString(plain) <= limit {
		return plain
	}

	runes := []rune(plain)
	return strings.TrimSpace(string(runes[:limit])) + "…"
}
