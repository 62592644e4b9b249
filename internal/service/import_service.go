package service

import (
	"errors"
	"fmt"

	"github.com/folio/internal/db"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// ContentFile is the YAML document accepted by the page importer.
type ContentFile struct {
	Pages []PageSeed `yaml:"pages"`
}

// PageSeed describes one page with its gallery.
type PageSeed struct {
	Title    string        `yaml:"title"`
	Slug     string        `yaml:"slug"`
	Sequence int           `yaml:"sequence"`
	Content  string        `yaml:"content"`
	Pictures []PictureSeed `yaml:"pictures"`
}

// PictureSeed describes a gallery image by file reference.
type PictureSeed struct {
	Filename string `yaml:"filename"`
	Caption  string `yaml:"caption"`
	Sequence int    `yaml:"sequence"`
}

// ImportResult counts what an import run did.
type ImportResult struct {
	Created  int
	Skipped  int
	Pictures int
}

// ParseContentFile decodes a YAML content file.
func ParseContentFile(data []byte) (ContentFile, error) {
	var file ContentFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return ContentFile{}, fmt.Errorf("parse content file: %w", err)
	}
	return file, nil
}

// Import creates every page of file whose slug is still free, together with
// its pictures. Pages whose slug is taken are skipped, never overwritten.
func (s *PageService) Import(file ContentFile) (ImportResult, error) {
	var result ImportResult
	if err := s.ready(); err != nil {
		return result, err
	}

	for i, seed := range file.Pages {
		err := s.db.Transaction(func(tx *gorm.DB) error {
			pages := &PageService{db: tx, now: s.now}
			page, err := pages.Insert(PageInput{
				Title:    seed.Title,
				Content:  seed.Content,
				Slug:     seed.Slug,
				Sequence: seed.Sequence,
			})
			if err != nil {
				return err
			}

			for _, pic := range seed.Pictures {
				if pic.Filename == "" {
					return fmt.Errorf("%w: picture without filename on page %q", ErrInvalidInput, page.Slug)
				}
				picture := db.Picture{PageID: page.ID, Filename: pic.Filename, Sequence: pic.Sequence}
				if pic.Caption != "" {
					caption := pic.Caption
					picture.Caption = &caption
				}
				if err := tx.Create(&picture).Error; err != nil {
					return s.wrap(err)
				}
				result.Pictures++
			}
			return nil
		})

		switch {
		case err == nil:
			result.Created++
		case errors.Is(err, ErrSlugConflict):
			result.Skipped++
		default:
			return result, fmt.Errorf("page %d (%q): %w", i+1, seed.Title, err)
		}
	}
	return result, nil
}
