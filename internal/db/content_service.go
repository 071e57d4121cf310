package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/folio-site/folio/internal/models"
)

// defaultHomeSections fill the landing page until the owner writes their own
var defaultHomeSections = []models.HomeSection{
	{
		Title:   "Data and Machine Learning",
		Icon:    "fa-solid fa-brain",
		Content: "I enjoy working across data systems and machine learning: designing pipelines, shaping datasets, and building ML features that are useful and elegant.",
	},
	{
		Title:   "Crafting Beautiful Systems",
		Icon:    "fa-solid fa-code",
		Content: "I care about developer experience, clarity, and performance, because great products feel great to use.",
	},
	{
		Title:   "Shipped and Learning",
		Icon:    "fa-solid fa-robot",
		Content: "Always shipping, always learning: exploring modern ML, LLMs, automation, and the tooling that makes teams faster.",
	},
}

// ListHomeSections returns the enabled sections in display order
func (s *Store) ListHomeSections(ctx context.Context) ([]models.HomeSection, error) {
	var sections []models.HomeSection
	err := s.conn(ctx).
		Where("enabled = ?", true).
		Order("position ASC, id ASC").
		Find(&sections).Error
	if err != nil {
		return nil, err
	}
	return sections, nil
}

// ReplaceHomeSections swaps the whole set of sections atomically. Positions
// follow slice order. On any failure the previous sections are kept.
func (s *Store) ReplaceHomeSections(ctx context.Context, sections []models.HomeSection) ([]models.HomeSection, error) {
	replaced := make([]models.HomeSection, 0, len(sections))

	err := s.Transaction(ctx, func(tx *Store) error {
		if err := tx.conn(ctx).Where("1 = 1").Delete(&models.HomeSection{}).Error; err != nil {
			return err
		}
		for i, section := range sections {
			if strings.TrimSpace(section.Content) == "" {
				return fmt.Errorf("section %d: content is required", i+1)
			}
			section.ID = 0
			section.Position = i
			if err := tx.conn(ctx).Create(&section).Error; err != nil {
				return err
			}
			replaced = append(replaced, section)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return replaced, nil
}

func (s *Store) seedHomeSections(ctx context.Context) error {
	var count int64
	if err := s.conn(ctx).Model(&models.HomeSection{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	sections := make([]models.HomeSection, len(defaultHomeSections))
	for i, section := range defaultHomeSections {
		section.Position = i
		section.Enabled = true
		sections[i] = section
	}
	return s.conn(ctx).Create(&sections).Error
}

// ListProjects returns portfolio projects, newest first
func (s *Store) ListProjects(ctx context.Context) ([]models.Project, error) {
	var projects []models.Project
	if err := s.conn(ctx).Order("id DESC").Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// GetProject retrieves a project by ID
func (s *Store) GetProject(ctx context.Context, id uint) (*models.Project, error) {
	var project models.Project
	if err := s.conn(ctx).First(&project, id).Error; err != nil {
		return nil, notFound(err, "project #%d", id)
	}
	return &project, nil
}

// CreateProject inserts a project
func (s *Store) CreateProject(ctx context.Context, project *models.Project) error {
	return s.conn(ctx).Create(project).Error
}

// UpdateProject overwrites every field of an existing project
func (s *Store) UpdateProject(ctx context.Context, project *models.Project) error {
	existing, err := s.GetProject(ctx, project.ID)
	if err != nil {
		return err
	}
	project.CreatedAt = existing.CreatedAt
	return s.conn(ctx).Save(project).Error
}
