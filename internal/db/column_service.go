package db

import (
	"context"

	"github.com/folio-site/folio/internal/models"
)

// DefaultColumns are seeded into an empty board, left to right
var DefaultColumns = []string{"To Do", "In Progress", "Done"}

// ListColumns returns all columns left to right, ties broken by id
func (s *Store) ListColumns(ctx context.Context) ([]models.Column, error) {
	var columns []models.Column
	if err := s.conn(ctx).Order("position ASC, id ASC").Find(&columns).Error; err != nil {
		return nil, err
	}
	return columns, nil
}

// GetColumn retrieves a column by ID
func (s *Store) GetColumn(ctx context.Context, id uint) (*models.Column, error) {
	var column models.Column
	if err := s.conn(ctx).First(&column, id).Error; err != nil {
		return nil, notFound(err, "column #%d", id)
	}
	return &column, nil
}

// FirstColumn returns the leftmost column, the default home of new tickets
func (s *Store) FirstColumn(ctx context.Context) (*models.Column, error) {
	var column models.Column
	err := s.conn(ctx).Order("position ASC, id ASC").First(&column).Error
	if err != nil {
		return nil, notFound(err, "default column")
	}
	return &column, nil
}

// CreateColumn appends a column to the right of the existing ones
func (s *Store) CreateColumn(ctx context.Context, name string) (*models.Column, error) {
	var maxPos int
	err := s.conn(ctx).Model(&models.Column{}).
		Select("COALESCE(MAX(position), -1)").
		Scan(&maxPos).Error
	if err != nil {
		return nil, err
	}

	column := models.Column{Name: name, Position: maxPos + 1}
	if err := s.conn(ctx).Create(&column).Error; err != nil {
		return nil, err
	}
	return &column, nil
}

// seedColumns inserts DefaultColumns when the board has none
func (s *Store) seedColumns(ctx context.Context) error {
	var count int64
	if err := s.conn(ctx).Model(&models.Column{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	columns := make([]models.Column, 0, len(DefaultColumns))
	for i, name := range DefaultColumns {
		columns = append(columns, models.Column{Name: name, Position: i})
	}
	return s.conn(ctx).Create(&columns).Error
}
