package models

import (
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrNoFields = errors.New("no fields to update")

// Repository gives typed create/read/update/delete access to one table.
// Field names passed to Where, AllSorted and Update are column names; gorm quotes them.
type Repository[T any] struct{}

func (Repository[T]) All() ([]T, error) {
	records := []T{}
	err := db.Find(&records).Error
	if err != nil {
		return nil, errors.Wrap(err, "repository all")
	}

	return records, nil
}

func (Repository[T]) ByID(id interface{}) (*T, error) {
	var record T
	err := db.First(&record, "id = ?", id).Error
	if err != nil {
		return nil, err
	}

	return &record, nil
}

// Where returns all records whose field equals value.
func (Repository[T]) Where(field string, value interface{}) ([]T, error) {
	records := []T{}
	err := db.Where(map[string]interface{}{field: value}).Order("id").Find(&records).Error
	if err != nil {
		return nil, errors.Wrapf(err, "repository where %s", field)
	}

	return records, nil
}

func (Repository[T]) AllSorted(field string, desc bool) ([]T, error) {
	records := []T{}
	err := db.Order(clause.OrderByColumn{Column: clause.Column{Name: field}, Desc: desc}).
		Order("id").Find(&records).Error
	if err != nil {
		return nil, errors.Wrapf(err, "repository sorted by %s", field)
	}

	return records, nil
}

func (Repository[T]) Add(record *T) error {
	return db.Create(record).Error
}

// Update applies a partial update and stamps updated_at.
// It returns gorm.ErrRecordNotFound when no row has the given id.
func (Repository[T]) Update(id interface{}, data map[string]interface{}) error {
	if len(data) == 0 {
		return ErrNoFields
	}
	data["updated_at"] = time.Now()

	res := db.Model(new(T)).Where("id = ?", id).Updates(data)
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// Delete removes a single record; dependent records are left untouched.
func (Repository[T]) Delete(id interface{}) error {
	res := db.Where("id = ?", id).Delete(new(T))
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
