package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type Base struct {
	ID        int64 `gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type SoftDeleteBase struct {
	Base
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

type Array[T any] []T

func (a *Array[T]) Scan(obj any) error {
	switch t := obj.(type) {
	case string:
		return json.Unmarshal([]byte(t), a)
	case []byte:
		return json.Unmarshal(t, a)
	case nil:
		return nil
	}

	return fmt.Errorf("cannot scan invalid data type %T", obj)
}

func (Array[T]) GormDataType() string {
	return "text"
}

func (a Array[T]) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}

	b, err := json.Marshal(a)
	return string(b), err
}

// JSON stores any value as a JSON column.
type JSON[T any] struct {
	Data T
}

func (j *JSON[T]) Scan(obj any) error {
	switch t := obj.(type) {
	case string:
		return json.Unmarshal([]byte(t), &j.Data)
	case []byte:
		return json.Unmarshal(t, &j.Data)
	case nil:
		return nil
	}

	return fmt.Errorf("cannot scan invalid data type %T", obj)
}

func (JSON[T]) GormDataType() string {
	return "text"
}

func (j JSON[T]) Value() (driver.Value, error) {
	b, err := json.Marshal(j.Data)
	return string(b), err
}
