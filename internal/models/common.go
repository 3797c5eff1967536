// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Enums
type UserType string

const (
	UserTypeStudent UserType = "student"
	UserTypeStaff   UserType = "staff"
	UserTypeAdmin   UserType = "admin"
)

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
)

// EducationLevel is the buyer segment eligibility rules are keyed by.
type EducationLevel string

const (
	LevelPreschool  EducationLevel = "preschool"
	LevelElementary EducationLevel = "elementary"
	LevelJuniorHigh EducationLevel = "junior_high"
	LevelSeniorHigh EducationLevel = "senior_high"
	LevelCollege    EducationLevel = "college"
)

// StudentType distinguishes newly enrolled buyers from returning ones.
type StudentType string

const (
	StudentTypeNew StudentType = "new"
	StudentTypeOld StudentType = "old"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderUnisex Gender = "unisex"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusClaimed   OrderStatus = "claimed"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusVoided    OrderStatus = "voided"
)

type OrderKind string

const (
	OrderKindRegular  OrderKind = "regular"
	OrderKindPreOrder OrderKind = "pre_order"
)

// MovementType classifies stock ledger movements for the audit trail.
type MovementType string

const (
	MovementPurchase MovementType = "purchase"
	MovementReturn   MovementType = "return"
	MovementSale     MovementType = "sale"
	MovementRelease  MovementType = "release"
)
