package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ItemModel discriminates which content collection an item id refers to.
// It is a closed set; behavior keyed on it lives in the tables below rather
// than in string comparisons spread through handlers.
type ItemModel string

const (
	ItemVideo         ItemModel = "video"
	ItemPaper         ItemModel = "paper"
	ItemTute          ItemModel = "tute"
	ItemCoursePackage ItemModel = "course_package"
)

// itemTables maps each model to its content collection.
var itemTables = map[ItemModel]string{
	ItemVideo:         "videos",
	ItemPaper:         "papers",
	ItemTute:          "tutes",
	ItemCoursePackage: "course_packages",
}

// redirectPaths maps each model to the client destination once an order is
// paid. Unrecognized models fall back to the dashboard.
var redirectPaths = map[ItemModel]string{
	ItemVideo:         "/videos/%d/play",
	ItemPaper:         "/papers/%d",
	ItemTute:          "/tutes/%d",
	ItemCoursePackage: "/packages/%d",
}

const defaultRedirectPath = "/dashboard"

func (m ItemModel) Valid() bool {
	_, ok := itemTables[m]
	return ok
}

// Table returns the content collection backing m.
func (m ItemModel) Table() (string, bool) {
	t, ok := itemTables[m]
	return t, ok
}

// RedirectPath resolves the client destination for a paid item.
func (m ItemModel) RedirectPath(itemID uint) string {
	p, ok := redirectPaths[m]
	if !ok {
		return defaultRedirectPath
	}
	return fmt.Sprintf(p, itemID)
}

type Availability string

const (
	// AvailabilityAll items are free for every student.
	AvailabilityAll Availability = "all"
	// AvailabilityPhysical items are free for physically enrolled students.
	AvailabilityPhysical Availability = "physical"
	// AvailabilityPaid items require a PAID order.
	AvailabilityPaid Availability = "paid"
)

type EnrollmentType string

const (
	EnrollmentOnline   EnrollmentType = "online"
	EnrollmentPhysical EnrollmentType = "physical"
)

// User is the identity resolved by the auth middleware. Account management
// is owned by the platform's auth service, not this module.
type User struct {
	ID             uint
	EnrollmentType EnrollmentType
}

// ContentItem is the read-only projection of a content row used by the
// access policy and checkout flow. It is not a table of its own.
type ContentItem struct {
	Model        ItemModel `gorm:"-"`
	ID           uint
	Title        string
	Price        decimal.Decimal
	Availability Availability
}

type Video struct {
	ID           uint   `gorm:"primaryKey"`
	Title        string `gorm:"size:255;not null"`
	Price        decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Availability Availability    `gorm:"size:16;not null"`
}

type Paper struct {
	ID           uint   `gorm:"primaryKey"`
	Title        string `gorm:"size:255;not null"`
	Price        decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Availability Availability    `gorm:"size:16;not null"`
}

type Tute struct {
	ID           uint   `gorm:"primaryKey"`
	Title        string `gorm:"size:255;not null"`
	Price        decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Availability Availability    `gorm:"size:16;not null"`
}

type CoursePackage struct {
	ID           uint   `gorm:"primaryKey"`
	Title        string `gorm:"size:255;not null"`
	Price        decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Availability Availability    `gorm:"size:16;not null"`
}
