package models

import "time"

// SaleRecord is a single closed or active listing as stored in the
// properties table. Optional fields are pointers so a missing value can be
// told apart from a zero.
type SaleRecord struct {
	ID           int64      `json:"id" gorm:"primaryKey"`
	MLSNumber    string     `json:"mls_number" gorm:"uniqueIndex"`
	Street       string     `json:"street"`
	City         string     `json:"city" gorm:"index"`
	State        string     `json:"state" gorm:"index"`
	PostalCode   string     `json:"postal_code"`
	PropertyType string     `json:"property_type" gorm:"index"`
	Status       string     `json:"status" gorm:"index"`
	ListPrice    *float64   `json:"list_price"`
	ClosePrice   *float64   `json:"close_price"`
	BuildingArea *float64   `json:"building_area"`
	Bedrooms     *int       `json:"bedrooms"`
	Bathrooms    *float64   `json:"bathrooms"`
	YearBuilt    *int       `json:"year_built"`
	DaysOnMarket *int       `json:"days_on_market"`
	ListDate     *time.Time `json:"list_date"`
	ContractDate *time.Time `json:"contract_date"`
	CloseDate    *time.Time `json:"close_date" gorm:"index"`
	Latitude     *float64   `json:"latitude"`
	Longitude    *float64   `json:"longitude"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Listing statuses as they arrive from the feed.
const (
	StatusActive  = "Active"
	StatusPending = "Pending"
	StatusClosed  = "Closed"
)

// Subject identifies the property a CMA is being prepared for.
type Subject struct {
	City         string   `json:"city"`
	State        string   `json:"state"`
	PropertyType string   `json:"property_type"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
}

// ComparableProperty is one adjusted comp backing a CMA estimate.
type ComparableProperty struct {
	AdjustedPrice      float64    `json:"adjusted_price"`
	DistanceMiles      *float64   `json:"distance_miles"`
	ComparabilityGrade string     `json:"comparability_grade"`
	StandardStatus     string     `json:"standard_status"`
	CloseDate          *time.Time `json:"close_date"`
	BuildingArea       *float64   `json:"building_area"`
	Bedrooms           *int       `json:"bedrooms"`
	Bathrooms          *float64   `json:"bathrooms"`
	YearBuilt          *int       `json:"year_built"`
	ListPrice          *float64   `json:"list_price"`
	Latitude           *float64   `json:"latitude"`
	Longitude          *float64   `json:"longitude"`
}
