package models

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type Property struct {
	ID     uint `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID uint `gorm:"not null;index" json:"user_id"`

	// 基本情報
	Name         string `gorm:"type:varchar(255);not null" json:"name"`
	Address      string `gorm:"type:varchar(500);not null" json:"address"`
	Neighborhood string `gorm:"type:varchar(255)" json:"neighborhood"`
	City         string `gorm:"type:varchar(255);not null;index" json:"city"`
	State        string `gorm:"type:varchar(2)" json:"state"`
	ZipCode      string `gorm:"type:varchar(10)" json:"zip_code"`

	// フィルタ用属性
	Type          PropertyType    `gorm:"type:varchar(20);not null;index" json:"type"`
	Area          decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"area"`
	Bedrooms      int             `gorm:"not null;default:0" json:"bedrooms"`
	Bathrooms     int             `gorm:"not null;default:0" json:"bathrooms"`
	ParkingSpaces int             `gorm:"not null;default:0" json:"parking_spaces"`
	Rent          decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"rent"`

	Status        PropertyStatus `gorm:"type:varchar(20);not null;default:'vacant';index" json:"status"`
	Description   string         `gorm:"type:text" json:"description,omitempty"`
	Images        pq.StringArray `gorm:"type:text" json:"images"`
	IsResidential bool           `gorm:"not null" json:"is_residential"`
	TenantID      *uint          `gorm:"index" json:"tenant_id,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// PropertyType は物件の種別
type PropertyType string

const (
	PropertyTypeApartment  PropertyType = "apartment"
	PropertyTypeHouse      PropertyType = "house"
	PropertyTypeCommercial PropertyType = "commercial"
	PropertyTypeStudio     PropertyType = "studio"
)

// PropertyStatus は物件のステータス
type PropertyStatus string

const (
	PropertyStatusVacant      PropertyStatus = "vacant"
	PropertyStatusOccupied    PropertyStatus = "occupied"
	PropertyStatusMaintenance PropertyStatus = "maintenance"
	PropertyStatusInactive    PropertyStatus = "inactive"
)

// TableName はテーブル名を明示的に指定
func (Property) TableName() string {
	return "properties"
}

// AddImage appends an image URL
func (p *Property) AddImage(url string) {
	p.Images = append(p.Images, url)
}
