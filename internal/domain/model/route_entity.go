package model

import (
	"time"
)

// MockRouteEntity é a representação de banco de dados de uma rota mock
type MockRouteEntity struct {
	ID          string    `gorm:"primaryKey;size:36"`
	Seq         int64     `gorm:"not null;index"` // Ordem de inserção, usada no desempate
	Method      string    `gorm:"size:10;not null;index:idx_mock_routes_method_path"`
	Path        string    `gorm:"size:512;not null;index:idx_mock_routes_method_path"`
	Status      int       `gorm:"not null"`
	HeadersJSON string    `gorm:"column:headers;size:1048576"` // mediumtext no MySQL
	BodyKind    int       `gorm:"not null"`
	BodyJSON    string    `gorm:"column:body;size:1048576"` // comporta MaxBodyBytes
	DelayMs     int       `gorm:"not null"`
	Enabled     bool      `gorm:"not null"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime:false"`
	UpdatedAt   time.Time `gorm:"not null;autoUpdateTime:false"` // Atribuído pelo registro, nunca pelo GORM
}

// TableName define o nome da tabela
func (MockRouteEntity) TableName() string {
	return "mock_routes"
}
