package models

type Game struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	Title    string  `gorm:"not null" json:"title"`
	Genre    string  `json:"genre"`
	Platform string  `json:"platform"`
	Price    float64 `json:"price"`
}
