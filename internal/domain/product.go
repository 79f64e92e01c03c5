package domain

import "time"

type Product struct {
	ID            string    `json:"productId"`
	Key           string    `json:"key"`
	CategoryID    string    `json:"categoryId,omitempty"`
	Name          string    `json:"productName"`
	Description   string    `json:"description,omitempty"`
	MainImageURL  string    `json:"mainImageUrl,omitempty"`
	ImageURLs     []string  `json:"imageUrls,omitempty"`
	StockQuantity int       `json:"stockQuantity"`
	IsFeatured    bool      `json:"isFeatured"`
	IsActive      bool      `json:"isActive"`
	ViewCount     int       `json:"viewCount"`
	SoldCount     int       `json:"soldCount"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type Category struct {
	ID          string    `json:"categoryId"`
	Key         string    `json:"key"`
	Name        string    `json:"categoryName"`
	Slug        string    `json:"slug,omitempty"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
}
