package models

import "time"

type Product struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	CostPrice  float64 `json:"costPrice"`
	SellPrice  float64 `json:"sellPrice"`
	Stock      int     `json:"stock"`
	MinStock   int     `json:"minStock"`
	SupplierID string  `json:"supplierId,omitempty"`
}

// LowStock: stok sudah di bawah atau sama dengan batas minimum.
func (p Product) LowStock() bool {
	return p.Stock <= p.MinStock
}

type ProductInput struct {
	Name       string  `json:"name"`
	CostPrice  float64 `json:"costPrice"`
	SellPrice  float64 `json:"sellPrice"`
	Stock      int     `json:"stock"`
	MinStock   *int    `json:"minStock"`
	SupplierID string  `json:"supplierId"`
}

const DefaultMinStock = 5

type Supplier struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Contact string `json:"contact"`
	Phone   string `json:"phone"`
}

type SupplierInput struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
	Phone   string `json:"phone"`
}

type SaleItem struct {
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName"`
	Quantity    int     `json:"quantity"`
	PriceAtSale float64 `json:"priceAtSale"`
}

// Sale adalah penjualan insumo ke seorang dokter.
type Sale struct {
	ID       string     `json:"id"`
	DoctorID string     `json:"doctorId"`
	Date     time.Time  `json:"date"`
	Items    []SaleItem `json:"items"`
	Total    float64    `json:"total"`
}

type CartLine struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type SaleRequest struct {
	DoctorID string     `json:"doctorId"`
	Items    []CartLine `json:"items"`
}

type Summary struct {
	Products       int       `json:"products"`
	InventoryValue float64   `json:"inventoryValue"`
	LowStock       []Product `json:"lowStock"`
}
