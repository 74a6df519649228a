package models

// Procedure adalah layanan berbayar yang bisa ditambahkan ke tagihan kunjungan.
// Kunjungan yang selesai menyimpan salinan, bukan referensi.
type Procedure struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type ProcedureInput struct {
	Name  string   `json:"name"`
	Price *float64 `json:"price"`
}
