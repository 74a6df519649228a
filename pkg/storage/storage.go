package storage

import (
	"context"
	"errors"
)

// Store adalah kolaborator persistensi key-value. Setiap key menyimpan satu
// koleksi entitas dalam bentuk JSON.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, payload []byte) error
	Close() error
}

// ErrNotFound dikembalikan Load jika key belum pernah disimpan.
var ErrNotFound = errors.New("storage: key not found")

const (
	KeyDoctors         = "mediflow_doctors"
	KeyProcedures      = "mediflow_procedures"
	KeyPatientDatabase = "mediflow_patient_db"
	KeyVisits          = "mediflow_patients"
	KeyProducts        = "mediflow_products"
	KeySuppliers       = "mediflow_suppliers"
	KeySales           = "mediflow_sales"
)

// Keys mengembalikan semua key yang dipakai aplikasi, dalam urutan load.
func Keys() []string {
	return []string{
		KeyDoctors,
		KeyProcedures,
		KeyPatientDatabase,
		KeyVisits,
		KeyProducts,
		KeySuppliers,
		KeySales,
	}
}
