package services

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/c14220110/mediflow-backend/internal/access"
	billingServices "github.com/c14220110/mediflow-backend/internal/billing/services"
	catalogModels "github.com/c14220110/mediflow-backend/internal/catalog/models"
	"github.com/c14220110/mediflow-backend/internal/common/errs"
	"github.com/c14220110/mediflow-backend/internal/inventory/models"
	"github.com/c14220110/mediflow-backend/internal/session"
	"github.com/c14220110/mediflow-backend/pkg/storage"
)

// InventoryService mengelola insumo, pemasok, dan penjualan insumo ke dokter.
type InventoryService struct {
	Session *session.Session
	Now     func() time.Time
}

func NewInventoryService(sess *session.Session) *InventoryService {
	return &InventoryService{Session: sess, Now: func() time.Time { return time.Now().UTC() }}
}

// ListProducts: asisten tidak melihat harga modal.
func (s *InventoryService) ListProducts(who access.Identity) ([]models.Product, error) {
	if err := access.Authorize(who, access.ViewInventory); err != nil {
		return nil, err
	}
	hideCost := !access.Can(who.Role, access.ManageInventory)
	out := []models.Product{}
	s.Session.Read(func(st *session.State) {
		for _, p := range st.Products {
			if hideCost {
				p.CostPrice = 0
			}
			out = append(out, p)
		}
	})
	return out, nil
}

func (s *InventoryService) AddProduct(ctx context.Context, who access.Identity, in models.ProductInput) (models.Product, error) {
	if err := access.Authorize(who, access.ManageInventory); err != nil {
		return models.Product{}, err
	}
	p := models.Product{ID: uuid.NewString(), MinStock: models.DefaultMinStock}
	if err := applyProductInput(&p, in); err != nil {
		return models.Product{}, err
	}
	err := s.Session.Mutate(ctx, func(st *session.State) error {
		if err := supplierExists(st, p.SupplierID); err != nil {
			return err
		}
		st.Products = append(st.Products, p)
		return nil
	}, storage.KeyProducts)
	return p, err
}

// UpdateProduct mengganti semua field kecuali ID. MinStock nil mempertahankan nilai lama.
func (s *InventoryService) UpdateProduct(ctx context.Context, who access.Identity, id string, in models.ProductInput) (models.Product, error) {
	if err := access.Authorize(who, access.ManageInventory); err != nil {
		return models.Product{}, err
	}
	var updated models.Product
	err := s.Session.Mutate(ctx, func(st *session.State) error {
		idx := slices.IndexFunc(st.Products, func(p models.Product) bool { return p.ID == id })
		if idx < 0 {
			return errs.NotFound("product", id)
		}
		p := st.Products[idx]
		if err := applyProductInput(&p, in); err != nil {
			return err
		}
		if err := supplierExists(st, p.SupplierID); err != nil {
			return err
		}
		st.Products[idx] = p
		updated = p
		return nil
	}, storage.KeyProducts)
	return updated, err
}

func (s *InventoryService) DeleteProduct(ctx context.Context, who access.Identity, id string) error {
	if err := access.Authorize(who, access.ManageInventory); err != nil {
		return err
	}
	return s.Session.Mutate(ctx, func(st *session.State) error {
		idx := slices.IndexFunc(st.Products, func(p models.Product) bool { return p.ID == id })
		if idx < 0 {
			return errs.NotFound("product", id)
		}
		st.Products = slices.Delete(st.Products, idx, idx+1)
		return nil
	}, storage.KeyProducts)
}

func applyProductInput(p *models.Product, in models.ProductInput) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return errs.Validation("name", "is required")
	}
	if err := billingServices.ValidateAmount("costPrice", in.CostPrice); err != nil {
		return err
	}
	if err := billingServices.ValidateAmount("sellPrice", in.SellPrice); err != nil {
		return err
	}
	if in.Stock < 0 {
		return errs.Validation("stock", "must not be negative")
	}
	if in.MinStock != nil {
		if *in.MinStock < 0 {
			return errs.Validation("minStock", "must not be negative")
		}
		p.MinStock = *in.MinStock
	}
	p.Name = name
	p.CostPrice = in.CostPrice
	p.SellPrice = in.SellPrice
	p.Stock = in.Stock
	p.SupplierID = strings.TrimSpace(in.SupplierID)
	return nil
}

func supplierExists(st *session.State, id string) error {
	if id == "" {
		return nil
	}
	if !slices.ContainsFunc(st.Suppliers, func(s models.Supplier) bool { return s.ID == id }) {
		return errs.NotFound("supplier", id)
	}
	return nil
}

// ---- Pemasok ---------------------------------------------------------------

func (s *InventoryService) ListSuppliers(who access.Identity) ([]models.Supplier, error) {
	if err := access.Authorize(who, access.ViewInventory); err != nil {
		return nil, err
	}
	var out []models.Supplier
	s.Session.Read(func(st *session.State) {
		out = append([]models.Supplier{}, st.Suppliers...)
	})
	return out, nil
}

func (s *InventoryService) AddSupplier(ctx context.Context, who access.Identity, in models.SupplierInput) (models.Supplier, error) {
	if err := access.Authorize(who, access.ManageInventory); err != nil {
		return models.Supplier{}, err
	}
	sup := models.Supplier{
		ID:      uuid.NewString(),
		Name:    strings.TrimSpace(in.Name),
		Contact: strings.TrimSpace(in.Contact),
		Phone:   strings.TrimSpace(in.Phone),
	}
	if sup.Name == "" {
		return models.Supplier{}, errs.Validation("name", "is required")
	}
	err := s.Session.Mutate(ctx, func(st *session.State) error {
		st.Suppliers = append(st.Suppliers, sup)
		return nil
	}, storage.KeySuppliers)
	return sup, err
}

// DeleteSupplier juga melepas referensi pemasok dari produk.
func (s *InventoryService) DeleteSupplier(ctx context.Context, who access.Identity, id string) error {
	if err := access.Authorize(who, access.ManageInventory); err != nil {
		return err
	}
	return s.Session.Mutate(ctx, func(st *session.State) error {
		idx := slices.IndexFunc(st.Suppliers, func(s models.Supplier) bool { return s.ID == id })
		if idx < 0 {
			return errs.NotFound("supplier", id)
		}
		st.Suppliers = slices.Delete(st.Suppliers, idx, idx+1)
		for i := range st.Products {
			if st.Products[i].SupplierID == id {
				st.Products[i].SupplierID = ""
			}
		}
		return nil
	}, storage.KeySuppliers, storage.KeyProducts)
}

// ---- Penjualan -------------------------------------------------------------

// RegisterSale mencatat penjualan dan mengurangi stok secara atomik: semua baris
// divalidasi dulu, baru stok dikurangi.
func (s *InventoryService) RegisterSale(ctx context.Context, who access.Identity, req models.SaleRequest) (models.Sale, error) {
	if err := access.Authorize(who, access.SellProducts); err != nil {
		return models.Sale{}, err
	}
	quantities, order, err := mergeCart(req.Items)
	if err != nil {
		return models.Sale{}, err
	}

	var sale models.Sale
	err = s.Session.Mutate(ctx, func(st *session.State) error {
		if !slices.ContainsFunc(st.Doctors, func(d catalogModels.Doctor) bool { return d.ID == req.DoctorID }) {
			return errs.NotFound("doctor", req.DoctorID)
		}

		index := make(map[string]int, len(st.Products))
		for i, p := range st.Products {
			index[p.ID] = i
		}
		items := make([]models.SaleItem, 0, len(order))
		var total float64
		for _, id := range order {
			i, ok := index[id]
			if !ok {
				return errs.NotFound("product", id)
			}
			p := st.Products[i]
			if quantities[id] > p.Stock {
				return errs.Validation("quantity", "not enough stock for "+p.Name)
			}
			items = append(items, models.SaleItem{
				ProductID:   p.ID,
				ProductName: p.Name,
				Quantity:    quantities[id],
				PriceAtSale: p.SellPrice,
			})
			total += p.SellPrice * float64(quantities[id])
		}

		for _, item := range items {
			st.Products[index[item.ProductID]].Stock -= item.Quantity
		}
		sale = models.Sale{
			ID:       uuid.NewString(),
			DoctorID: req.DoctorID,
			Date:     s.Now(),
			Items:    items,
			Total:    total,
		}
		st.Sales = append(st.Sales, sale)
		return nil
	}, storage.KeyProducts, storage.KeySales)
	return sale, err
}

// ListSales mengembalikan riwayat penjualan, terbaru lebih dulu.
func (s *InventoryService) ListSales(who access.Identity) ([]models.Sale, error) {
	if err := access.Authorize(who, access.ViewInventory); err != nil {
		return nil, err
	}
	out := []models.Sale{}
	s.Session.Read(func(st *session.State) {
		for _, sale := range st.Sales {
			sale.Items = slices.Clone(sale.Items)
			out = append(out, sale)
		}
	})
	slices.SortStableFunc(out, func(a, b models.Sale) int { return b.Date.Compare(a.Date) })
	return out, nil
}

// Summary: nilai inventaris dihitung dari harga modal x stok.
func (s *InventoryService) Summary(who access.Identity) (models.Summary, error) {
	if err := access.Authorize(who, access.ManageInventory); err != nil {
		return models.Summary{}, err
	}
	sum := models.Summary{LowStock: []models.Product{}}
	s.Session.Read(func(st *session.State) {
		sum.Products = len(st.Products)
		for _, p := range st.Products {
			sum.InventoryValue += p.CostPrice * float64(p.Stock)
			if p.LowStock() {
				sum.LowStock = append(sum.LowStock, p)
			}
		}
	})
	return sum, nil
}

// mergeCart menggabungkan baris dengan produk yang sama, urutan kemunculan pertama dipertahankan.
func mergeCart(lines []models.CartLine) (map[string]int, []string, error) {
	if len(lines) == 0 {
		return nil, nil, errs.Validation("items", "cart is empty")
	}
	quantities := make(map[string]int, len(lines))
	var order []string
	for _, l := range lines {
		if l.Quantity <= 0 {
			return nil, nil, errs.Validation("quantity", "must be greater than zero")
		}
		if _, seen := quantities[l.ProductID]; !seen {
			order = append(order, l.ProductID)
		}
		quantities[l.ProductID] += l.Quantity
	}
	return quantities, order, nil
}
