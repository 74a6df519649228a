package session

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	billingModels "github.com/c14220110/mediflow-backend/internal/billing/models"
	catalogModels "github.com/c14220110/mediflow-backend/internal/catalog/models"
	"github.com/c14220110/mediflow-backend/internal/common/errs"
	inventoryModels "github.com/c14220110/mediflow-backend/internal/inventory/models"
	patientModels "github.com/c14220110/mediflow-backend/internal/patients/models"
	visitModels "github.com/c14220110/mediflow-backend/internal/visits/models"
	"github.com/c14220110/mediflow-backend/pkg/storage"
)

// State adalah seluruh data aplikasi yang dimiliki satu sesi.
type State struct {
	Visits          []visitModels.Visit
	Doctors         []catalogModels.Doctor
	Procedures      []catalogModels.Procedure
	PatientDatabase []patientModels.PatientProfile
	Products        []inventoryModels.Product
	Suppliers       []inventoryModels.Supplier
	Sales           []inventoryModels.Sale

	// Drafts menyimpan pembayaran sementara per visitId selama konsultasi.
	// Tidak dipersist.
	Drafts map[string][]billingModels.PaymentRecord
}

// Session adalah satu-satunya otoritas in-memory. Setiap mutasi yang berhasil
// langsung disimpan ke store untuk key yang disentuhnya.
type Session struct {
	mu    sync.RWMutex
	state State
	store storage.Store
	log   zerolog.Logger
}

// Open memuat semua koleksi dari store. Payload yang rusak atau gagal dibaca
// diganti koleksi kosong agar aplikasi tetap bisa berjalan.
func Open(ctx context.Context, store storage.Store, log zerolog.Logger) *Session {
	s := &Session{store: store, log: log}
	s.state = emptyState()
	for _, key := range storage.Keys() {
		payload, err := store.Load(ctx, key)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			log.Warn().Err(&errs.PersistenceError{Op: "load", Key: key, Err: err}).Msg("starting with an empty collection")
			continue
		}
		if err := s.state.decode(key, payload); err != nil {
			log.Warn().Str("key", key).Err(err).Msg("malformed stored payload, starting with an empty collection")
		}
	}
	log.Info().
		Int("visits", len(s.state.Visits)).
		Int("doctors", len(s.state.Doctors)).
		Int("patients", len(s.state.PatientDatabase)).
		Msg("session state loaded")
	return s
}

// Read menjalankan fn dengan read lock. fn tidak boleh mengubah state.
func (s *Session) Read(fn func(st *State)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(&s.state)
}

// Mutate menjalankan fn dengan write lock lalu menyimpan key yang disebutkan.
// fn wajib memvalidasi sebelum mengubah state; jika fn mengembalikan error,
// state dianggap tidak berubah dan tidak ada yang disimpan. Kegagalan simpan
// dikembalikan sebagai *errs.PersistenceError setelah mutasi tetap berlaku.
func (s *Session) Mutate(ctx context.Context, fn func(st *State) error, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fn(&s.state); err != nil {
		return err
	}
	return s.persist(ctx, keys)
}

// Snapshot mengembalikan salinan state untuk export.
func (s *Session) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Replace mengganti seluruh state (restore) lalu menyimpan semua key.
func (s *Session) Replace(ctx context.Context, st State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st.normalize()
	st.Drafts = make(map[string][]billingModels.PaymentRecord)
	s.state = st
	return s.persist(ctx, storage.Keys())
}

func (s *Session) persist(ctx context.Context, keys []string) error {
	var first error
	for _, key := range keys {
		payload, err := s.state.encode(key)
		if err == nil {
			err = s.store.Save(ctx, key, payload)
		}
		if err != nil {
			pe := &errs.PersistenceError{Op: "save", Key: key, Err: err}
			s.log.Error().Err(pe).Msg("change kept in memory only")
			if first == nil {
				first = pe
			}
		}
	}
	return first
}

func emptyState() State {
	st := State{}
	st.normalize()
	st.Drafts = make(map[string][]billingModels.PaymentRecord)
	return st
}

// normalize mengganti slice nil dengan slice kosong agar tersimpan sebagai [].
func (st *State) normalize() {
	if st.Visits == nil {
		st.Visits = []visitModels.Visit{}
	}
	if st.Doctors == nil {
		st.Doctors = []catalogModels.Doctor{}
	}
	if st.Procedures == nil {
		st.Procedures = []catalogModels.Procedure{}
	}
	if st.PatientDatabase == nil {
		st.PatientDatabase = []patientModels.PatientProfile{}
	}
	if st.Products == nil {
		st.Products = []inventoryModels.Product{}
	}
	if st.Suppliers == nil {
		st.Suppliers = []inventoryModels.Supplier{}
	}
	if st.Sales == nil {
		st.Sales = []inventoryModels.Sale{}
	}
}

func (st *State) clone() State {
	out := State{
		Visits:          make([]visitModels.Visit, len(st.Visits)),
		Doctors:         append([]catalogModels.Doctor{}, st.Doctors...),
		Procedures:      append([]catalogModels.Procedure{}, st.Procedures...),
		PatientDatabase: append([]patientModels.PatientProfile{}, st.PatientDatabase...),
		Products:        append([]inventoryModels.Product{}, st.Products...),
		Suppliers:       append([]inventoryModels.Supplier{}, st.Suppliers...),
		Sales:           make([]inventoryModels.Sale, len(st.Sales)),
	}
	for i, v := range st.Visits {
		out.Visits[i] = v.Clone()
	}
	for i, sale := range st.Sales {
		sale.Items = slices.Clone(sale.Items)
		out.Sales[i] = sale
	}
	return out
}

func (st *State) encode(key string) ([]byte, error) {
	switch key {
	case storage.KeyDoctors:
		return json.Marshal(st.Doctors)
	case storage.KeyProcedures:
		return json.Marshal(st.Procedures)
	case storage.KeyPatientDatabase:
		return json.Marshal(st.PatientDatabase)
	case storage.KeyVisits:
		return json.Marshal(st.Visits)
	case storage.KeyProducts:
		return json.Marshal(st.Products)
	case storage.KeySuppliers:
		return json.Marshal(st.Suppliers)
	case storage.KeySales:
		return json.Marshal(st.Sales)
	}
	return nil, errors.New("unknown storage key")
}

// decode hanya mengganti koleksi jika payload valid.
func (st *State) decode(key string, payload []byte) error {
	switch key {
	case storage.KeyDoctors:
		return decodeInto(payload, &st.Doctors)
	case storage.KeyProcedures:
		return decodeInto(payload, &st.Procedures)
	case storage.KeyPatientDatabase:
		return decodeInto(payload, &st.PatientDatabase)
	case storage.KeyVisits:
		return decodeInto(payload, &st.Visits)
	case storage.KeyProducts:
		return decodeInto(payload, &st.Products)
	case storage.KeySuppliers:
		return decodeInto(payload, &st.Suppliers)
	case storage.KeySales:
		return decodeInto(payload, &st.Sales)
	}
	return errors.New("unknown storage key")
}

func decodeInto[T any](payload []byte, dst *[]T) error {
	var items []T
	if err := json.Unmarshal(payload, &items); err != nil {
		return err
	}
	if items == nil {
		items = []T{}
	}
	*dst = items
	return nil
}
