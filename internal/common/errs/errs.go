package errs

import (
	"errors"
	"fmt"
)

// ValidationError: field wajib kosong atau input numerik tidak valid.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func Validation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// InvalidTransitionError: operasi diminta dari status kunjungan yang salah.
type InvalidTransitionError struct {
	VisitID   string
	Status    string
	Operation string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s visit %s while it is %s", e.Operation, e.VisitID, e.Status)
}

// ReferenceError: id dokter, prosedur, kunjungan, dsb. tidak ditemukan.
type ReferenceError struct {
	Kind string
	ID   string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func NotFound(kind, id string) error {
	return &ReferenceError{Kind: kind, ID: id}
}

// UnderpaymentError membawa sisa tagihan yang belum tertutup saat finalisasi.
type UnderpaymentError struct {
	Remaining float64
}

func (e *UnderpaymentError) Error() string {
	return fmt.Sprintf("payments do not cover the total cost, remaining %.2f", e.Remaining)
}

type AuthorizationError struct {
	Role      string
	Operation string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("role %s is not allowed to %s", e.Role, e.Operation)
}

// PersistenceError: store gagal load/save. Tidak fatal, state in-memory tetap berlaku.
type PersistenceError struct {
	Op  string
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// RestoreFormatError: dokumen backup tidak lolos validasi bentuk.
type RestoreFormatError struct {
	Field   string
	Message string
}

func (e *RestoreFormatError) Error() string {
	if e.Field == "" {
		return "invalid backup document: " + e.Message
	}
	return fmt.Sprintf("invalid backup document: %s %s", e.Field, e.Message)
}

// IsPersistence melaporkan apakah err hanya kegagalan simpan setelah mutasi berhasil.
func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
