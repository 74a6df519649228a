package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/c14220110/mediflow-backend/internal/access"
	"github.com/c14220110/mediflow-backend/internal/backup/models"
	"github.com/c14220110/mediflow-backend/internal/common/errs"
	"github.com/c14220110/mediflow-backend/internal/session"
)

// BackupService mengekspor seluruh state dan memulihkannya dalam dua tahap:
// PreviewRestore memvalidasi tanpa mengubah apa pun, CommitRestore mengganti state.
type BackupService struct {
	Session *session.Session
	Log     zerolog.Logger
	Now     func() time.Time
}

func NewBackupService(sess *session.Session, log zerolog.Logger) *BackupService {
	return &BackupService{Session: sess, Log: log, Now: func() time.Time { return time.Now().UTC() }}
}

func (s *BackupService) Export(who access.Identity) (models.Document, error) {
	if err := access.Authorize(who, access.ManageSettings); err != nil {
		return models.Document{}, err
	}
	st := s.Session.Snapshot()
	return models.Document{
		Date:            s.Now(),
		Patients:        st.Visits,
		Doctors:         st.Doctors,
		Procedures:      st.Procedures,
		PatientDatabase: st.PatientDatabase,
		Products:        st.Products,
		Suppliers:       st.Suppliers,
		Sales:           st.Sales,
	}, nil
}

func (s *BackupService) PreviewRestore(who access.Identity, raw []byte) (models.RestorePreview, error) {
	if err := access.Authorize(who, access.ManageSettings); err != nil {
		return models.RestorePreview{}, err
	}
	doc, hasDate, err := ParseDocument(raw)
	if err != nil {
		return models.RestorePreview{}, err
	}
	return preview(doc, hasDate), nil
}

// CommitRestore mengganti seluruh state. Dokumen yang tidak valid tidak mengubah
// apa pun; kegagalan simpan setelah penggantian dilaporkan sebagai PersistenceError.
func (s *BackupService) CommitRestore(ctx context.Context, who access.Identity, raw []byte) (models.RestorePreview, error) {
	if err := access.Authorize(who, access.ManageSettings); err != nil {
		return models.RestorePreview{}, err
	}
	doc, hasDate, err := ParseDocument(raw)
	if err != nil {
		return models.RestorePreview{}, err
	}

	err = s.Session.Replace(ctx, session.State{
		Visits:          doc.Patients,
		Doctors:         doc.Doctors,
		Procedures:      doc.Procedures,
		PatientDatabase: doc.PatientDatabase,
		Products:        doc.Products,
		Suppliers:       doc.Suppliers,
		Sales:           doc.Sales,
	})
	p := preview(doc, hasDate)
	if err == nil || errs.IsPersistence(err) {
		p.Committed = true
		s.Log.Info().
			Int("visits", p.Visits).
			Int("doctors", p.Doctors).
			Int("patients", p.PatientDatabase).
			Msg("backup restored")
	}
	return p, err
}

// ParseDocument memvalidasi bentuk dokumen: harus objek JSON, field yang ada
// harus array (null dianggap kosong), field yang tidak ada dianggap kosong.
func ParseDocument(raw []byte) (models.Document, bool, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return models.Document{}, false, &errs.RestoreFormatError{Message: "document is not a JSON object"}
	}

	var doc models.Document
	targets := []struct {
		name string
		dst  any
	}{
		{"patients", &doc.Patients},
		{"doctors", &doc.Doctors},
		{"procedures", &doc.Procedures},
		{"patientDatabase", &doc.PatientDatabase},
		{"products", &doc.Products},
		{"suppliers", &doc.Suppliers},
		{"sales", &doc.Sales},
	}
	for _, t := range targets {
		value, ok := fields[t.name]
		if !ok || isNull(value) {
			continue
		}
		if !isArray(value) {
			return models.Document{}, false, &errs.RestoreFormatError{Field: t.name, Message: "must be an array"}
		}
		if err := json.Unmarshal(value, t.dst); err != nil {
			return models.Document{}, false, &errs.RestoreFormatError{Field: t.name, Message: "has malformed entries: " + err.Error()}
		}
	}

	for i, v := range doc.Patients {
		if !v.Status.Valid() {
			return models.Document{}, false, &errs.RestoreFormatError{
				Field:   fmt.Sprintf("patients[%d].status", i),
				Message: fmt.Sprintf("has unknown value %q", v.Status),
			}
		}
	}

	hasDate := false
	if value, ok := fields["date"]; ok && !isNull(value) {
		if err := json.Unmarshal(value, &doc.Date); err == nil {
			hasDate = true
		}
	}
	return doc, hasDate, nil
}

func preview(doc models.Document, hasDate bool) models.RestorePreview {
	p := models.RestorePreview{
		Visits:          len(doc.Patients),
		Doctors:         len(doc.Doctors),
		Procedures:      len(doc.Procedures),
		PatientDatabase: len(doc.PatientDatabase),
		Products:        len(doc.Products),
		Suppliers:       len(doc.Suppliers),
		Sales:           len(doc.Sales),
	}
	if hasDate {
		d := doc.Date
		p.Date = &d
	}
	return p
}

func firstByte(raw json.RawMessage) byte {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		}
		return b
	}
	return 0
}

func isArray(raw json.RawMessage) bool { return firstByte(raw) == '[' }

func isNull(raw json.RawMessage) bool { return firstByte(raw) == 'n' }
