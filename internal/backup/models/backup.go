package models

import (
	"time"

	catalogModels "github.com/c14220110/mediflow-backend/internal/catalog/models"
	inventoryModels "github.com/c14220110/mediflow-backend/internal/inventory/models"
	patientModels "github.com/c14220110/mediflow-backend/internal/patients/models"
	visitModels "github.com/c14220110/mediflow-backend/internal/visits/models"
)

// Document adalah format file backup. Field "patients" berisi ledger kunjungan.
type Document struct {
	Date            time.Time                      `json:"date"`
	Patients        []visitModels.Visit            `json:"patients"`
	Doctors         []catalogModels.Doctor         `json:"doctors"`
	Procedures      []catalogModels.Procedure      `json:"procedures"`
	PatientDatabase []patientModels.PatientProfile `json:"patientDatabase"`
	Products        []inventoryModels.Product      `json:"products"`
	Suppliers       []inventoryModels.Supplier     `json:"suppliers"`
	Sales           []inventoryModels.Sale         `json:"sales"`
}

// RestorePreview diringkas dari dokumen yang lolos validasi, sebelum state diganti.
type RestorePreview struct {
	Date            *time.Time `json:"date,omitempty"`
	Visits          int        `json:"visits"`
	Doctors         int        `json:"doctors"`
	Procedures      int        `json:"procedures"`
	PatientDatabase int        `json:"patientDatabase"`
	Products        int        `json:"products"`
	Suppliers       int        `json:"suppliers"`
	Sales           int        `json:"sales"`
	Committed       bool       `json:"committed"`
}
