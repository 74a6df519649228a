package access

import (
	"fmt"

	"github.com/c14220110/mediflow-backend/internal/common/errs"
)

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleAssistant Role = "assistant"
	RoleDoctor    Role = "doctor"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleAssistant, RoleDoctor:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Identity adalah hasil autentikasi. ID hanya terisi untuk dokter.
type Identity struct {
	Role Role   `json:"role"`
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// System dipakai oleh perintah CLI yang berjalan dengan hak admin.
func System() Identity {
	return Identity{Role: RoleAdmin, Name: "system"}
}

type Capability int

const (
	AdmitPatient Capability = iota
	AssignConsultation
	FinalizeConsultation
	ViewQueue
	ViewPatients
	ViewDoctors
	CreateDoctor
	EditDoctor
	ViewProcedures
	ManageProcedures
	ViewDashboard
	ViewBilling
	GenerateReport
	ManageSettings
	ViewInventory
	SellProducts
	ManageInventory
)

func (c Capability) String() string {
	switch c {
	case AdmitPatient:
		return "admit patients"
	case AssignConsultation:
		return "assign consultations"
	case FinalizeConsultation:
		return "finalize consultations"
	case ViewQueue:
		return "view the queue"
	case ViewPatients:
		return "view patients"
	case ViewDoctors:
		return "view doctors"
	case CreateDoctor:
		return "create doctors"
	case EditDoctor:
		return "edit doctors"
	case ViewProcedures:
		return "view procedures"
	case ManageProcedures:
		return "manage procedures"
	case ViewDashboard:
		return "view the financial dashboard"
	case ViewBilling:
		return "view billing"
	case GenerateReport:
		return "generate reports"
	case ManageSettings:
		return "manage settings and backups"
	case ViewInventory:
		return "view inventory"
	case SellProducts:
		return "register sales"
	case ManageInventory:
		return "manage inventory"
	}
	return fmt.Sprintf("capability(%d)", int(c))
}

// Can adalah tabel kapabilitas per role. Untuk dokter, beberapa kapabilitas
// masih dibatasi ke data miliknya sendiri oleh pemeriksaan lanjutan.
func Can(role Role, c Capability) bool {
	switch role {
	case RoleAdmin:
		return true
	case RoleAssistant:
		switch c {
		case AdmitPatient, AssignConsultation, FinalizeConsultation, ViewQueue, ViewPatients,
			ViewDoctors, CreateDoctor, ViewProcedures, ManageProcedures, ViewBilling,
			ViewInventory, SellProducts:
			return true
		case EditDoctor, ViewDashboard, GenerateReport, ManageSettings, ManageInventory:
			return false
		}
	case RoleDoctor:
		switch c {
		case AssignConsultation, FinalizeConsultation, ViewQueue, ViewPatients, ViewProcedures,
			ViewDashboard, ViewBilling, GenerateReport:
			return true
		case AdmitPatient, ViewDoctors, CreateDoctor, EditDoctor, ManageProcedures,
			ManageSettings, ViewInventory, SellProducts, ManageInventory:
			return false
		}
	}
	return false
}

func Authorize(who Identity, c Capability) error {
	if !Can(who.Role, c) {
		return &errs.AuthorizationError{Role: string(who.Role), Operation: c.String()}
	}
	return nil
}

// AuthorizeAssign: dokter hanya boleh menugaskan dirinya sendiri.
func AuthorizeAssign(who Identity, doctorID string) error {
	if err := Authorize(who, AssignConsultation); err != nil {
		return err
	}
	if who.Role == RoleDoctor && doctorID != who.ID {
		return &errs.AuthorizationError{Role: string(who.Role), Operation: "assign another doctor"}
	}
	return nil
}

// AuthorizeFinalize: dokter hanya boleh menutup kunjungan yang ditugaskan kepadanya.
func AuthorizeFinalize(who Identity, assignedDoctorID string) error {
	if err := Authorize(who, FinalizeConsultation); err != nil {
		return err
	}
	if who.Role == RoleDoctor && (who.ID == "" || who.ID != assignedDoctorID) {
		return &errs.AuthorizationError{Role: string(who.Role), Operation: "finalize a visit assigned to another doctor"}
	}
	return nil
}

// OwnScope mengembalikan id dokter untuk membatasi data finansial; kosong berarti semua.
func OwnScope(who Identity) string {
	if who.Role == RoleDoctor {
		return who.ID
	}
	return ""
}
