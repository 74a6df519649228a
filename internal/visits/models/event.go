package models

const (
	EventAdmitted  = "visit.admitted"
	EventAssigned  = "visit.assigned"
	EventCompleted = "visit.completed"

	EventSnapshot = "queue.snapshot"
)

// Event dikirim ke layar antrian setiap kali ledger berubah.
type Event struct {
	Type  string `json:"type"`
	Visit Visit  `json:"visit"`
}

// Snapshot adalah pesan pertama untuk client baru: antrian yang masih aktif.
type Snapshot struct {
	Type   string  `json:"type"`
	Visits []Visit `json:"visits"`
}
