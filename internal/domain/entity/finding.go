package entity

import "time"

// FindingState estado del ciclo de vida de un hallazgo.
type FindingState string

const (
	FindingPending    FindingState = "pendiente"
	FindingInProgress FindingState = "en_proceso"
	FindingClosed     FindingState = "cerrado"
)

// Finding hallazgo de inspección. El núcleo de autorización solo lee dueño, zona y estado.
type Finding struct {
	ID             string
	CompanyID      int64
	OwnerUserID    int64 // usuario_id
	Zone           string
	State          FindingState
	ClosedByUserID *int64 // cerrado_por

	Project      string
	Evaluator    string
	Department   string
	Activity     string
	Result       string
	Observations string
	CloseComment string
	ReopenReason string
	InspectedAt  time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsClosed informa si el hallazgo está cerrado.
func (f *Finding) IsClosed() bool {
	return f.State == FindingClosed
}

// ClosedBy informa si userID es quien cerró el hallazgo.
func (f *Finding) ClosedBy(userID int64) bool {
	return f.ClosedByUserID != nil && *f.ClosedByUserID == userID
}
