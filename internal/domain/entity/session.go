package entity

import "time"

// Session única fuente de verdad de "quién está conectado".
// La ausencia se marca con "" (Token) o nil (resto de campos).
type Session struct {
	Token     string
	User      *User
	Company   *Company
	LoginTime *time.Time

	// CurrentCompany última empresa validada, aún sin autenticación (sobrevive a una recarga).
	CurrentCompany *Company
	// RememberedCompany elección "recordar empresa"; sobrevive al logout.
	RememberedCompany *Company
}

// IsAuthenticated token y usuario presentes a la vez.
func (s Session) IsAuthenticated() bool {
	return s.Token != "" && s.User != nil
}

// FlowStep paso del flujo de login progresivo.
type FlowStep string

const (
	StepCompany       FlowStep = "company"
	StepCredentials   FlowStep = "credentials"
	StepAuthenticated FlowStep = "authenticated"
)

// FlowState estado observable del flujo de autenticación, con datos transitorios de UI.
type FlowState struct {
	Step              FlowStep
	ValidatedCompany  *Company
	RememberedCompany *Company
	CurrentUser       *User

	CompanyError string
	LoginError   string

	IsValidatingCompany bool
	IsLoggingIn         bool
}

// IsAuthenticated atajo sobre Step.
func (s FlowState) IsAuthenticated() bool {
	return s.Step == StepAuthenticated && s.CurrentUser != nil
}

// Clone copia profunda para publicar instantáneas sin compartir punteros.
func (s FlowState) Clone() FlowState {
	s.ValidatedCompany = s.ValidatedCompany.Clone()
	s.RememberedCompany = s.RememberedCompany.Clone()
	s.CurrentUser = s.CurrentUser.Clone()
	return s
}
