package domain

// ActorType differentiates who performed an action on a ticket.
type ActorType string

const (
	ActorTypeUser          ActorType = "USER"
	ActorTypeTechnician    ActorType = "TECHNICIAN"
	ActorTypeAdminHelpdesk ActorType = "ADMIN_HELPDESK"
	ActorTypeAdminAplikasi ActorType = "ADMIN_APLIKASI"
	ActorTypeSystem        ActorType = "SYSTEM"
)

// Actor is the tagged identity pair consumed by the lifecycle service
// and stamped into history entries. It is resolved once at the request
// boundary and passed through every call; services never look up live
// session state.
type Actor struct {
	Type ActorType
	ID   string
}

// SystemActor is the identity used for automated mutations such as
// escalation sweeps and auto-assignment side effects.
var SystemActor = Actor{Type: ActorTypeSystem, ID: "system"}

// IsAdmin reports whether the actor carries an administrative role.
func (a Actor) IsAdmin() bool {
	return a.Type == ActorTypeAdminHelpdesk || a.Type == ActorTypeAdminAplikasi
}
