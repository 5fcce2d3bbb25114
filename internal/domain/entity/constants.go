package entity

// Status constants for Bill
const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRefused  Status = "refused"
)

// Display labels for bill statuses
const (
	LabelPending  = "En attente"
	LabelAccepted = "Accepté"
	LabelRefused  = "Refused"
	LabelUnknown  = "Inconnu"
)

// Expense type labels offered by the new bill form
const (
	TypeTransports      = "Transports"
	TypeRestaurants     = "Restaurants et bars"
	TypeHotel           = "Hôtel et logement"
	TypeServicesEnLigne = "Services en ligne"
	TypeIT              = "IT et électronique"
	TypeEquipment       = "Equipement et matériel"
	TypeOfficeSupplies  = "Fournitures de bureau"
)

// DefaultPct is the VAT percentage used when the form leaves it empty
const DefaultPct = 20

// Attachment extensions accepted for a bill's proof
var AllowedExtensions = []string{"jpg", "jpeg", "png"}

// MsgInvalidExtension is shown when a proof with another extension is selected
const MsgInvalidExtension = "* Veuillez sélectionner un fichier jpg, jpeg ou png."

// Route identifiers used as navigation targets
const (
	RouteLogin     = "/"
	RouteBills     = "#employee/bills"
	RouteNewBill   = "#employee/bill/new"
	RouteDashboard = "#admin/dashboard"
)

// SessionUserKey is the session store key holding the serialized user
const SessionUserKey = "user"
