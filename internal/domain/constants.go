package domain

// User roles
const (
	RoleCustomer = "customer"
	RoleStaff    = "staff"
	RoleManager  = "manager"
)

// Table status
const (
	TableAvailable = "available"
	TableOccupied  = "occupied"
	TableReserved  = "reserved"
)

// Order status. OrderWaitingPayment and OrderPending overlap in meaning;
// both are accepted wherever an order status is expected.
const (
	OrderPending        = "pending"
	OrderInPreparation  = "in_preparation"
	OrderCompleted      = "completed"
	OrderWaitingPayment = "waiting_payment"
)

// Payment status
const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
	PaymentFailed  = "failed"
)

// Payment method
const (
	PayCash    = "cash"
	PayCard    = "card"
	PayEWallet = "e_wallet"
)

// Reservation status
const (
	ReservationPending   = "pending"
	ReservationConfirmed = "confirmed"
	ReservationCancelled = "cancelled"
	ReservationCompleted = "completed"
)

const (
	FeedbackPending   = "pending"
	FeedbackResponded = "responded"
)

const (
	MenuAvailable   = "available"
	MenuUnavailable = "unavailable"
)

const (
	PromotionActive   = "active"
	PromotionInactive = "inactive"
	PromotionExpired  = "expired"
)

const (
	PromotionPercentage = "percentage"
	PromotionFixed      = "fixed"
)

const (
	StaffActive   = "active"
	StaffInactive = "inactive"
)

const (
	AttendancePresent = "present"
	AttendanceAbsent  = "absent"
	AttendanceLate    = "late"
)

// Stock movement kinds
const (
	MovementImport    = "import"
	MovementExport    = "export"
	MovementStocktake = "stocktake"
)

// Id prefixes for time-derived identifiers
const (
	PrefixOrder       = "ORD-"
	PrefixReservation = "RES-"
	PrefixImport      = "IMP-"
	PrefixExport      = "EXP-"
	PrefixTransaction = "TXN-"
)

// Layouts of the textual date/time fields at rest.
const (
	DateLayout      = "2006-01-02"
	TimeLayout      = "15:04"
	ClockLayout     = "15:04:05"
	TimestampLayout = "2006-01-02 15:04:05"
	IDStampLayout   = "20060102150405"
)

const DefaultPassword = "123456"

var (
	Roles               = []string{RoleCustomer, RoleStaff, RoleManager}
	TableStatuses       = []string{TableAvailable, TableOccupied, TableReserved}
	OrderStatuses       = []string{OrderPending, OrderInPreparation, OrderCompleted, OrderWaitingPayment}
	PaymentMethods      = []string{PayCash, PayCard, PayEWallet}
	ReservationStatuses = []string{ReservationPending, ReservationConfirmed, ReservationCancelled, ReservationCompleted}
	MenuStatuses        = []string{MenuAvailable, MenuUnavailable}
	PromotionStatuses   = []string{PromotionActive, PromotionInactive, PromotionExpired}
	PromotionTypes      = []string{PromotionPercentage, PromotionFixed}
	StaffStatuses       = []string{StaffActive, StaffInactive}
)
