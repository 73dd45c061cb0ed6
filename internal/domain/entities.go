package domain

// Cafe data models. The csv tag order of each struct is the canonical
// column order of its collection.

type User struct {
	ID       string `csv:"id" json:"id"`
	Name     string `csv:"name" json:"name"`
	Email    string `csv:"email" json:"email"`
	Password string `csv:"password" json:"-"`
	Phone    string `csv:"phone" json:"phone"`
	Role     string `csv:"role" json:"role"`
}

type MenuItem struct {
	ID          string  `csv:"id" json:"id"`
	Name        string  `csv:"name" json:"name"`
	Category    string  `csv:"category" json:"category"`
	Price       float64 `csv:"price" json:"price"`
	Image       string  `csv:"image" json:"image"`
	Description string  `csv:"description" json:"description"`
	Status      string  `csv:"status" json:"status"`
}

type Order struct {
	ID            string  `csv:"id" json:"id"`
	CustomerEmail string  `csv:"customer_email" json:"customer_email"`
	CustomerName  string  `csv:"customer_name" json:"customer_name"`
	Date          string  `csv:"date" json:"date"`
	Total         float64 `csv:"total" json:"total"`
	Status        string  `csv:"status" json:"status"`
	PaymentMethod string  `csv:"payment_method" json:"payment_method"`
	PaymentStatus string  `csv:"payment_status" json:"payment_status"`
	TableID       string  `csv:"table_id" json:"table_id"`
	CreatedAt     string  `csv:"created_at" json:"created_at"`
}

// OrderDetail is one line item; rows are keyed by order_id and are not unique.
type OrderDetail struct {
	OrderID    string  `csv:"order_id" json:"order_id"`
	MenuItemID string  `csv:"menu_item_id" json:"menu_item_id"`
	Quantity   int     `csv:"quantity" json:"quantity"`
	Price      float64 `csv:"price" json:"price"`
	Subtotal   float64 `csv:"subtotal" json:"subtotal"`
}

type Table struct {
	ID       string `csv:"id" json:"id"`
	Number   int    `csv:"number" json:"number"`
	Capacity int    `csv:"capacity" json:"capacity"`
	Status   string `csv:"status" json:"status"`
}

type InventoryItem struct {
	ID       string  `csv:"id" json:"id"`
	Name     string  `csv:"name" json:"name"`
	Quantity float64 `csv:"quantity" json:"quantity"`
	Unit     string  `csv:"unit" json:"unit"`
	MinStock float64 `csv:"minStock" json:"minStock"`
	Supplier string  `csv:"supplier" json:"supplier"`
}

// Promotion keeps MaxDiscount and MinOrder textual because an empty value
// means "no limit" and must survive a rewrite as an empty column.
type Promotion struct {
	ID          string  `csv:"id" json:"id"`
	Code        string  `csv:"code" json:"code"`
	Name        string  `csv:"name" json:"name"`
	Description string  `csv:"description" json:"description"`
	Discount    float64 `csv:"discount" json:"discount"`
	Type        string  `csv:"type" json:"type"`
	MaxDiscount string  `csv:"maxDiscount" json:"maxDiscount"`
	MinOrder    string  `csv:"minOrder" json:"minOrder"`
	StartDate   string  `csv:"startDate" json:"startDate"`
	EndDate     string  `csv:"endDate" json:"endDate"`
	Status      string  `csv:"status" json:"status"`
}

type Feedback struct {
	ID            string `csv:"id" json:"id"`
	CustomerEmail string `csv:"customer_email" json:"customer_email"`
	CustomerName  string `csv:"customer_name" json:"customer_name"`
	Date          string `csv:"date" json:"date"`
	FoodRating    int    `csv:"foodRating" json:"foodRating"`
	ServiceRating int    `csv:"serviceRating" json:"serviceRating"`
	Comment       string `csv:"comment" json:"comment"`
	Status        string `csv:"status" json:"status"`
	Response      string `csv:"response" json:"response,omitempty"`
}

// Staff is linked to a User of role staff by email.
type Staff struct {
	ID       string `csv:"id" json:"id"`
	Name     string `csv:"name" json:"name"`
	Role     string `csv:"role" json:"role"`
	Email    string `csv:"email" json:"email"`
	Phone    string `csv:"phone" json:"phone"`
	Status   string `csv:"status" json:"status"`
	Schedule string `csv:"schedule" json:"schedule"`
}

type Customer struct {
	ID          string  `csv:"id" json:"id"`
	Name        string  `csv:"name" json:"name"`
	Email       string  `csv:"email" json:"email"`
	Phone       string  `csv:"phone" json:"phone"`
	TotalOrders int     `csv:"totalOrders" json:"totalOrders"`
	TotalSpent  float64 `csv:"totalSpent" json:"totalSpent"`
	Status      string  `csv:"status" json:"status"`
}

type Revenue struct {
	Date    string  `csv:"date" json:"date"`
	Revenue float64 `csv:"revenue" json:"revenue"`
	Orders  int     `csv:"orders" json:"orders"`
}

// Attendance is open while ClockOut is empty.
type Attendance struct {
	ID         string  `csv:"id" json:"id"`
	StaffEmail string  `csv:"staff_email" json:"staff_email"`
	Date       string  `csv:"date" json:"date"`
	ClockIn    string  `csv:"clockIn" json:"clockIn"`
	ClockOut   string  `csv:"clockOut" json:"clockOut"`
	Hours      float64 `csv:"hours" json:"hours"`
	Status     string  `csv:"status" json:"status"`
}

func (a Attendance) Open() bool {
	return a.ClockOut == ""
}

type Reservation struct {
	ID            string `csv:"id" json:"id"`
	CustomerEmail string `csv:"customer_email" json:"customer_email"`
	Date          string `csv:"date" json:"date"`
	Time          string `csv:"time" json:"time"`
	Guests        int    `csv:"guests" json:"guests"`
	Notes         string `csv:"notes" json:"notes"`
	Status        string `csv:"status" json:"status"`
	TableID       string `csv:"table_id" json:"table_id"`
	CreatedAt     string `csv:"created_at" json:"created_at"`
}

// Active reports whether the reservation still blocks its table slot.
func (r Reservation) Active() bool {
	return r.Status == ReservationPending || r.Status == ReservationConfirmed
}

// StockMovement records one inventory quantity change.
type StockMovement struct {
	ID        string  `csv:"id" json:"id"`
	ItemID    string  `csv:"item_id" json:"item_id"`
	Kind      string  `csv:"kind" json:"kind"`
	Quantity  float64 `csv:"quantity" json:"quantity"`
	Reason    string  `csv:"reason" json:"reason"`
	Supplier  string  `csv:"supplier" json:"supplier"`
	CreatedAt string  `csv:"created_at" json:"created_at"`
}
