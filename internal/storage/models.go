package storage

import "time"

// User is a storefront customer, keyed by their Telegram ID.
type User struct {
	ID           int64
	Username     string
	Balance      int
	IsBanned     bool
	TotalSpent   int
	TotalNumbers int
	CreatedAt    time.Time
}

// Country is a sellable region with a per-number price.
type Country struct {
	ID        int64
	Code      string
	Name      string
	Price     int
	IsActive  bool
	CreatedAt time.Time
}

// Account is a backing session line that services one number at a time.
type Account struct {
	ID            int64
	SessionString string
	PhoneNumber   string
	IsActive      bool
	IsInUse       bool
	LastUsed      *time.Time
	NumbersServed int
	CreatedAt     time.Time
}

// Number is a virtual phone number. It is either free or assigned to
// exactly one user with an expiry.
type Number struct {
	ID          int64
	CountryCode string
	PhoneNumber string
	IsAssigned  bool
	AssignedTo  *int64
	AssignedAt  *time.Time
	ExpiresAt   *time.Time
	CreatedAt   time.Time
}

// Order records a single purchase binding a number to a user and the
// account that serves its OTPs for a bounded time.
type Order struct {
	ID        int64
	UserID    int64
	NumberID  int64
	AccountID int64
	OTPCode   string
	Price     int
	Status    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// ActiveNumber is an order joined with its number and country, as shown
// in the "my numbers" listing.
type ActiveNumber struct {
	OrderID     int64
	PhoneNumber string
	CountryName string
	OTPCode     string
	ExpiresAt   time.Time
}

// Payment is a deposit claim, pending until its UTR is verified.
type Payment struct {
	ID         int64
	UserID     int64
	Amount     int
	UTR        string
	Status     string
	CreatedAt  time.Time
	ExpiresAt  time.Time
	VerifiedAt *time.Time
}
