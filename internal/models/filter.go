package models

// Lookup fields supported by record store queries.
const (
	FieldAccountNumber  = "accountNumber"
	FieldIdentityNumber = "identityNumber"
)

// Filter selects a single user by one of its natural keys.
type Filter struct {
	Field string
	Value string
}

// ByAccountNumber returns a filter matching the given account number.
func ByAccountNumber(accountNumber string) Filter {
	return Filter{Field: FieldAccountNumber, Value: accountNumber}
}

// ByIdentityNumber returns a filter matching the given identity number.
func ByIdentityNumber(identityNumber string) Filter {
	return Filter{Field: FieldIdentityNumber, Value: identityNumber}
}
