package model

import "fmt"

// AccountKind identifies which role an account belongs to. Wallets are keyed
// by (account id, account kind), so the same external id may own one wallet
// per kind.
type AccountKind string

const (
	AccountKindCustomer AccountKind = "customer"
	AccountKindOwner    AccountKind = "owner"
	AccountKindAdmin    AccountKind = "admin"
)

// ParseAccountKind converts a raw string into an AccountKind.
// Comparison is exact; callers normalize casing at the HTTP boundary.
func ParseAccountKind(s string) (AccountKind, error) {
	switch AccountKind(s) {
	case AccountKindCustomer, AccountKindOwner, AccountKindAdmin:
		return AccountKind(s), nil
	}
	return "", fmt.Errorf("unknown account kind %q", s)
}

func (k AccountKind) Valid() bool {
	_, err := ParseAccountKind(string(k))
	return err == nil
}

func (k AccountKind) String() string {
	return string(k)
}
