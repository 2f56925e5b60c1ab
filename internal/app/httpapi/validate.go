package httpapi

import "regexp"

var walletAddressPattern = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

// ValidWalletAddress reports whether s is a well-formed wallet address:
// the 0x prefix followed by exactly 40 hex characters. Ownership of the
// address is not proven here or anywhere else.
func ValidWalletAddress(s string) bool {
	return walletAddressPattern.MatchString(s)
}
