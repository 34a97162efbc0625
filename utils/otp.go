package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
	"time"
)

const (
	OTPLength = 6
	OTPExpiry = 10 * time.Minute
)

// GenerateOTP returns a 6-digit numeric verification code.
func GenerateOTP() (string, error) {
	max := big.NewInt(1000000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// OTPExpiryTime returns the expiry timestamp for a freshly issued OTP.
func OTPExpiryTime() time.Time {
	return time.Now().Add(OTPExpiry)
}

// GenerateInviteCode returns a 6 hex character family invite code. Collisions
// are caught by the unique constraint on families.invite_code rather than a
// retry loop.
func GenerateInviteCode() (string, error) {
	buf := make([]byte, 3)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(buf)), nil
}
