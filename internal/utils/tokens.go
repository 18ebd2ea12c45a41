package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/yukikurage/workforce-portal/internal/constants"
)

// GenerateJoinToken generates a group join token in the format GRP_XXXXXXXXXXXX
// (12 upper-case hex characters).
func GenerateJoinToken() (string, error) {
	bytes := make([]byte, 6)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	return constants.JoinTokenPrefix + strings.ToUpper(hex.EncodeToString(bytes)), nil
}

// GenerateDirectorEmployeeID generates an employee id of the form DIRnnnnnnnnn.
func GenerateDirectorEmployeeID() (string, error) {
	var sb strings.Builder
	sb.WriteString("DIR")
	for i := 0; i < 9; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("failed to generate random digit: %w", err)
		}
		sb.WriteByte(byte('0' + n.Int64()))
	}
	return sb.String(), nil
}
