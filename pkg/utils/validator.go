package utils

import (
	"net"
	"regexp"
)

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	deviceIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_\-]+$`)
	otpCodeRegex  = regexp.MustCompile(`^[0-9]{6}$`)
)

func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// IsValidDeviceID accepts the identifiers sensor firmware actually sends:
// letters, digits, underscore and hyphen.
func IsValidDeviceID(id string) bool {
	return deviceIDRegex.MatchString(id)
}

func IsValidOTPCode(code string) bool {
	return otpCodeRegex.MatchString(code)
}

func IsValidIP(ip string) bool {
	return net.ParseIP(ip) != nil
}
