package domain

import (
	"net"
	"strings"
)

// MaskEmail reduces an email address to its first character plus domain
// (j***@example.com). Values without a usable local part collapse to "***"
// so a malformed address never round-trips into storage.
func MaskEmail(email string) string {
	if email == "" {
		return ""
	}

	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return "***"
	}

	return email[:1] + "***" + email[at:]
}

// MaskIP anonymizes an IP address before storage.
// IPv4 zeroes the last octet (192.168.1.100 -> 192.168.1.0); IPv6 zeroes the
// last 80 bits, keeping the 48-bit routing prefix. Returns empty string for
// unparseable input.
func MaskIP(ipStr string) string {
	if ipStr == "" {
		return ""
	}

	ip := net.ParseIP(ipStr)
	if ip == nil {
		return ""
	}

	if v4 := ip.To4(); v4 != nil {
		masked := make(net.IP, len(v4))
		copy(masked, v4)
		masked[3] = 0
		return masked.String()
	}

	masked := make(net.IP, net.IPv6len)
	copy(masked, ip.To16())
	for i := 6; i < net.IPv6len; i++ {
		masked[i] = 0
	}
	return masked.String()
}

// MaskMetadata returns a copy of metadata with sensitive well-known keys
// masked. Email addresses and caller IPs are the identifying values audit
// entries are allowed to retain only in masked form.
func MaskMetadata(metadata map[string]any) map[string]any {
	if metadata == nil {
		return nil
	}

	masked := make(map[string]any, len(metadata))
	for key, value := range metadata {
		str, ok := value.(string)
		if !ok {
			masked[key] = value
			continue
		}

		switch key {
		case "email":
			masked[key] = MaskEmail(str)
		case "ip", "client_ip":
			masked[key] = MaskIP(str)
		default:
			masked[key] = value
		}
	}

	return masked
}
