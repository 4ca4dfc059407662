package scanner

import (
	"strings"

	"github.com/maltedev/shoplens/internal/models"
)

var profiles = []models.ScanProfile{
	{
		Name:        "Quick Scan",
		Description: "Fast check for the most common web vulnerabilities",
		Checks:      []string{CheckXSS, CheckSQLInjection, CheckSecurityHeaders},
		Depth:       2,
		Timeout:     30,
	},
	{
		Name:        "Standard Scan",
		Description: "Balanced scan covering injection, session and transport issues",
		Checks: []string{
			CheckSQLInjection, CheckXSS, CheckCSRF, CheckSecurityHeaders,
			CheckSSLTLS, CheckInformationDisclosure,
		},
		Depth:   5,
		Timeout: 60,
	},
	{
		Name:        "Deep Scan",
		Description: "Every available check with deep crawling",
		Checks:      AllChecks,
		Depth:       10,
		Timeout:     120,
	},
}

// Profiles returns the built-in scan profiles. Standard Scan is the default.
func Profiles() []models.ScanProfile {
	out := make([]models.ScanProfile, len(profiles))
	for i, p := range profiles {
		p.Checks = append([]string(nil), p.Checks...)
		out[i] = p
	}
	return out
}

func DefaultProfile() models.ScanProfile {
	return Profiles()[1]
}

// Profile looks a profile up by name, ignoring case. "quick", "standard" and
// "deep" are accepted as short names.
func Profile(name string) (models.ScanProfile, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, p := range Profiles() {
		full := strings.ToLower(p.Name)
		if n == full || n+" scan" == full {
			return p, true
		}
	}
	return models.ScanProfile{}, false
}
