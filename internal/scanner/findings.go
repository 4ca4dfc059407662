package scanner

import "github.com/maltedev/shoplens/internal/models"

// Check types understood by the simulated checker.
const (
	CheckSQLInjection          = "SQL Injection"
	CheckXSS                   = "XSS"
	CheckCSRF                  = "CSRF"
	CheckSecurityHeaders       = "Security Headers"
	CheckSSLTLS                = "SSL/TLS"
	CheckInformationDisclosure = "Information Disclosure"
	CheckDirectoryTraversal    = "Directory Traversal"
	CheckAuthentication        = "Authentication"
	CheckAuthorization         = "Authorization"
	CheckFileUpload            = "File Upload"
	CheckCommandInjection      = "Command Injection"
	CheckXXE                   = "XXE"
	CheckSSRF                  = "SSRF"
	CheckBrokenAccessControl   = "Broken Access Control"
)

// AllChecks lists every check type in table order.
var AllChecks = []string{
	CheckSQLInjection,
	CheckXSS,
	CheckCSRF,
	CheckSecurityHeaders,
	CheckSSLTLS,
	CheckInformationDisclosure,
	CheckDirectoryTraversal,
	CheckAuthentication,
	CheckAuthorization,
	CheckFileUpload,
	CheckCommandInjection,
	CheckXXE,
	CheckSSRF,
	CheckBrokenAccessControl,
}

// findings holds the canned vulnerabilities per check type. URL is a path
// relative to the scanned site.
var findings = map[string][]models.Vulnerability{
	CheckSQLInjection: {
		{
			ID:             "sql-1",
			Severity:       models.SeverityCritical,
			Title:          "SQL Injection in login form",
			Description:    "The login form is vulnerable to SQL injection attacks. User input is not properly sanitized, allowing attackers to bypass authentication or extract sensitive data.",
			URL:            "/login",
			Recommendation: "Use parameterized queries or prepared statements. Implement input validation and sanitization. Use ORM frameworks with built-in protection.",
			CWE:            "CWE-89",
			CVSS:           9.8,
			Evidence:       "Payload: ' OR '1'='1' -- resulted in successful authentication bypass",
		},
		{
			ID:             "sql-2",
			Severity:       models.SeverityHigh,
			Title:          "SQL Injection in search functionality",
			Description:    "Search parameter is vulnerable to SQL injection, potentially exposing database contents.",
			URL:            "/search?q=test",
			Recommendation: "Implement parameterized queries and input validation for all search parameters.",
			CWE:            "CWE-89",
			CVSS:           8.6,
			Evidence:       "Payload: test' UNION SELECT NULL-- returned database error",
		},
	},
	CheckXSS: {
		{
			ID:             "xss-1",
			Severity:       models.SeverityHigh,
			Title:          "Reflected XSS in search parameter",
			Description:    "User input from search parameter is reflected in the page without proper encoding, allowing script injection.",
			URL:            "/search",
			Recommendation: "Encode all user input before rendering. Implement Content Security Policy (CSP). Use modern frameworks with automatic XSS protection.",
			CWE:            "CWE-79",
			CVSS:           7.3,
			Evidence:       "Payload: <script>alert('XSS')</script> executed successfully",
		},
		{
			ID:             "xss-2",
			Severity:       models.SeverityMedium,
			Title:          "Stored XSS in comment section",
			Description:    "Comments are stored and displayed without sanitization, allowing persistent XSS attacks.",
			URL:            "/comments",
			Recommendation: "Sanitize and encode all user-generated content. Implement CSP headers.",
			CWE:            "CWE-79",
			CVSS:           6.5,
			Evidence:       "Malicious script stored in database and executed on page load",
		},
	},
	CheckCSRF: {
		{
			ID:             "csrf-1",
			Severity:       models.SeverityMedium,
			Title:          "Missing CSRF protection on forms",
			Description:    "Forms lack CSRF tokens, making them vulnerable to cross-site request forgery attacks.",
			URL:            "/profile/update",
			Recommendation: "Implement CSRF tokens for all state-changing operations. Use SameSite cookie attribute.",
			CWE:            "CWE-352",
			CVSS:           6.5,
		},
	},
	CheckSecurityHeaders: {
		{
			ID:             "header-1",
			Severity:       models.SeverityMedium,
			Title:          "Missing security headers",
			Description:    "Important security headers are missing: X-Frame-Options, X-Content-Type-Options, Strict-Transport-Security, Content-Security-Policy.",
			URL:            "/",
			Recommendation: "Add security headers: X-Frame-Options: DENY, X-Content-Type-Options: nosniff, Strict-Transport-Security: max-age=31536000, Content-Security-Policy with appropriate directives.",
			CWE:            "CWE-693",
			CVSS:           5.3,
		},
	},
	CheckSSLTLS: {
		{
			ID:             "ssl-1",
			Severity:       models.SeverityLow,
			Title:          "Weak SSL/TLS configuration",
			Description:    "Server supports older TLS versions (TLS 1.0, TLS 1.1) and weak cipher suites.",
			URL:            "/",
			Recommendation: "Disable TLS 1.0 and 1.1. Use TLS 1.2 or higher. Configure strong cipher suites only.",
			CWE:            "CWE-326",
			CVSS:           4.3,
		},
	},
	CheckInformationDisclosure: {
		{
			ID:             "info-1",
			Severity:       models.SeverityInfo,
			Title:          "Server version disclosure",
			Description:    "Server header reveals version information that could aid attackers.",
			URL:            "/",
			Recommendation: "Remove or obfuscate server version information from headers.",
			CWE:            "CWE-200",
			CVSS:           3.7,
		},
		{
			ID:             "info-2",
			Severity:       models.SeverityLow,
			Title:          "Directory listing enabled",
			Description:    "Directory listing is enabled, exposing file structure.",
			URL:            "/uploads/",
			Recommendation: "Disable directory listing in web server configuration.",
			CWE:            "CWE-548",
			CVSS:           4.3,
		},
	},
	CheckDirectoryTraversal: {
		{
			ID:             "dir-1",
			Severity:       models.SeverityHigh,
			Title:          "Path traversal in file download",
			Description:    "File download functionality is vulnerable to path traversal attacks.",
			URL:            "/download?file=document.pdf",
			Recommendation: "Validate and sanitize file paths. Use whitelist of allowed files. Implement proper access controls.",
			CWE:            "CWE-22",
			CVSS:           7.5,
		},
	},
	CheckAuthentication: {
		{
			ID:             "auth-1",
			Severity:       models.SeverityHigh,
			Title:          "Weak password policy",
			Description:    "Password policy allows weak passwords (minimum 4 characters, no complexity requirements).",
			URL:            "/register",
			Recommendation: "Implement strong password policy: minimum 12 characters, complexity requirements, password history.",
			CWE:            "CWE-521",
			CVSS:           7.5,
		},
	},
	CheckAuthorization: {
		{
			ID:             "authz-1",
			Severity:       models.SeverityCritical,
			Title:          "Broken access control",
			Description:    "Users can access other users' data by manipulating URL parameters.",
			URL:            "/user/profile?id=123",
			Recommendation: "Implement proper authorization checks. Validate user permissions server-side.",
			CWE:            "CWE-639",
			CVSS:           9.1,
		},
	},
	CheckFileUpload: {
		{
			ID:             "upload-1",
			Severity:       models.SeverityCritical,
			Title:          "Unrestricted file upload",
			Description:    "File upload functionality allows uploading executable files without validation.",
			URL:            "/upload",
			Recommendation: "Validate file types, extensions, and content. Store uploads outside web root. Implement virus scanning.",
			CWE:            "CWE-434",
			CVSS:           9.8,
		},
	},
	CheckCommandInjection: {
		{
			ID:             "cmd-1",
			Severity:       models.SeverityCritical,
			Title:          "OS command injection",
			Description:    "User input is passed to system commands without sanitization.",
			URL:            "/tools/ping",
			Recommendation: "Avoid system calls with user input. Use safe APIs. Implement strict input validation.",
			CWE:            "CWE-78",
			CVSS:           9.8,
		},
	},
	CheckXXE: {
		{
			ID:             "xxe-1",
			Severity:       models.SeverityHigh,
			Title:          "XML External Entity injection",
			Description:    "XML parser is configured to process external entities, allowing XXE attacks.",
			URL:            "/api/xml",
			Recommendation: "Disable external entity processing in XML parsers. Use JSON instead of XML when possible.",
			CWE:            "CWE-611",
			CVSS:           8.2,
		},
	},
	CheckSSRF: {
		{
			ID:             "ssrf-1",
			Severity:       models.SeverityHigh,
			Title:          "Server-Side Request Forgery",
			Description:    "Application fetches remote resources based on user input without validation.",
			URL:            "/fetch?url=http://example.com",
			Recommendation: "Validate and whitelist allowed URLs. Implement network segmentation. Block internal IP ranges.",
			CWE:            "CWE-918",
			CVSS:           8.6,
		},
	},
	CheckBrokenAccessControl: {
		{
			ID:             "bac-1",
			Severity:       models.SeverityCritical,
			Title:          "Insecure direct object reference",
			Description:    "Application exposes direct references to internal objects without access control.",
			URL:            "/api/documents/12345",
			Recommendation: "Implement proper authorization checks. Use indirect references. Validate user permissions.",
			CWE:            "CWE-639",
			CVSS:           9.1,
		},
	},
}
