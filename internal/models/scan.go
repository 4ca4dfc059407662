package models

import (
	"time"
)

type ScanStatus string

const (
	ScanPending   ScanStatus = "pending"
	ScanScanning  ScanStatus = "scanning"
	ScanPaused    ScanStatus = "paused"
	ScanCompleted ScanStatus = "completed"
	ScanFailed    ScanStatus = "failed"
)

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
)

type ScanProfile struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Checks      []string `json:"checks"`
	Depth       int      `json:"depth"`
	Timeout     int      `json:"timeout"` // seconds
}

type Vulnerability struct {
	ID             string   `json:"id"`
	Type           string   `json:"type"`
	Severity       Severity `json:"severity"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	URL            string   `json:"url"`
	Recommendation string   `json:"recommendation"`
	CWE            string   `json:"cwe,omitempty"`
	CVSS           float64  `json:"cvss,omitempty"`
	Evidence       string   `json:"evidence,omitempty"`
}

type ScanResult struct {
	ID              string          `json:"id"`
	URL             string          `json:"url"`
	Status          ScanStatus      `json:"status"`
	Vulnerabilities []Vulnerability `json:"vulnerabilities"`
	StartTime       time.Time       `json:"startTime"`
	EndTime         *time.Time      `json:"endTime,omitempty"`
	Progress        float64         `json:"progress"`
	PagesScanned    int             `json:"pagesScanned"`
	TotalPages      int             `json:"totalPages"`
	Profile         ScanProfile     `json:"scanProfile"`
	Error           string          `json:"error,omitempty"`
}

// Finished reports whether the scan reached a terminal status.
func (s *ScanResult) Finished() bool {
	return s.Status == ScanCompleted || s.Status == ScanFailed
}
