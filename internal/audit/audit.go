package audit

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mrlokans/storyhub/internal/utils"
)

// Auditor writes raw payloads (for example source responses) to JSON files
// so a failed sync or mapping can be inspected later.
type Auditor struct {
	AuditDir string
}

func NewAuditor(auditDir string) *Auditor {
	return &Auditor{
		AuditDir: auditDir,
	}
}

// SaveJSON saves the provided data as JSON to a file with UUID4 filename
func (a *Auditor) SaveJSON(data any) (string, error) {
	return a.save(uuid.NewString(), data)
}

// SaveEnvelope saves a raw response envelope of a source. The file name is
// prefixed with the namespace and kind ("categories", "list") so captures of
// one source sort together.
func (a *Auditor) SaveEnvelope(namespace, kind string, data any) (string, error) {
	prefix := utils.SanitizeFilename(namespace) + "_" + kind
	return a.save(prefix+"_"+uuid.NewString(), data)
}

// Prune removes JSON captures last modified before cutoff.
// Returns the number of removed files.
func (a *Auditor) Prune(cutoff time.Time) (int, error) {
	entries, err := os.ReadDir(a.AuditDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(a.AuditDir, entry.Name())); err != nil {
			log.Printf("Failed to remove audit file %s: %v", entry.Name(), err)
			continue
		}
		removed++
	}
	return removed, nil
}

func (a *Auditor) save(name string, data any) (string, error) {
	// Ensure audit directory exists
	if err := a.ensureAuditDir(); err != nil {
		return "", fmt.Errorf("failed to ensure audit directory: %w", err)
	}

	filename := name + ".json"
	path := filepath.Join(a.AuditDir, filename)

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal data to JSON: %w", err)
	}

	if err := os.WriteFile(path, jsonData, 0644); err != nil {
		return "", fmt.Errorf("failed to write audit file: %w", err)
	}

	log.Printf("Saved audit file: %s", path)
	return filename, nil
}

// ensureAuditDir creates the audit directory if it doesn't exist
func (a *Auditor) ensureAuditDir() error {
	if _, err := os.Stat(a.AuditDir); os.IsNotExist(err) {
		if err := os.MkdirAll(a.AuditDir, 0755); err != nil {
			return fmt.Errorf("failed to create audit directory: %w", err)
		}
	}
	return nil
}
