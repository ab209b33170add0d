// Package hook derives the per-organization webhook that demo events are
// delivered to.
package hook

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// Secret returns the deterministic webhook secret for an organization: the
// first 32 hex characters of sha256("<extension>-webhook-secret:<oid>").
func Secret(extension, oid string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s-webhook-secret:%s", extension, oid)))
	return hex.EncodeToString(sum[:])[:32]
}

// Target identifies one organization's demo webhook.
type Target struct {
	Domain    string
	Extension string
	Name      string
	OID       string
}

// URL builds https://<domain>/<oid>/<name>/<secret>.
func (t Target) URL() (string, error) {
	oid := strings.TrimSpace(t.OID)
	if oid == "" {
		return "", errors.New("organization id is required")
	}
	if strings.ContainsAny(oid, "/?#") {
		return "", fmt.Errorf("invalid organization id %q", oid)
	}
	domain := strings.TrimRight(strings.TrimSpace(t.Domain), "/")
	if domain == "" {
		return "", errors.New("hook domain is required")
	}
	return fmt.Sprintf("https://%s/%s/%s/%s", domain, oid, t.Name, Secret(t.Extension, oid)), nil
}
