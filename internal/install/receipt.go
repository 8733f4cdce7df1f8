package install

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/aidanlsb/quill/internal/atomicfile"
)

// ReceiptFileName marks material quill installed. Skills carry one inside
// each installed skill directory; agents and rules share one at the kind
// root, since they install as bare files.
const ReceiptFileName = ".quill-receipt.json"

const receiptVersion = 1

// Receipt records what quill wrote so uninstall and doctor can tell managed
// material apart from hand-edited files. Files maps a path relative to the
// receipt's directory to its sha256.
type Receipt struct {
	Version     int               `json:"version"`
	Library     string            `json:"library"`
	Target      string            `json:"target"`
	Scope       string            `json:"scope"`
	InstalledAt string            `json:"installed_at"`
	Files       map[string]string `json:"files"`
}

// NewReceipt returns an empty receipt stamped with the install context.
func NewReceipt(libraryName, target, scope string) *Receipt {
	return &Receipt{
		Version:     receiptVersion,
		Library:     libraryName,
		Target:      target,
		Scope:       scope,
		InstalledAt: time.Now().UTC().Format(time.RFC3339),
		Files:       make(map[string]string),
	}
}

// ReadReceipt loads a receipt, reporting os.IsNotExist errors unchanged so
// callers can treat a missing receipt as "not quill-managed".
func ReadReceipt(path string) (*Receipt, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r Receipt
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse receipt %s: %w", path, err)
	}
	if r.Files == nil {
		r.Files = make(map[string]string)
	}
	return &r, nil
}

// WriteReceipt writes a receipt atomically with a trailing newline.
func WriteReceipt(path string, r *Receipt) error {
	out, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal receipt: %w", err)
	}
	out = append(out, '\n')
	if err := atomicfile.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("failed to write receipt %s: %w", path, err)
	}
	return nil
}

// Checksum returns the hex sha256 of content.
func Checksum(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
