package dbfile

import (
	"encoding/json"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/FocuswithJustin/GlobalPhone/core/errors"
)

// ManifestVersion is the current manifest format version.
const ManifestVersion = "1.0.0"

// ManifestSuffix is appended to a database path to name its manifest.
const ManifestSuffix = ".manifest.json"

// Manifest describes one compiled database file.
type Manifest struct {
	ManifestVersion string      `json:"manifest_version"`
	ID              string      `json:"id"`
	CreatedAt       string      `json:"created_at"`
	Source          string      `json:"source,omitempty"`
	Encoding        string      `json:"encoding"`
	Codec           string      `json:"codec"`
	Compression     Compression `json:"compression"`
	Fingerprint     string      `json:"blake3"`
	Regions         int         `json:"regions"`
	Territories     int         `json:"territories"`
}

// NewManifest creates a manifest with a fresh build ID for data, the
// uncompressed database text.
func NewManifest(data []byte) *Manifest {
	return &Manifest{
		ManifestVersion: ManifestVersion,
		ID:              uuid.New().String(),
		CreatedAt:       time.Now().UTC().Format(time.RFC3339),
		Fingerprint:     Fingerprint(data),
		Compression:     CompressionNone,
	}
}

// ManifestPath returns the manifest path for a database path.
func ManifestPath(dbPath string) string {
	return dbPath + ManifestSuffix
}

// ToJSON serializes the manifest with indentation.
func (m *Manifest) ToJSON() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

// WriteManifest writes m next to dbPath.
func WriteManifest(dbPath string, m *Manifest) error {
	data, err := m.ToJSON()
	if err != nil {
		return errors.Wrap(err, "failed to serialize manifest")
	}
	return WriteFile(ManifestPath(dbPath), append(data, '\n'), CompressionNone)
}

// ReadManifest reads the manifest that belongs to dbPath.
func ReadManifest(dbPath string) (*Manifest, error) {
	path := ManifestPath(dbPath)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &errors.NotFoundError{Resource: "manifest", ID: path, Err: errors.ErrNotFound}
		}
		return nil, errors.NewIO("read", path, err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.WrapParse("JSON", path, err)
	}
	if _, err := uuid.Parse(m.ID); err != nil {
		return nil, errors.NewValidation("id", "manifest build ID is not a UUID")
	}
	return &m, nil
}

// Verify checks that the database at dbPath still matches its manifest.
func Verify(dbPath string) (*Manifest, error) {
	m, err := ReadManifest(dbPath)
	if err != nil {
		return nil, err
	}
	data, c, err := ReadFile(dbPath)
	if err != nil {
		return m, err
	}
	if m.Compression != "" && c != m.Compression {
		return m, errors.NewValidation("compression", "file is "+string(c)+", manifest says "+string(m.Compression))
	}
	if got := Fingerprint(data); got != m.Fingerprint {
		return m, errors.NewValidation("blake3", "fingerprint "+got+" does not match manifest "+m.Fingerprint)
	}
	return m, nil
}
