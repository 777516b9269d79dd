// Package phone parses, validates and formats phone numbers against a
// compiled metadata database.
package phone

import (
	"io"
	"sync"

	"github.com/FocuswithJustin/GlobalPhone/core/cache"
	"github.com/FocuswithJustin/GlobalPhone/core/dbfile"
	apperrors "github.com/FocuswithJustin/GlobalPhone/core/errors"
	"github.com/FocuswithJustin/GlobalPhone/core/metadata"
	"github.com/FocuswithJustin/GlobalPhone/internal/logging"
)

// Database is a loaded metadata database. It is read-only once built and
// safe for concurrent use. Lookup indices are built on first use.
type Database struct {
	regions     []*metadata.Region
	fingerprint string

	codeOnce sync.Once
	byCode   map[string]*metadata.Region

	territories *cache.TerritoryCache
}

// New builds a database from decoded region records.
func New(records []any) (*Database, error) {
	regions, err := metadata.NewRegions(records)
	if err != nil {
		return nil, err
	}
	return &Database{
		regions:     regions,
		territories: cache.NewTerritoryCache(),
	}, nil
}

// Load decodes text with dec and builds a database. A nil dec means JSON.
func Load(text string, dec Decoder) (*Database, error) {
	if dec == nil {
		dec = JSONDecoder{}
	}
	records, err := dec.Decode(text)
	if err != nil {
		return nil, err
	}
	db, err := New(records)
	if err != nil {
		return nil, err
	}
	db.fingerprint = dbfile.Fingerprint([]byte(text))
	return db, nil
}

// LoadReader reads all of r and loads it like Load.
func LoadReader(r io.Reader, dec Decoder) (*Database, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, apperrors.NewIO("read", "", err)
	}
	return Load(string(data), dec)
}

// LoadFile loads a database file, which may be plain, xz or gzip.
func LoadFile(path string, dec Decoder) (*Database, error) {
	data, _, err := dbfile.ReadFile(path)
	if err != nil {
		logging.DatabaseError(path, err)
		return nil, err
	}
	db, err := Load(string(data), dec)
	if err != nil {
		logging.DatabaseError(path, err)
		return nil, apperrors.Wrapf(err, "load %s", path)
	}
	logging.DatabaseLoaded(path, len(db.regions), db.fingerprint)
	return db, nil
}

// Regions returns the regions in load order.
func (db *Database) Regions() []*metadata.Region {
	return db.regions
}

// Fingerprint returns the BLAKE3 digest of the text the database was loaded
// from, or "" when it was built from records.
func (db *Database) Fingerprint() string {
	return db.fingerprint
}

// RegionByCallingCode returns the region for a calling code such as "44".
func (db *Database) RegionByCallingCode(code string) (*metadata.Region, bool) {
	db.codeOnce.Do(func() {
		index := make(map[string]*metadata.Region, len(db.regions))
		for _, g := range db.regions {
			if _, dup := index[g.CountryCode()]; dup {
				logging.Warn("duplicate calling code", "country_code", g.CountryCode())
				continue
			}
			index[g.CountryCode()] = g
		}
		db.byCode = index
	})
	g, ok := db.byCode[code]
	return g, ok
}

// Territory returns the territory named name in any casing. An unknown name
// reports false without an error.
func (db *Database) Territory(name string) (*metadata.Territory, bool) {
	return db.territories.Resolve(name, db.findTerritory)
}

func (db *Database) findTerritory(name string) (*metadata.Territory, bool) {
	for _, g := range db.regions {
		if t, ok := g.Territory(name); ok {
			return t, true
		}
	}
	return nil, false
}

// RegionForTerritory returns the region that owns t.
func (db *Database) RegionForTerritory(t *metadata.Territory) (*metadata.Region, bool) {
	if t == nil {
		return nil, false
	}
	return db.RegionByCallingCode(t.CountryCode())
}

// TerritoryCount returns the total number of territories across regions.
func (db *Database) TerritoryCount() int {
	n := 0
	for _, g := range db.regions {
		n += len(g.Territories())
	}
	return n
}

// Parse interprets text as a phone number dialled from territoryName.
func (db *Database) Parse(text, territoryName string) (*Number, error) {
	territory, ok := db.Territory(territoryName)
	if !ok {
		return nil, apperrors.NewUnknownTerritory(territoryName)
	}
	region, ok := db.RegionForTerritory(territory)
	if !ok {
		return nil, apperrors.NewUnknownRegion(territory.CountryCode(), territory.Name())
	}
	return db.parse(text, region, territory)
}
