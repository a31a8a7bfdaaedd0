package basemap

import (
	"context"
	"database/sql"
	"encoding/hex"
	"fmt"
	"hash"
	"strings"

	"golang.org/x/crypto/blake2b"
	_ "modernc.org/sqlite"
)

func newChecksum() hash.Hash {
	h, _ := blake2b.New256(nil) // без ключа ошибки не бывает
	return h
}

// verifyChecksum compares the BLAKE2b-256 digest of the archive with the declared one.
// An empty declared checksum is not verified.
func verifyChecksum(want string, h hash.Hash) error {
	if want == "" {
		return nil
	}
	got := hex.EncodeToString(h.Sum(nil))
	if !strings.EqualFold(got, want) {
		return fmt.Errorf("%w: checksum %s, expected %s", ErrTileCorrupt, got, want)
	}
	return nil
}

// verifyArchive checks the integrity of an MBTiles archive. Other formats are
// accepted as is.
func verifyArchive(ctx context.Context, name string) error {
	if !strings.EqualFold(extension(name), ".mbtiles") {
		return nil
	}

	db, err := sql.Open("sqlite", "file:"+name+"?mode=ro")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTileCorrupt, err)
	}
	defer db.Close()

	var result string
	if err := db.QueryRowContext(ctx, "PRAGMA quick_check").Scan(&result); err != nil {
		return fmt.Errorf("%w: %w", ErrTileCorrupt, err)
	}
	if result != "ok" {
		return fmt.Errorf("%w: quick_check: %s", ErrTileCorrupt, result)
	}

	var tables int
	err = db.QueryRowContext(ctx,
		"SELECT count(*) FROM sqlite_master WHERE name IN ('tiles', 'metadata')").Scan(&tables)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTileCorrupt, err)
	}
	if tables != 2 {
		return fmt.Errorf("%w: not an mbtiles archive", ErrTileCorrupt)
	}
	return nil
}

// extension returns the extension of the archive name, ignoring the
// temporary suffix used while downloading.
func extension(name string) string {
	name = strings.TrimSuffix(name, partialSuffix)
	if i := strings.LastIndexByte(name, '.'); i >= 0 && !strings.ContainsAny(name[i:], `/\`) {
		return name[i:]
	}
	return ""
}
