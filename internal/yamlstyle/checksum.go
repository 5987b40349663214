package yamlstyle

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
)

// checksum returns the hex-encoded sha256 digest of a file's contents, used
// to detect whether a migration script actually changed anything.
func checksum(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
