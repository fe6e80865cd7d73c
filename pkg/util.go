package pkg

import (
	"crypto/rand"
	"encoding/base64"
	"os"
)

// GenerateRandomString returns a URL-safe, base64 encoded
// securely generated random string of s bytes.
func GenerateRandomString(s int) (string, error) {
	b := make([]byte, s)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// PathExists returns whether the given file or directory exists
func PathExists(path string, isDir bool) (bool, error) {
	stat, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if (isDir && stat.IsDir()) || (!isDir && !stat.IsDir()) {
		return true, nil
	}
	return false, err
}
