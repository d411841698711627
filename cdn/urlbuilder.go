package cdn

import (
	"fmt"
	"strings"
)

// ValidateHash reports whether hash is exactly 32 lowercase hex characters.
func ValidateHash(hash string) error {
	if len(hash) != 32 {
		return fmt.Errorf("%w: want 32 characters, got %d", ErrInvalidHash, len(hash))
	}
	for _, c := range hash {
		isLowerHex := (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')
		if !isLowerHex {
			return fmt.Errorf("%w: non-lowercase-hex character %q", ErrInvalidHash, c)
		}
	}
	return nil
}

// BuildURL constructs the content URL for hash on server, using b's
// product-specific path fragments. ProductConfig content uses b.ConfigPath
// directly in place of b.CDNPath/subdir.
func BuildURL(server Server, b Bootstrap, contentType ContentType, hash string) (string, error) {
	if err := ValidateHash(hash); err != nil {
		return "", err
	}

	var pathPrefix string
	if contentType == ProductConfig {
		pathPrefix = strings.Trim(b.ConfigPath, "/")
	} else {
		pathPrefix = strings.Trim(b.CDNPath, "/") + "/" + contentType.subdir()
	}

	return fmt.Sprintf("%s://%s/%s/%s/%s/%s",
		server.scheme(), server.Host, pathPrefix, hash[0:2], hash[2:4], hash), nil
}
