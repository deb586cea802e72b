package hashutil

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"

	"lukechampine.com/blake3"
)

type HashAlgo string

const (
	// HashAlgoMD5 is the canonical content-identity hash. The stored
	// content_hash column and the nav fingerprint both use it, so the
	// algorithm is part of the persisted format and must not change.
	HashAlgoMD5 HashAlgo = "md5"
	// HashAlgoBLAKE3 is used for raw-body provenance hashing where speed
	// matters and the value is diagnostic only.
	HashAlgoBLAKE3 HashAlgo = "blake3"
)

// HashBytes returns the hash of bytes as a hex string using the specified algorithm.
// Supported algorithms: "md5" and "blake3".
func HashBytes(data []byte, algo HashAlgo) (string, error) {
	switch algo {
	case HashAlgoMD5:
		return hashBytesMD5(data), nil
	case HashAlgoBLAKE3:
		return hashBytesBlake3(data), nil
	default:
		return "", fmt.Errorf("unsupported hash algorithm: %s", algo)
	}
}

// MD5Hex returns the MD5 hash of data as a lowercase hex string.
// Convenience wrapper for the places where the algorithm is fixed by the
// persisted format.
func MD5Hex(data []byte) string {
	return hashBytesMD5(data)
}

func hashBytesMD5(data []byte) string {
	hash := md5.Sum(data)
	return hex.EncodeToString(hash[:])
}

func hashBytesBlake3(data []byte) string {
	hash := blake3.Sum256(data)
	return hex.EncodeToString(hash[:])
}
