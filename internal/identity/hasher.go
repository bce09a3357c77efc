package identity

import "golang.org/x/crypto/bcrypt"

// HashPassword derives a salted bcrypt digest from the plaintext. The salt is
// generated per call and embedded in the digest.
func HashPassword(plaintext string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
}

// VerifyPassword reports whether the plaintext matches the digest. bcrypt
// compares in constant time; a malformed digest reports false rather than
// surfacing an error to the caller.
func VerifyPassword(plaintext string, digest []byte) bool {
	return bcrypt.CompareHashAndPassword(digest, []byte(plaintext)) == nil
}
