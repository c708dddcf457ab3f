package storage

import (
	"crypto/cipher"
	"errors"
)

var (
	// ErrBiometricsDisabled is returned when the secured credential cache
	// is read while biometric unlock is off.
	ErrBiometricsDisabled = errors.New("biometric unlock is disabled")
	// ErrNoSecuredCredentials is returned when nothing was cached yet.
	ErrNoSecuredCredentials = errors.New("no secured credentials")
)

// SaveSecuredCredentials caches email and an encrypted password for
// biometric quick login and turns biometric unlock on.
func SaveSecuredCredentials(s Store, aead cipher.AEAD, email, password string) error {
	enc, err := seal(aead, password)
	if err != nil {
		return err
	}
	if err := s.Set(KeySecuredEmail, email); err != nil {
		return err
	}
	if err := s.Set(KeySecuredPassword, enc); err != nil {
		return err
	}
	return SetFlag(s, KeyFaceIDEnabled, true)
}

// SecuredCredentials returns the cached email and decrypted password.
func SecuredCredentials(s Store, aead cipher.AEAD) (email, password string, err error) {
	if !Flag(s, KeyFaceIDEnabled) {
		return "", "", ErrBiometricsDisabled
	}
	email, okEmail := s.Get(KeySecuredEmail)
	enc, okPass := s.Get(KeySecuredPassword)
	if !okEmail || !okPass || email == "" {
		return "", "", ErrNoSecuredCredentials
	}
	password, err = open(aead, enc)
	if err != nil {
		return "", "", err
	}
	return email, password, nil
}

// DisableBiometrics wipes the credential cache and turns biometric unlock
// off.
func DisableBiometrics(s Store) error {
	if err := s.Delete(KeySecuredEmail, KeySecuredPassword); err != nil {
		return err
	}
	return SetFlag(s, KeyFaceIDEnabled, false)
}
