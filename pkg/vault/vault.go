// Package vault cifra los secretos de certificados (contraseñas PKCS#12 / PKCS#8) que se
// guardan en base de datos. Formato: hex(iv) + ":" + hex(AES-256-CBC/PKCS#7(secreto)).
package vault

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

var errBadPadding = errors.New("vault: padding PKCS#7 inválido")

// Vault cifra y descifra secretos con una clave de proceso.
// El valor cero (sin clave) funciona en modo passthrough.
type Vault struct {
	key []byte
}

// New construye la bóveda. Una clave de 64 caracteres hex se usa tal cual (32 bytes);
// cualquier otro valor no vacío se trata como passphrase y se deriva con SHA-256.
func New(key string) *Vault {
	key = strings.TrimSpace(key)
	if key == "" {
		return &Vault{}
	}
	if len(key) == 64 {
		if raw, err := hex.DecodeString(key); err == nil {
			return &Vault{key: raw}
		}
	}
	sum := sha256.Sum256([]byte(key))
	return &Vault{key: sum[:]}
}

// Enabled indica si hay clave configurada.
func (v *Vault) Enabled() bool {
	return v != nil && len(v.key) == 32
}

// Encrypt cifra secret con un IV aleatorio. Sin clave devuelve el secreto sin cambios.
func (v *Vault) Encrypt(secret string) (string, error) {
	if !v.Enabled() {
		log.Warn().Str("component", "vault").Msg("EFACTURA_ENCRYPTION_KEY no configurada: el secreto se guarda sin cifrar")
		return secret, nil
	}
	block, err := aes.NewCipher(v.key)
	if err != nil {
		return "", fmt.Errorf("vault: NewCipher: %w", err)
	}
	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("vault: generar IV: %w", err)
	}
	padded := pkcs7Pad([]byte(secret), aes.BlockSize)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, padded)
	return hex.EncodeToString(iv) + ":" + hex.EncodeToString(out), nil
}

// Decrypt revierte Encrypt. Ante formato inválido, padding incorrecto o clave distinta
// devuelve la entrada sin cambios y registra un warning; el llamador no distingue
// un secreto en claro de un fallo de descifrado.
func (v *Vault) Decrypt(ciphertext string) string {
	if !v.Enabled() {
		return ciphertext
	}
	plain, err := v.decrypt(ciphertext)
	if err != nil {
		log.Warn().Str("component", "vault").Err(err).Msg("no se pudo descifrar el secreto; se usa el valor almacenado")
		return ciphertext
	}
	return plain
}

func (v *Vault) decrypt(ciphertext string) (string, error) {
	ivHex, ctHex, ok := strings.Cut(ciphertext, ":")
	if !ok {
		return "", errors.New("vault: formato sin separador")
	}
	iv, err := hex.DecodeString(ivHex)
	if err != nil || len(iv) != aes.BlockSize {
		return "", errors.New("vault: IV inválido")
	}
	ct, err := hex.DecodeString(ctHex)
	if err != nil || len(ct) == 0 || len(ct)%aes.BlockSize != 0 {
		return "", errors.New("vault: cuerpo cifrado inválido")
	}
	block, err := aes.NewCipher(v.key)
	if err != nil {
		return "", fmt.Errorf("vault: NewCipher: %w", err)
	}
	out := make([]byte, len(ct))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, ct)
	plain, err := pkcs7Unpad(out, aes.BlockSize)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

// IsEncrypted informa si s tiene la forma de un texto cifrado por la bóveda.
func IsEncrypted(s string) bool {
	ivHex, ctHex, ok := strings.Cut(s, ":")
	if !ok || len(ivHex) != 2*aes.BlockSize || len(ctHex) == 0 || len(ctHex)%(2*aes.BlockSize) != 0 {
		return false
	}
	if _, err := hex.DecodeString(ivHex); err != nil {
		return false
	}
	_, err := hex.DecodeString(ctHex)
	return err == nil
}

func pkcs7Pad(src []byte, blockSize int) []byte {
	padLen := blockSize - (len(src) % blockSize)
	return append(src, bytes.Repeat([]byte{byte(padLen)}, padLen)...)
}

func pkcs7Unpad(src []byte, blockSize int) ([]byte, error) {
	n := len(src)
	if n == 0 || n%blockSize != 0 {
		return nil, errBadPadding
	}
	padLen := int(src[n-1])
	if padLen == 0 || padLen > blockSize || padLen > n {
		return nil, errBadPadding
	}
	for _, b := range src[n-padLen:] {
		if int(b) != padLen {
			return nil, errBadPadding
		}
	}
	return src[:n-padLen], nil
}
