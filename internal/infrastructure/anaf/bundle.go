package anaf

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"

	"github.com/youmark/pkcs8"
	"golang.org/x/crypto/pkcs12"
)

const pemEncryptedPrivateKey = "ENCRYPTED PRIVATE KEY"

// DecodeBundle convierte el contenido de un archivo de certificado en un tls.Certificate.
// Acepta PEM (certificados + llave PKCS#8 cifrada, PKCS#8, PKCS#1 o SEC1) y PKCS#12 (.p12/.pfx).
// La cadena resultante empieza por el certificado cuya llave pública coincide con la privada.
func DecodeBundle(data []byte, password string) (tls.Certificate, error) {
	if len(data) == 0 {
		return tls.Certificate{}, errors.New("bundle vacío")
	}
	blocks := pemBlocks(data)
	if len(blocks) == 0 {
		converted, err := pkcs12.ToPEM(data, password)
		if err != nil {
			return tls.Certificate{}, fmt.Errorf("decodificar p12: %w", err)
		}
		blocks = converted
	}
	return fromPEMBlocks(blocks, password)
}

func pemBlocks(data []byte) []*pem.Block {
	var out []*pem.Block
	for {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			return out
		}
		out = append(out, block)
	}
}

func fromPEMBlocks(blocks []*pem.Block, password string) (tls.Certificate, error) {
	var (
		certs []*x509.Certificate
		key   crypto.PrivateKey
	)
	for _, block := range blocks {
		switch {
		case block.Type == "CERTIFICATE":
			c, err := x509.ParseCertificate(block.Bytes)
			if err != nil {
				return tls.Certificate{}, fmt.Errorf("parsear certificado: %w", err)
			}
			certs = append(certs, c)
		case block.Type == pemEncryptedPrivateKey:
			if key != nil {
				continue
			}
			if password == "" {
				return tls.Certificate{}, errors.New("llave PKCS#8 cifrada sin contraseña")
			}
			k, err := pkcs8.ParsePKCS8PrivateKey(block.Bytes, []byte(password))
			if err != nil {
				return tls.Certificate{}, fmt.Errorf("descifrar llave PKCS#8: %w", err)
			}
			key = k
		case isKeyBlock(block.Type):
			if key != nil {
				continue
			}
			k, err := parsePlainKey(block.Bytes)
			if err != nil {
				return tls.Certificate{}, err
			}
			key = k
		}
	}
	if len(certs) == 0 {
		return tls.Certificate{}, errors.New("el bundle no contiene certificados")
	}
	if key == nil {
		return tls.Certificate{}, errors.New("el bundle no contiene llave privada")
	}

	leafIdx := -1
	for i, c := range certs {
		if publicKeyMatches(c.PublicKey, key) {
			leafIdx = i
			break
		}
	}
	if leafIdx < 0 {
		return tls.Certificate{}, errors.New("la llave privada no corresponde a ningún certificado del bundle")
	}

	chain := make([][]byte, 0, len(certs))
	chain = append(chain, certs[leafIdx].Raw)
	for i, c := range certs {
		if i != leafIdx {
			chain = append(chain, c.Raw)
		}
	}
	return tls.Certificate{
		Certificate: chain,
		PrivateKey:  key,
		Leaf:        certs[leafIdx],
	}, nil
}

func isKeyBlock(t string) bool {
	return t == "PRIVATE KEY" || t == "RSA PRIVATE KEY" || t == "EC PRIVATE KEY"
}

// parsePlainKey prueba PKCS#8, PKCS#1 y SEC1: pkcs12.ToPEM etiqueta como "PRIVATE KEY"
// llaves que en realidad van en PKCS#1 o SEC1.
func parsePlainKey(der []byte) (crypto.PrivateKey, error) {
	if k, err := x509.ParsePKCS8PrivateKey(der); err == nil {
		return k, nil
	}
	if k, err := x509.ParsePKCS1PrivateKey(der); err == nil {
		return k, nil
	}
	if k, err := x509.ParseECPrivateKey(der); err == nil {
		return k, nil
	}
	return nil, errors.New("formato de llave privada no soportado")
}

func publicKeyMatches(pub crypto.PublicKey, key crypto.PrivateKey) bool {
	var priv interface{ Public() crypto.PublicKey }
	switch k := key.(type) {
	case *rsa.PrivateKey:
		priv = k
	case *ecdsa.PrivateKey:
		priv = k
	case ed25519.PrivateKey:
		priv = k
	default:
		return false
	}
	eq, ok := pub.(interface{ Equal(crypto.PublicKey) bool })
	return ok && eq.Equal(priv.Public())
}
