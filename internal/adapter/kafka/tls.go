package kafka

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
)

var ErrInvalidCA = errors.New("failed to parse CA certificate")

// TLSConfig builds a client [*tls.Config] for the broker and the schema
// registry. All args are the filepaths. A nil config and nil error are
// returned when every path is empty.
func TLSConfig(ca, cert, key string) (*tls.Config, error) {
	const op = "kafka.TLSConfig"

	if ca == "" && cert == "" && key == "" {
		return nil, nil
	}

	caCert, err := os.ReadFile(ca)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read CA certificate file: %w", op, err)
	}

	caCertPool := x509.NewCertPool()
	if !caCertPool.AppendCertsFromPEM(caCert) {
		return nil, opErr(ErrInvalidCA, op)
	}

	cfg := &tls.Config{
		RootCAs:    caCertPool,
		MinVersion: tls.VersionTLS12,
	}

	if cert == "" && key == "" {
		return cfg, nil
	}

	clientCert, err := tls.LoadX509KeyPair(cert, key)
	if err != nil {
		return nil, opErr(err, op)
	}
	cfg.Certificates = []tls.Certificate{clientCert}
	return cfg, nil
}
