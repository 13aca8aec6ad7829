package mqtt

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"testing"
	"time"
)

// helper to generate self-signed cert
func generateCert(t *testing.T) (certFile, keyFile, caFile string) {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("gen key: %v", err)
	}
	tmpl := x509.Certificate{SerialNumber: big.NewInt(1), Subject: pkix.Name{CommonName: "test"}, NotBefore: time.Now(), NotAfter: time.Now().Add(time.Hour)}
	der, err := x509.CreateCertificate(rand.Reader, &tmpl, &tmpl, &priv.PublicKey, priv)
	if err != nil {
		t.Fatalf("create cert: %v", err)
	}
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(priv)})

	dir := t.TempDir()
	certFile = dir + "/cert.pem"
	keyFile = dir + "/key.pem"
	caFile = dir + "/ca.pem"
	if err := os.WriteFile(certFile, certPEM, 0644); err != nil {
		t.Fatalf("write cert: %v", err)
	}
	if err := os.WriteFile(keyFile, keyPEM, 0644); err != nil {
		t.Fatalf("write key: %v", err)
	}
	if err := os.WriteFile(caFile, certPEM, 0644); err != nil {
		t.Fatalf("write ca: %v", err)
	}
	return
}

func TestLoadTLSConfig(t *testing.T) {
	cert, key, ca := generateCert(t)
	cfg := Config{UseTLS: true, ClientCert: cert, ClientKey: key, CABundle: ca}
	tlsCfg, err := cfg.LoadTLSConfig()
	if err != nil {
		t.Fatalf("load tls: %v", err)
	}
	if len(tlsCfg.Certificates) == 0 {
		t.Fatalf("no certs loaded")
	}
	if tlsCfg.RootCAs == nil {
		t.Fatalf("no root CAs")
	}
}

func TestNewClientOptionsAuth(t *testing.T) {
	opts, err := NewClientOptions(Config{Broker: "tcp://localhost:1883", ClientID: "id", Username: "u", Password: "p"})
	if err != nil {
		t.Fatalf("opts: %v", err)
	}
	if opts.Username != "u" || opts.Password != "p" {
		t.Fatalf("auth not set")
	}
}

func TestLoadTLSConfigMissingFiles(t *testing.T) {
	if _, err := (Config{UseTLS: true}).LoadTLSConfig(); err == nil {
		t.Fatalf("expected error without cert paths")
	}
	cert, key, _ := generateCert(t)
	empty := t.TempDir() + "/empty.pem"
	if err := os.WriteFile(empty, []byte("nothing"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := (Config{ClientCert: cert, ClientKey: key, CABundle: empty}).LoadTLSConfig(); err == nil {
		t.Fatalf("expected error for empty ca bundle")
	}
}

func TestNewClientOptionsTLS(t *testing.T) {
	cert, key, ca := generateCert(t)
	opts, err := NewClientOptions(Config{Broker: "ssl://localhost:8883", ClientID: "id", UseTLS: true, ClientCert: cert, ClientKey: key, CABundle: ca})
	if err != nil {
		t.Fatalf("opts: %v", err)
	}
	if opts.TLSConfig == nil || len(opts.TLSConfig.Certificates) != 1 {
		t.Fatalf("tls not configured")
	}
	if opts.AutoReconnect || opts.ConnectRetry {
		t.Fatalf("paho reconnect must stay disabled")
	}
}

func TestConfigDefaultsAndValidate(t *testing.T) {
	var cfg Config
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected missing broker error")
	}
	cfg = Config{Broker: "tcp://localhost:1883", ClientID: "id", QoS: map[string]byte{QoSUpdate: 3}}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected qos error")
	}
	cfg.QoS[QoSUpdate] = 0
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if cfg.ConnectTimeoutMS != 5000 || cfg.PublishTimeoutMS != 2000 || cfg.KeepAliveSeconds != 30 || cfg.QueueSize != 32 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.qos(QoSUpdate) != 0 || cfg.qos(QoSDelta) != 1 {
		t.Fatalf("unexpected qos lookup")
	}
}
