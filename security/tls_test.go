package security

import (
	"crypto/tls"
	"testing"

	"github.com/kbukum/scribe/security/tlstest"
)

func TestTLSConfig_Build(t *testing.T) {
	certs := tlstest.GenerateTLSCerts(t)

	tests := []struct {
		name    string
		cfg     *TLSConfig
		wantNil bool
		wantErr bool
		check   func(t *testing.T, c *tls.Config)
	}{
		{name: "nil", cfg: nil, wantNil: true},
		{name: "zero", cfg: &TLSConfig{}, wantNil: true},
		{
			name: "enabled with system roots",
			cfg:  &TLSConfig{Enabled: true},
			check: func(t *testing.T, c *tls.Config) {
				if c.RootCAs != nil || c.MinVersion != tls.VersionTLS12 {
					t.Errorf("config = %+v", c)
				}
			},
		},
		{
			name: "skip verify with server name",
			cfg:  &TLSConfig{SkipVerify: true, ServerName: "redis.internal"},
			check: func(t *testing.T, c *tls.Config) {
				if !c.InsecureSkipVerify || c.ServerName != "redis.internal" {
					t.Errorf("config = %+v", c)
				}
			},
		},
		{
			name: "mutual tls",
			cfg:  &TLSConfig{CAFile: certs.CAFile, CertFile: certs.CertFile, KeyFile: certs.KeyFile},
			check: func(t *testing.T, c *tls.Config) {
				if c.RootCAs == nil || len(c.Certificates) != 1 {
					t.Errorf("roots=%v certs=%d", c.RootCAs, len(c.Certificates))
				}
			},
		},
		{name: "missing ca", cfg: &TLSConfig{CAFile: "/nonexistent/ca.pem"}, wantErr: true},
		{name: "invalid ca", cfg: &TLSConfig{CAFile: tlstest.WriteInvalidPEM(t, "bad.pem")}, wantErr: true},
		{name: "cert without key", cfg: &TLSConfig{CertFile: certs.CertFile}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cfg.Build()
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if (got == nil) != tt.wantNil {
				t.Fatalf("config = %v, wantNil %v", got, tt.wantNil)
			}
			if tt.check != nil {
				tt.check(t, got)
			}
		})
	}
}

func TestTLSConfig_Handshake(t *testing.T) {
	certs := tlstest.GenerateTLSCerts(t)
	ln, err := tls.Listen("tcp", "127.0.0.1:0", &tls.Config{Certificates: []tls.Certificate{certs.ServerTLS}, MinVersion: tls.VersionTLS12})
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		_ = conn.(*tls.Conn).Handshake()
		conn.Close()
	}()

	cfg, err := (&TLSConfig{CAFile: certs.CAFile, ServerName: "localhost"}).Build()
	if err != nil {
		t.Fatal(err)
	}
	conn, err := tls.Dial("tcp", ln.Addr().String(), cfg)
	if err != nil {
		t.Fatalf("handshake: %v", err)
	}
	conn.Close()
}
