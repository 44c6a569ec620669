package main

import (
	"crypto/tls"
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/diillson/mock-api-server/pkg/config"
	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"
)

// tlsMode indica como o servidor obtém seus certificados
type tlsMode int

const (
	tlsOff tlsMode = iota
	tlsFiles
	tlsAutocert
)

func (m tlsMode) String() string {
	switch m {
	case tlsFiles:
		return "files"
	case tlsAutocert:
		return "autocert"
	default:
		return "off"
	}
}

// configureTLS ajusta server.TLSConfig conforme server.tls, certificados e domínios.
// Certificados próprios têm prioridade sobre Let's Encrypt; sem nenhum dos dois o servidor fica em HTTP.
func configureTLS(server *http.Server, cfg config.ServerConfig, logger *zap.Logger) tlsMode {
	if !cfg.TLS {
		return tlsOff
	}

	base := &tls.Config{MinVersion: tls.VersionTLS13}

	if filesExist(cfg.CertFile, cfg.KeyFile) {
		server.TLSConfig = base
		return tlsFiles
	}
	if cfg.CertFile != "" || cfg.KeyFile != "" {
		logger.Warn("Certificado ou chave TLS não encontrados",
			zap.String("cert_file", cfg.CertFile),
			zap.String("key_file", cfg.KeyFile))
	}

	domains := publicDomains(cfg.Domains)
	if len(domains) == 0 {
		logger.Warn("TLS habilitado sem certificados nem domínios públicos; servindo HTTP")
		return tlsOff
	}

	manager := &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		HostPolicy: autocert.HostWhitelist(domains...),
		Cache:      autocert.DirCache(".data/certs"),
		Email:      os.Getenv("LETSENCRYPT_EMAIL"),
	}
	base.GetCertificate = manager.GetCertificate
	base.NextProtos = append(base.NextProtos, "h2", "http/1.1")
	server.TLSConfig = base

	// Desafios ACME e redirecionamento para HTTPS na porta 80
	go serveRedirect(manager.HTTPHandler(http.HandlerFunc(redirectHTTPS)), logger)

	logger.Info("Let's Encrypt configurado", zap.Strings("domains", domains))
	return tlsAutocert
}

func filesExist(paths ...string) bool {
	for _, p := range paths {
		if p == "" {
			return false
		}
		if _, err := os.Stat(p); err != nil {
			return false
		}
	}
	return true
}

// publicDomains descarta entradas vazias e nomes locais, que o ACME não emite
func publicDomains(domains []string) []string {
	out := make([]string, 0, len(domains))
	for _, d := range domains {
		d = strings.TrimSpace(d)
		switch d {
		case "", "localhost", "127.0.0.1", "::1":
			continue
		}
		out = append(out, d)
	}
	return out
}

func serveRedirect(handler http.Handler, logger *zap.Logger) {
	srv := &http.Server{
		Addr:              ":80",
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Servidor de redirecionamento HTTPS falhou", zap.Error(err))
	}
}

func redirectHTTPS(w http.ResponseWriter, r *http.Request) {
	target := "https://" + r.Host + r.URL.RequestURI()
	http.Redirect(w, r, target, http.StatusMovedPermanently)
}
