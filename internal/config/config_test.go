package config

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{
		"DOCX_DOCUMENTS_DIR", "DOCX_MCP_LOG_LEVEL", "DOCX_MCP_TRANSPORT", "DOCX_MCP_ADDR",
		"DOCX_MCP_PDF_CONVERTER", "DOCX_MCP_SOFFICE_PATH", "DOCX_MCP_PDF_CONCURRENCY",
		"DOCX_MCP_PDF_TIMEOUT_SECONDS",
	} {
		t.Setenv(key, "")
	}
	cfg, issues := LoadConfig()
	if len(issues) != 0 {
		t.Fatalf("issues = %v", issues)
	}
	want := EnvConfig{
		DocumentsDir:      "documents",
		LogLevel:          "info",
		Transport:         "stdio",
		Addr:              ":8080",
		PDFConverter:      "auto",
		SofficePath:       "soffice",
		PDFConcurrency:    1,
		PDFTimeoutSeconds: 120,
	}
	if cfg != want {
		t.Errorf("config = %+v, want %+v", cfg, want)
	}
	if cfg.PDFTimeout() != 2*time.Minute {
		t.Errorf("timeout = %v", cfg.PDFTimeout())
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("DOCX_DOCUMENTS_DIR", "/srv/docs")
	t.Setenv("DOCX_MCP_TRANSPORT", "sse")
	t.Setenv("DOCX_MCP_PDF_CONCURRENCY", "4")
	cfg, issues := LoadConfig()
	if len(issues) != 0 {
		t.Fatalf("issues = %v", issues)
	}
	if cfg.DocumentsDir != "/srv/docs" || cfg.Transport != "sse" || cfg.PDFConcurrency != 4 {
		t.Errorf("config = %+v", cfg)
	}
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"DOCX_MCP_TRANSPORT", "carrier-pigeon"},
		{"DOCX_MCP_PDF_CONVERTER", "pandoc"},
		{"DOCX_MCP_PDF_CONCURRENCY", "0"},
		{"DOCX_MCP_PDF_TIMEOUT_SECONDS", "soon"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, issues := LoadConfig(); len(issues) == 0 {
				t.Errorf("%s=%s accepted", tt.key, tt.value)
			}
		})
	}
}
