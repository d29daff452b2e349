package config

import (
	"time"

	z "github.com/Oudwins/zog"
	"github.com/Oudwins/zog/zenv"
)

const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
	TransportHTTP  = "http"
)

var Transports = []string{TransportStdio, TransportSSE, TransportHTTP}

type EnvConfig struct {
	DocumentsDir      string `zog:"DOCX_DOCUMENTS_DIR"`
	LogLevel          string `zog:"DOCX_MCP_LOG_LEVEL"`
	Transport         string `zog:"DOCX_MCP_TRANSPORT"`
	Addr              string `zog:"DOCX_MCP_ADDR"`
	PDFConverter      string `zog:"DOCX_MCP_PDF_CONVERTER"`
	SofficePath       string `zog:"DOCX_MCP_SOFFICE_PATH"`
	PDFConcurrency    int    `zog:"DOCX_MCP_PDF_CONCURRENCY"`
	PDFTimeoutSeconds int    `zog:"DOCX_MCP_PDF_TIMEOUT_SECONDS"`
}

var configSchema = z.Struct(z.Shape{
	"DocumentsDir":      z.String().Trim().Default("documents"),
	"LogLevel":          z.String().Trim().Default("info"),
	"Transport":         z.String().Trim().Default(TransportStdio).OneOf(Transports),
	"Addr":              z.String().Trim().Default(":8080"),
	"PDFConverter":      z.String().Trim().Default("auto").OneOf([]string{"auto", "word", "libreoffice"}),
	"SofficePath":       z.String().Trim().Default("soffice"),
	"PDFConcurrency":    z.Int().GT(0).Default(1),
	"PDFTimeoutSeconds": z.Int().GT(0).Default(120),
})

// LoadConfig reads the server configuration from the environment.
func LoadConfig() (EnvConfig, z.ZogIssueMap) {
	config := EnvConfig{}
	issues := configSchema.Parse(zenv.NewDataProvider(), &config)
	return config, issues
}

func (c EnvConfig) PDFTimeout() time.Duration {
	return time.Duration(c.PDFTimeoutSeconds) * time.Second
}
