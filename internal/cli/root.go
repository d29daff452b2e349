package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	z "github.com/Oudwins/zog"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/wxyzh/docx-mcp-server/internal/config"
	"github.com/wxyzh/docx-mcp-server/internal/pdf"
	"github.com/wxyzh/docx-mcp-server/internal/server"
	"github.com/wxyzh/docx-mcp-server/internal/store"
)

var version = "dev"

var (
	documentsDir string
	transport    string
	addr         string
	logLevel     string
	pdfConverter string
)

var rootCmd = &cobra.Command{
	Use:   "docx-mcp-server",
	Short: "MCP server for reading and editing Word documents",
	Long: `docx-mcp-server exposes tools for creating, reading and editing
Microsoft Word (.docx) documents over the Model Context Protocol.

Environment:
  DOCX_DOCUMENTS_DIR             documents directory (default: documents)
  DOCX_MCP_TRANSPORT             stdio, sse or http (default: stdio)
  DOCX_MCP_ADDR                  listen address for sse and http (default: :8080)
  DOCX_MCP_LOG_LEVEL             logrus level (default: info)
  DOCX_MCP_PDF_CONVERTER         auto, word or libreoffice (default: auto)
  DOCX_MCP_SOFFICE_PATH          LibreOffice binary (default: soffice)
  DOCX_MCP_PDF_CONCURRENCY       parallel PDF conversions (default: 1)
  DOCX_MCP_PDF_TIMEOUT_SECONDS   timeout per conversion (default: 120)

Flags take precedence over the environment.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "docx-mcp-server", version)
	},
}

func init() {
	rootCmd.Flags().StringVarP(&documentsDir, "documents-dir", "d", "", "directory holding the documents")
	rootCmd.Flags().StringVarP(&transport, "transport", "t", "", "transport: stdio, sse or http")
	rootCmd.Flags().StringVar(&addr, "addr", "", "listen address for sse and http")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "log level: trace, debug, info, warn, error")
	rootCmd.Flags().StringVar(&pdfConverter, "pdf-converter", "", "PDF converter: auto, word or libreoffice")

	rootCmd.AddCommand(versionCmd)
}

func SetVersion(v string) {
	version = v
}

func Execute() error {
	return rootCmd.Execute()
}

// loadConfig reads the environment and applies the flags that were set.
func loadConfig(cmd *cobra.Command) (config.EnvConfig, error) {
	cfg, issues := config.LoadConfig()
	if len(issues) != 0 {
		return cfg, fmt.Errorf("invalid configuration: %s", formatIssues(issues))
	}
	for _, o := range []struct {
		flag       string
		value, dst *string
	}{
		{"documents-dir", &documentsDir, &cfg.DocumentsDir},
		{"transport", &transport, &cfg.Transport},
		{"addr", &addr, &cfg.Addr},
		{"log-level", &logLevel, &cfg.LogLevel},
		{"pdf-converter", &pdfConverter, &cfg.PDFConverter},
	} {
		if cmd.Flags().Changed(o.flag) {
			*o.dst = *o.value
		}
	}
	switch cfg.Transport {
	case config.TransportStdio, config.TransportSSE, config.TransportHTTP:
	default:
		return cfg, fmt.Errorf("invalid transport %q: must be one of %s", cfg.Transport, strings.Join(config.Transports, ", "))
	}
	return cfg, nil
}

func formatIssues(errs z.ZogIssueMap) string {
	issues := z.Issues.SanitizeMap(errs)
	keys := make([]string, 0, len(issues))
	for key := range issues {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	var parts []string
	for _, key := range keys {
		msgs := issues[key]
		parts = append(parts, fmt.Sprintf("%s: %s", key, strings.Join(msgs, ", ")))
	}
	return strings.Join(parts, "; ")
}

// newLogger logs to out, never stdout, which belongs to the stdio transport.
func newLogger(level string, out io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		log.WithField("level", level).Warn("unknown log level, using info")
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	return log
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := newLogger(cfg.LogLevel, os.Stderr)

	st, err := store.New(cfg.DocumentsDir, log)
	if err != nil {
		return err
	}
	conv, err := pdf.New(pdf.Config{
		Backend:     cfg.PDFConverter,
		SofficePath: cfg.SofficePath,
		Concurrency: cfg.PDFConcurrency,
		Timeout:     cfg.PDFTimeout(),
	}, log)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"documents_dir": st.Root(),
		"pdf_converter": cfg.PDFConverter,
	}).Debug("configuration loaded")

	return server.New(version, st, conv, log).Start(cfg.Transport, cfg.Addr)
}
