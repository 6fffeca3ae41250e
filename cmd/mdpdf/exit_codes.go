package main

import (
	"errors"
	"os"

	"github.com/alnah/mdpdf"
	"github.com/alnah/mdpdf/internal/assets"
	"github.com/alnah/mdpdf/internal/config"
)

// Exit codes for the mdpdf CLI.
const (
	ExitSuccess = 0 // Successful conversion
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied, server bind
	ExitBrowser = 4 // Browser/Chrome errors
)

// exitCodeFor returns the exit code for err, matching wrapped sentinels.
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, mdpdf.ErrBrowserLaunch) ||
		errors.Is(err, mdpdf.ErrBrowserConnect) ||
		errors.Is(err, mdpdf.ErrPageCreate) ||
		errors.Is(err, mdpdf.ErrPageLoad) ||
		errors.Is(err, mdpdf.ErrContentInject) ||
		errors.Is(err, mdpdf.ErrPDFGeneration) {
		return ExitBrowser
	}

	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadMarkdown) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrCreateOutputDir) ||
		errors.Is(err, mdpdf.ErrWriteOutput) ||
		errors.Is(err, mdpdf.ErrServerStart) ||
		errors.Is(err, assets.ErrAssetRead) {
		return ExitIO
	}

	if errors.Is(err, ErrUsage) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, config.ErrPathEscapesWorkspace) ||
		errors.Is(err, mdpdf.ErrInvalidImageDir) ||
		errors.Is(err, mdpdf.ErrInvalidTemplate) ||
		errors.Is(err, mdpdf.ErrInvalidOption) ||
		errors.Is(err, mdpdf.ErrInvalidInput) ||
		errors.Is(err, assets.ErrStyleNotFound) ||
		errors.Is(err, assets.ErrTemplateNotFound) ||
		errors.Is(err, assets.ErrHighlightNotFound) ||
		errors.Is(err, assets.ErrInvalidAssetName) ||
		errors.Is(err, assets.ErrInvalidBasePath) ||
		errors.Is(err, assets.ErrPathTraversal) {
		return ExitUsage
	}

	return ExitGeneral
}
