package main

import (
	"strings"
	"text/template"

	"github.com/arthur-debert/packwrap/pkg/style"
	"github.com/spf13/cobra"
)

// initTemplateFormatting adds custom formatting functions to Cobra templates
func initTemplateFormatting() {
	cobra.AddTemplateFuncs(template.FuncMap{
		"bold":  style.Bold,
		"upper": strings.ToUpper,
		"boldUpper": func(s string) string {
			return style.Bold(strings.ToUpper(s))
		},
	})
}
