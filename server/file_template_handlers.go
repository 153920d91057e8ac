package server

import (
	"embed"
	"html/template"
	"io/fs"
	"strings"
)

//go:embed templates/*
var templateFiles embed.FS

var templateFuncs = template.FuncMap{
	"displayName": displayName,
}

func TemplateFilesFS() fs.FS {
	subFS, err := fs.Sub(templateFiles, "templates")
	if err != nil {
		panic("Failed to create templates sub filesystem: " + err.Error())
	}
	return subFS
}

// ParseTemplate parses a template from the embedded filesystem
func ParseTemplate(name string) (*template.Template, error) {
	return template.New(name).Funcs(templateFuncs).ParseFS(TemplateFilesFS(), name)
}

// displayName joins the contact's names, falling back to its email
func displayName(c contactView) string {
	name := strings.TrimSpace(c.FirstName + " " + c.LastName)
	if name == "" {
		return c.Email
	}
	return name
}
