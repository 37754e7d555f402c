package models

import "time"

// Template is a named rendering template bound to one output format.
type Template struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	Description     string         `json:"description,omitempty"`
	Format          string         `json:"format"`
	TemplateContent string         `json:"-"`
	PreviewImage    *string        `json:"preview_image,omitempty"`
	DefaultSettings ExportSettings `json:"default_settings"`
	IsActive        bool           `json:"is_active"`
	IsDefault       bool           `json:"is_default"`
	Version         string         `json:"version"`
	Author          string         `json:"author,omitempty"`
	Tags            []string       `json:"tags"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}
