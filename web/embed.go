package web

import "embed"

// StaticFS embeds the calculator frontend (html/css/js).
//
//go:embed static/*
var StaticFS embed.FS
