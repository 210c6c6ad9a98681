package models

import (
	"image/color"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// ============================================================
// Colors
// ============================================================

var namedColors = map[string]string{
	"black":  "#000000",
	"white":  "#ffffff",
	"blue":   "#0000ff",
	"red":    "#ff0000",
	"green":  "#008000",
	"gray":   "#808080",
	"grey":   "#808080",
	"orange": "#ffa500",
	"yellow": "#ffff00",
	"purple": "#800080",
}

// ParseColor разбирает CSS-имя или #rrggbb. Для "transparent" и пустой строки ok=false.
func ParseColor(value string) (color.Color, bool) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" || value == Transparent {
		return nil, false
	}
	if hex, ok := namedColors[value]; ok {
		value = hex
	}

	c, err := colorful.Hex(value)
	if err != nil {
		return nil, false
	}
	return c, true
}

// NormalizeColor приводит цвет к виду #rrggbb, либо возвращает false.
func NormalizeColor(value string) (string, bool) {
	c, ok := ParseColor(value)
	if !ok {
		return "", false
	}
	return c.(colorful.Color).Hex(), true
}
