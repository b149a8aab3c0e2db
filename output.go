package main

import (
	"github.com/fatih/color"
)

func success(format string, a ...any) string {
	return color.New(color.FgGreen).Sprintf(format, a...)
}

func failure(format string, a ...any) string {
	return color.New(color.FgRed).Sprintf(format, a...)
}

func warn(format string, a ...any) string {
	return color.New(color.FgYellow).Sprintf(format, a...)
}

func accent(format string, a ...any) string {
	return color.New(color.FgCyan, color.Bold).Sprintf(format, a...)
}

func muted(format string, a ...any) string {
	return color.New(color.FgHiBlack).Sprintf(format, a...)
}
