// Package logger prints colored, levelled status lines for a build run.
package logger

import "github.com/fatih/color"

var (
	Info  = color.New(color.FgGreen).PrintfFunc()
	Warn  = color.New(color.FgHiMagenta).PrintfFunc()
	Error = color.New(color.FgRed).PrintfFunc()

	// Success marks a finished component or directory.
	Success = color.New(color.FgGreen, color.Bold).PrintfFunc()
	// Step prints section headers.
	Step = color.New(color.FgCyan, color.Bold).PrintfFunc()
)

// Debug is quiet until Init(true), so packages used without Init stay silent.
var Debug = func(format string, a ...any) {}

// Init switches debug output on or off.
func Init(enableDebug bool) {
	if enableDebug {
		Debug = color.New(color.FgCyan).PrintfFunc()
		return
	}
	Debug = func(format string, a ...any) {}
}
