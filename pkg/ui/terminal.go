package ui

import (
	"fmt"

	"github.com/fatih/color"
)

// ASCII logo for the application
const ASCIILogo = `
████████╗ ██████╗ ██╗  ██╗ ██████╗██╗     ███████╗ █████╗ ███╗   ██╗
╚══██╔══╝██╔═══██╗██║ ██╔╝██╔════╝██║     ██╔════╝██╔══██╗████╗  ██║
   ██║   ██║   ██║█████╔╝ ██║     ██║     █████╗  ███████║██╔██╗ ██║
   ██║   ██║   ██║██╔═██╗ ██║     ██║     ██╔══╝  ██╔══██║██║╚██╗██║
   ██║   ╚██████╔╝██║  ██╗╚██████╗███████╗███████╗██║  ██║██║ ╚████║
   ╚═╝    ╚═════╝ ╚═╝  ╚═╝ ╚═════╝╚══════╝╚══════╝╚═╝  ╚═╝╚═╝  ╚═══╝
              FOLLOWING LIST CLEANUP UTILITY
`

// Color functions for terminal output. The color library disables
// itself on NO_COLOR and non-TTY output.
var (
	Cyan    = color.New(color.FgCyan).SprintFunc()
	Yellow  = color.New(color.FgYellow).SprintFunc()
	Red     = color.New(color.FgRed).SprintFunc()
	Green   = color.New(color.FgGreen).SprintFunc()
	Magenta = color.New(color.FgMagenta).SprintFunc()
	Dim     = color.New(color.Faint).SprintFunc()
	Bold    = color.New(color.Bold).SprintFunc()
)

// PrintLogo prints the ASCII logo with color
func PrintLogo() {
	fmt.Print(Cyan(ASCIILogo))
}

// PrintError prints an error message in red
func PrintError(msg string, args ...interface{}) {
	if len(args) > 0 {
		fmt.Println(Red(msg + ": " + fmt.Sprintf("%v", args[0])))
	} else {
		fmt.Println(Red(msg))
	}
}

// PrintSuccess prints a success message in green
func PrintSuccess(msg string) {
	fmt.Println(Green(msg))
}

// PrintInfo prints a label: value pair
func PrintInfo(label string, value string) {
	fmt.Printf("%s: %s\n", Cyan(label), Yellow(value))
}

// PrintWarning prints a warning message in yellow
func PrintWarning(msg string, args ...interface{}) {
	if len(args) > 0 {
		fmt.Println(Yellow(msg + ": " + fmt.Sprintf("%v", args[0])))
	} else {
		fmt.Println(Yellow(msg))
	}
}

// PrintHighlight prints a highlighted message in magenta
func PrintHighlight(msg string) {
	fmt.Println(Magenta(msg))
}
